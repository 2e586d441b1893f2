package models

import (
	"strings"
	"time"
)

// Author identity is keyed by the (first, middle, last) name triple. The
// triple must resolve to at most one row; more than one match is an
// ambiguity error, never silently resolved.
type Author struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
}

// DisplayName returns "first [middle] last", single-spaced, skipping
// empty name parts.
func (a *Author) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.FirstName, a.MiddleName, a.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Resource is a catalog entry (title/edition/ISBN), distinct from the
// physical copies tracked as Stock. Unique per ISBN-10 or ISBN-13.
type Resource struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Edition    string    `json:"edition,omitempty"`
	ISBN10     string    `json:"isbn_10,omitempty"`
	ISBN13     string    `json:"isbn_13,omitempty"`
	Active     bool      `json:"active"`
	DateAdded  time.Time `json:"date_added"`
}

// Stock is one physical, lendable unit of a Resource.
type Stock struct {
	ID         int64     `json:"id"`
	ResourceID int64     `json:"resource_id"`
	DateAdded  time.Time `json:"date_added"`
	Active     bool      `json:"active"`
}

// Borrow is an open or closed loan linking a member to a stock unit.
type Borrow struct {
	ID       int64     `json:"id"`
	MemberID int64     `json:"member_id"`
	StockID  int64     `json:"stock_id"`
	Created  time.Time `json:"created"`
	Closed   bool      `json:"closed"`
}

// AddResourceRequest represents the request body for inventory intake.
type AddResourceRequest struct {
	Title        string `json:"title" form:"title"`
	AuthorFirst  string `json:"author_first" form:"author_first"`
	AuthorMiddle string `json:"author_middle" form:"author_middle"`
	AuthorLast   string `json:"author_last" form:"author_last"`
	Edition      string `json:"edition" form:"edition"`
	ISBN10       string `json:"isbn_10" form:"isbn_10"`
	ISBN13       string `json:"isbn_13" form:"isbn_13"`
}

// SearchQuery holds the optional, conjunctive search criteria. All three
// empty means an empty result, not "all resources".
type SearchQuery struct {
	Author string `json:"author" query:"author"`
	Title  string `json:"title" query:"title"`
	ISBN   string `json:"isbn" query:"isbn"`
}

// IsEmpty reports whether no criteria were supplied.
func (q SearchQuery) IsEmpty() bool {
	return q.Author == "" && q.Title == "" && q.ISBN == ""
}
