package models

import "time"

// Session represents a browsing context, anonymous until a login binds it
// to a member. Sessions are never deleted, only superseded.
type Session struct {
	ID        string    `json:"id"`
	MemberID  *int64    `json:"member_id,omitempty"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Created   time.Time `json:"created"`
}

// Token is a short-lived credential bound to exactly one session at
// issuance. Expiry is measured from TimeCreated and checked lazily at
// validation time; the active flag only tracks supersession.
type Token struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	TimeCreated time.Time `json:"time_created"`
	Active      bool      `json:"active"`
}
