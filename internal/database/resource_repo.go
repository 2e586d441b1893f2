package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"library-backend/internal/models"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrStockNotFound    = errors.New("stock not found")
)

// ResourceRepo handles resource and stock database operations
type ResourceRepo struct {
	db *sql.DB
}

// NewResourceRepo creates a new resource repository
func NewResourceRepo(store *Store) *ResourceRepo {
	return &ResourceRepo{db: store.DB()}
}

// Intake records the arrival of one physical copy. If a resource already
// exists for either ISBN, a new stock unit is attached to it and the
// existing resource is returned (existing=true); otherwise a new
// resource row and its first stock unit are inserted. Either way the
// operation is one transaction and every intake adds exactly one stock
// unit, so repeated intake grows stock, never the catalog.
func (r *ResourceRepo) Intake(title string, authorID int64, edition, isbn10, isbn13 string) (*models.Resource, bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	existing := &models.Resource{}
	err = tx.QueryRow(`
		SELECT id, title, author_id, edition, isbn_10, isbn_13, active, date_added
		FROM resource
		WHERE (isbn_10 <> '' AND isbn_10 = ?) OR (isbn_13 <> '' AND isbn_13 = ?)
	`, isbn10, isbn13).Scan(
		&existing.ID, &existing.Title, &existing.AuthorID, &existing.Edition,
		&existing.ISBN10, &existing.ISBN13, &existing.Active, &existing.DateAdded,
	)
	if err != nil && err != sql.ErrNoRows {
		return nil, false, err
	}

	if err == nil {
		// Same title back in stock: one more unit, no new catalog row.
		if _, err := addStock(tx, existing.ID); err != nil {
			return nil, false, err
		}
		return existing, true, tx.Commit()
	}

	resource := &models.Resource{
		Title:     title,
		AuthorID:  authorID,
		Edition:   edition,
		ISBN10:    isbn10,
		ISBN13:    isbn13,
		Active:    true,
		DateAdded: time.Now().UTC(),
	}
	result, err := tx.Exec(`
		INSERT INTO resource (title, author_id, edition, isbn_10, isbn_13, active, date_added)
		VALUES (?, ?, ?, ?, ?, 1, ?)
	`, resource.Title, resource.AuthorID, resource.Edition, resource.ISBN10, resource.ISBN13, resource.DateAdded)
	if err != nil {
		return nil, false, err
	}
	resource.ID, err = result.LastInsertId()
	if err != nil {
		return nil, false, err
	}

	if _, err := addStock(tx, resource.ID); err != nil {
		return nil, false, err
	}

	return resource, false, tx.Commit()
}

func addStock(tx *sql.Tx, resourceID int64) (int64, error) {
	result, err := tx.Exec(`
		INSERT INTO stock (resource_id, date_added, active) VALUES (?, ?, 1)
	`, resourceID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a resource by ID
func (r *ResourceRepo) GetByID(id int64) (*models.Resource, error) {
	resource := &models.Resource{}
	err := r.db.QueryRow(`
		SELECT id, title, author_id, edition, isbn_10, isbn_13, active, date_added
		FROM resource WHERE id = ?
	`, id).Scan(
		&resource.ID, &resource.Title, &resource.AuthorID, &resource.Edition,
		&resource.ISBN10, &resource.ISBN13, &resource.Active, &resource.DateAdded,
	)
	if err == sql.ErrNoRows {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return resource, nil
}

// Deactivate soft-deletes a resource
func (r *ResourceRepo) Deactivate(id int64) error {
	result, err := r.db.Exec("UPDATE resource SET active = 0 WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrResourceNotFound
	}
	return nil
}

// Search runs the conjunctive resource search. Title is a byte-wise
// case-sensitive substring match (instr), ISBN is an exact match on
// ISBN-10, and authorIDs restricts to pre-resolved author candidates
// (nil means no author criterion). Results come back in insertion order
// with the author's display name hydrated.
func (r *ResourceRepo) Search(q models.SearchQuery, authorIDs []int64) ([]*models.Resource, error) {
	query := `
		SELECT r.id, r.title, r.author_id, r.edition, r.isbn_10, r.isbn_13, r.active, r.date_added,
		       a.first_name, a.middle_name, a.last_name
		FROM resource r
		JOIN author a ON a.id = r.author_id
		WHERE r.active = 1`
	args := []interface{}{}

	if authorIDs != nil {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(authorIDs)), ",")
		query += fmt.Sprintf(" AND r.author_id IN (%s)", placeholders)
		for _, id := range authorIDs {
			args = append(args, id)
		}
	}
	if q.Title != "" {
		query += " AND instr(r.title, ?) > 0"
		args = append(args, q.Title)
	}
	if q.ISBN != "" {
		query += " AND r.isbn_10 = ?"
		args = append(args, q.ISBN)
	}

	query += " ORDER BY r.id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []*models.Resource
	for rows.Next() {
		resource := &models.Resource{}
		author := &models.Author{}
		err := rows.Scan(
			&resource.ID, &resource.Title, &resource.AuthorID, &resource.Edition,
			&resource.ISBN10, &resource.ISBN13, &resource.Active, &resource.DateAdded,
			&author.FirstName, &author.MiddleName, &author.LastName,
		)
		if err != nil {
			return nil, err
		}
		resource.AuthorName = author.DisplayName()
		resources = append(resources, resource)
	}

	return resources, rows.Err()
}

// ListStock returns all stock units for a resource
func (r *ResourceRepo) ListStock(resourceID int64) ([]*models.Stock, error) {
	rows, err := r.db.Query(`
		SELECT id, resource_id, date_added, active FROM stock WHERE resource_id = ? ORDER BY id
	`, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.Stock
	for rows.Next() {
		unit := &models.Stock{}
		if err := rows.Scan(&unit.ID, &unit.ResourceID, &unit.DateAdded, &unit.Active); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

// DeactivateStock takes one physical unit out of circulation
func (r *ResourceRepo) DeactivateStock(stockID int64) error {
	result, err := r.db.Exec("UPDATE stock SET active = 0 WHERE id = ?", stockID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStockNotFound
	}
	return nil
}
