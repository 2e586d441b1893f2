package database

import (
	"database/sql"
	"errors"

	"library-backend/internal/models"
)

var (
	ErrAuthorNotFound  = errors.New("author not found")
	ErrAmbiguousAuthor = errors.New("multiple authors match this name")
)

// AuthorRepo handles author database operations
type AuthorRepo struct {
	db *sql.DB
}

// NewAuthorRepo creates a new author repository
func NewAuthorRepo(store *Store) *AuthorRepo {
	return &AuthorRepo{db: store.DB()}
}

// ResolveOrCreate resolves the (first, middle, last) triple to exactly
// one author id, inserting a new row when no author matches. More than
// one match is ErrAmbiguousAuthor; identity is never guessed.
func (r *AuthorRepo) ResolveOrCreate(first, middle, last string) (int64, error) {
	rows, err := r.db.Query(`
		SELECT id FROM author
		WHERE first_name = ? AND middle_name = ? AND last_name = ?
	`, first, middle, last)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	switch len(ids) {
	case 0:
		return r.Create(first, middle, last)
	case 1:
		return ids[0], nil
	default:
		return 0, ErrAmbiguousAuthor
	}
}

// Create inserts an author row
func (r *AuthorRepo) Create(first, middle, last string) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO author (first_name, middle_name, last_name) VALUES (?, ?, ?)
	`, first, middle, last)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves an author by ID
func (r *AuthorRepo) GetByID(id int64) (*models.Author, error) {
	author := &models.Author{}
	err := r.db.QueryRow(`
		SELECT id, first_name, middle_name, last_name FROM author WHERE id = ?
	`, id).Scan(&author.ID, &author.FirstName, &author.MiddleName, &author.LastName)
	if err == sql.ErrNoRows {
		return nil, ErrAuthorNotFound
	}
	if err != nil {
		return nil, err
	}
	return author, nil
}

// IDsByLastName returns the ids of authors whose last name contains the
// given substring. The match is byte-wise case-sensitive (instr, not
// LIKE, which SQLite folds for ASCII).
func (r *AuthorRepo) IDsByLastName(substr string) ([]int64, error) {
	rows, err := r.db.Query("SELECT id FROM author WHERE instr(last_name, ?) > 0", substr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
