package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"library-backend/internal/models"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrDuplicateEmail = errors.New("a member with this email already exists")
)

// MemberRepo handles member database operations
type MemberRepo struct {
	db *sql.DB
}

// NewMemberRepo creates a new member repository
func NewMemberRepo(store *Store) *MemberRepo {
	return &MemberRepo{db: store.DB()}
}

// Create inserts a new member. Emails are case-folded before storage so
// that lookups are case-insensitive.
func (r *MemberRepo) Create(member *models.Member) error {
	member.Email = strings.ToLower(member.Email)

	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM member WHERE email = ?", member.Email).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateEmail
	}

	member.DateJoined = time.Now().UTC()
	member.Active = true

	result, err := r.db.Exec(`
		INSERT INTO member (email, password_hash, date_joined, active)
		VALUES (?, ?, ?, 1)
	`, member.Email, member.PasswordHash, member.DateJoined)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	member.ID = id

	return nil
}

// GetByID retrieves a member by ID
func (r *MemberRepo) GetByID(id int64) (*models.Member, error) {
	return r.get("SELECT id, email, password_hash, checked_out, total_borrowed, date_joined, active FROM member WHERE id = ?", id)
}

// GetByEmail retrieves a member by email (case-insensitive)
func (r *MemberRepo) GetByEmail(email string) (*models.Member, error) {
	return r.get("SELECT id, email, password_hash, checked_out, total_borrowed, date_joined, active FROM member WHERE email = ?", strings.ToLower(email))
}

func (r *MemberRepo) get(query string, arg interface{}) (*models.Member, error) {
	member := &models.Member{}
	err := r.db.QueryRow(query, arg).Scan(
		&member.ID, &member.Email, &member.PasswordHash,
		&member.CheckedOut, &member.TotalBorrowed, &member.DateJoined, &member.Active,
	)
	if err == sql.ErrNoRows {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

// Deactivate soft-deletes a member and invalidates every token issued
// through any of the member's sessions, as one atomic unit.
func (r *MemberRepo) Deactivate(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec("UPDATE member SET active = 0 WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrMemberNotFound
	}

	_, err = tx.Exec(`
		UPDATE token SET active = 0
		WHERE session_id IN (SELECT id FROM session WHERE member_id = ?)
	`, id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Count returns the total number of members
func (r *MemberRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM member").Scan(&count)
	return count, err
}
