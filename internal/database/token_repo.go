package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/models"
)

var ErrTokenNotFound = errors.New("no active token for session")

// TokenRepo handles token database operations
type TokenRepo struct {
	db *sql.DB
}

// NewTokenRepo creates a new token repository
func NewTokenRepo(store *Store) *TokenRepo {
	return &TokenRepo{db: store.DB()}
}

// Issue mints a new token for the member bound to the given session.
// Every currently-active token belonging to that member, across all of
// the member's sessions, is deactivated in the same transaction; two
// concurrent logins can never both end up with a valid token.
func (r *TokenRepo) Issue(sessionID string) (string, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var memberID sql.NullInt64
	err = tx.QueryRow("SELECT member_id FROM session WHERE id = ?", sessionID).Scan(&memberID)
	if err == sql.ErrNoRows {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	if !memberID.Valid {
		return "", ErrNoMemberForSession
	}

	_, err = tx.Exec(`
		UPDATE token SET active = 0
		WHERE session_id IN (SELECT id FROM session WHERE member_id = ?)
	`, memberID.Int64)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO token (id, session_id, time_created, active) VALUES (?, ?, ?, 1)
	`, id, sessionID, time.Now().UTC())
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ActiveForSession returns the session's active token, if any.
func (r *TokenRepo) ActiveForSession(sessionID string) (*models.Token, error) {
	token := &models.Token{}
	err := r.db.QueryRow(`
		SELECT id, session_id, time_created, active
		FROM token WHERE session_id = ? AND active = 1
	`, sessionID).Scan(&token.ID, &token.SessionID, &token.TimeCreated, &token.Active)
	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

// DeactivateForSession invalidates the session's active tokens. Used on
// logout; the session itself survives.
func (r *TokenRepo) DeactivateForSession(sessionID string) error {
	_, err := r.db.Exec("UPDATE token SET active = 0 WHERE session_id = ?", sessionID)
	return err
}

// CountActiveForMember returns how many active tokens a member holds
// across all their sessions. The invariant is that this never exceeds 1.
func (r *TokenRepo) CountActiveForMember(memberID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM token
		WHERE active = 1 AND session_id IN (SELECT id FROM session WHERE member_id = ?)
	`, memberID).Scan(&count)
	return count, err
}
