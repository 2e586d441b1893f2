package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/models"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrNoMemberForSession = errors.New("no member associated with session")
)

// SessionRepo handles session database operations
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(store *Store) *SessionRepo {
	return &SessionRepo{db: store.DB()}
}

// Create persists a new anonymous session and returns its opaque id.
func (r *SessionRepo) Create() (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(`
		INSERT INTO session (id, created) VALUES (?, ?)
	`, id, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get retrieves a session by its id
func (r *SessionRepo) Get(id string) (*models.Session, error) {
	session := &models.Session{}
	var memberID sql.NullInt64
	var ipAddress, userAgent sql.NullString

	err := r.db.QueryRow(`
		SELECT id, member_id, ip_address, user_agent, created
		FROM session WHERE id = ?
	`, id).Scan(&session.ID, &memberID, &ipAddress, &userAgent, &session.Created)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if memberID.Valid {
		session.MemberID = &memberID.Int64
	}
	session.IPAddress = ipAddress.String
	session.UserAgent = userAgent.String

	return session, nil
}

// Associate binds a session to a member and records request provenance.
// A session may be re-associated across login attempts.
func (r *SessionRepo) Associate(sessionID string, memberID int64, ipAddress, userAgent string) error {
	result, err := r.db.Exec(`
		UPDATE session SET member_id = ?, ip_address = ?, user_agent = ? WHERE id = ?
	`, memberID, ipAddress, userAgent, sessionID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// MemberID resolves the member bound to a session. Returns
// ErrNoMemberForSession for sessions that exist but are anonymous.
func (r *SessionRepo) MemberID(sessionID string) (int64, error) {
	var memberID sql.NullInt64
	err := r.db.QueryRow("SELECT member_id FROM session WHERE id = ?", sessionID).Scan(&memberID)
	if err == sql.ErrNoRows {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	if !memberID.Valid {
		return 0, ErrNoMemberForSession
	}
	return memberID.Int64, nil
}
