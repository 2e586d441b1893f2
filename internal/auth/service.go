package auth

import (
	"errors"
	"time"

	"library-backend/internal/database"
	"library-backend/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMemberDisabled     = errors.New("member account is disabled")
)

// defaultTokenTTL applies when the settings table is unreadable.
const defaultTokenTTL = 120 * time.Second

// Service handles the session/token authentication lifecycle
type Service struct {
	members  *database.MemberRepo
	sessions *database.SessionRepo
	tokens   *database.TokenRepo
	settings *database.SettingsRepo
}

// NewService creates a new auth service over the given store
func NewService(store *database.Store) *Service {
	return &Service{
		members:  database.NewMemberRepo(store),
		sessions: database.NewSessionRepo(store),
		tokens:   database.NewTokenRepo(store),
		settings: database.NewSettingsRepo(store),
	}
}

// CreateSession allocates a new anonymous session
func (s *Service) CreateSession() (string, error) {
	return s.sessions.Create()
}

// AssociateSession binds a session to a member with request provenance
func (s *Service) AssociateSession(sessionID string, memberID int64, ipAddress, userAgent string) error {
	return s.sessions.Associate(sessionID, memberID, ipAddress, userAgent)
}

// IssueToken mints a fresh token for the member bound to the session,
// superseding every token the member held before.
func (s *Service) IssueToken(sessionID string) (string, error) {
	return s.tokens.Issue(sessionID)
}

// Validate checks the session+token pair. It fails closed: false when
// the session has no active token, the token value does not match, or
// the token has outlived the configured TTL. Validation never extends a
// token's validity window; only IssueToken opens a new one.
func (s *Service) Validate(sessionID, tokenID string) (bool, error) {
	token, err := s.tokens.ActiveForSession(sessionID)
	if err != nil {
		if errors.Is(err, database.ErrTokenNotFound) {
			return false, nil
		}
		return false, err
	}

	if token.ID != tokenID {
		return false, nil
	}

	if time.Since(token.TimeCreated) > s.tokenTTL() {
		return false, nil
	}

	return true, nil
}

// Join registers a new member and logs them in on the given session.
// Returns the created member and a fresh token.
func (s *Service) Join(email, password, sessionID, ipAddress, userAgent string) (*models.Member, string, error) {
	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	member := &models.Member{
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.members.Create(member); err != nil {
		return nil, "", err
	}

	token, err := s.bindAndIssue(member, sessionID, ipAddress, userAgent)
	if err != nil {
		return nil, "", err
	}
	return member, token, nil
}

// Login authenticates a member by email and password and, on success,
// associates the session and issues a token. Unknown emails and bad
// passwords are indistinguishable to the caller.
func (s *Service) Login(email, password, sessionID, ipAddress, userAgent string) (*models.Member, string, error) {
	member, err := s.members.GetByEmail(email)
	if err != nil {
		if errors.Is(err, database.ErrMemberNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !VerifyPassword(password, member.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	if !member.Active {
		return nil, "", ErrMemberDisabled
	}

	token, err := s.bindAndIssue(member, sessionID, ipAddress, userAgent)
	if err != nil {
		return nil, "", err
	}
	return member, token, nil
}

func (s *Service) bindAndIssue(member *models.Member, sessionID, ipAddress, userAgent string) (string, error) {
	if err := s.sessions.Associate(sessionID, member.ID, ipAddress, userAgent); err != nil {
		return "", err
	}
	return s.tokens.Issue(sessionID)
}

// BindSession authenticates an externally verified member: the session
// is bound to them and a fresh token issued. Used by SSO logins where
// the identity provider already proved the credentials.
func (s *Service) BindSession(member *models.Member, sessionID, ipAddress, userAgent string) (string, error) {
	if !member.Active {
		return "", ErrMemberDisabled
	}
	return s.bindAndIssue(member, sessionID, ipAddress, userAgent)
}

// Logout invalidates the session's active token. The session row stays;
// a later login on the same session re-issues.
func (s *Service) Logout(sessionID string) error {
	return s.tokens.DeactivateForSession(sessionID)
}

// SessionExists loads a session, proving the caller's id refers to a
// real row rather than a made-up value.
func (s *Service) SessionExists(sessionID string) (*models.Session, error) {
	return s.sessions.Get(sessionID)
}

// MemberForSession loads the member bound to an authenticated session
func (s *Service) MemberForSession(sessionID string) (*models.Member, error) {
	memberID, err := s.sessions.MemberID(sessionID)
	if err != nil {
		return nil, err
	}
	return s.members.GetByID(memberID)
}

// DeactivateMember soft-deletes a member and invalidates their tokens
func (s *Service) DeactivateMember(memberID int64) error {
	return s.members.Deactivate(memberID)
}

func (s *Service) tokenTTL() time.Duration {
	seconds, err := s.settings.GetInt(database.SettingTokenTTLSeconds)
	if err != nil || seconds <= 0 {
		return defaultTokenTTL
	}
	return time.Duration(seconds) * time.Second
}
