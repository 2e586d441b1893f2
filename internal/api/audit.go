package api

import (
	"github.com/labstack/echo/v4"

	"library-backend/internal/auth"
	"library-backend/internal/database"
)

// AuditLogger provides methods to log audit events from handlers
type AuditLogger struct {
	repo *database.AuditRepo
}

// Global audit logger instance, set up in RegisterRoutes
var Audit *AuditLogger

// InitAudit initializes the audit logger
func InitAudit(store *database.Store) {
	Audit = &AuditLogger{repo: database.NewAuditRepo(store)}
}

// Log records an audit event
func (l *AuditLogger) Log(memberID int64, email, action, target string, details interface{}, ipAddress string) {
	if err := l.repo.Log(memberID, email, action, target, details, ipAddress); err != nil {
		// Audit failures must not fail the request
	}
}

// LogFromContext records an audit event using member info from context
func (l *AuditLogger) LogFromContext(c echo.Context, action, target string, details interface{}) {
	member := auth.GetMemberFromContext(c)
	var memberID int64
	var email string
	if member != nil {
		memberID = member.ID
		email = member.Email
	}
	l.Log(memberID, email, action, target, details, c.RealIP())
}
