package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"library-backend/internal/models"
)

// AuditRepo handles audit log database operations
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo creates a new audit repository
func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{db: store.DB()}
}

// Create creates a new audit log entry
func (r *AuditRepo) Create(log *models.AuditLog) error {
	result, err := r.db.Exec(`
		INSERT INTO audit_logs (timestamp, member_id, email, action, target, details, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, log.Timestamp, log.MemberID, log.Email, log.Action, log.Target, log.Details, log.IPAddress)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	log.ID = id
	return nil
}

// Log is a convenience method to create an audit log entry with current timestamp
func (r *AuditRepo) Log(memberID int64, email, action, target string, details interface{}, ipAddress string) error {
	var detailsJSON string
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			detailsJSON = "{}"
		} else {
			detailsJSON = string(b)
		}
	}

	log := &models.AuditLog{
		Timestamp: time.Now(),
		MemberID:  memberID,
		Email:     email,
		Action:    action,
		Target:    target,
		Details:   detailsJSON,
		IPAddress: ipAddress,
	}
	return r.Create(log)
}

// List retrieves audit logs with pagination and optional filters
func (r *AuditRepo) List(filter models.AuditFilter) ([]*models.AuditLog, int, error) {
	// Build query
	baseQuery := "FROM audit_logs WHERE 1=1"
	args := []interface{}{}

	if filter.MemberID != nil {
		baseQuery += " AND member_id = ?"
		args = append(args, *filter.MemberID)
	}
	if filter.Action != "" {
		baseQuery += " AND action = ?"
		args = append(args, filter.Action)
	}
	if filter.ActionPrefix != "" {
		baseQuery += " AND action LIKE ?"
		args = append(args, filter.ActionPrefix+"%")
	}
	if !filter.StartTime.IsZero() {
		baseQuery += " AND timestamp >= ?"
		args = append(args, filter.StartTime)
	}
	if !filter.EndTime.IsZero() {
		baseQuery += " AND timestamp <= ?"
		args = append(args, filter.EndTime)
	}

	// Get total count
	var total int
	countQuery := "SELECT COUNT(*) " + baseQuery
	err := r.db.QueryRow(countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	// Get paginated results
	query := "SELECT id, timestamp, member_id, email, action, target, details, ip_address " + baseQuery
	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		log := &models.AuditLog{}
		var memberID sql.NullInt64
		var email, target, details, ipAddress sql.NullString

		err := rows.Scan(&log.ID, &log.Timestamp, &memberID, &email, &log.Action, &target, &details, &ipAddress)
		if err != nil {
			return nil, 0, err
		}

		log.MemberID = memberID.Int64
		log.Email = email.String
		log.Target = target.String
		log.Details = details.String
		log.IPAddress = ipAddress.String

		logs = append(logs, log)
	}

	return logs, total, rows.Err()
}
