package models

import "time"

// AuditLog represents a record of member actions
type AuditLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	MemberID  int64     `json:"member_id"`
	Email     string    `json:"email"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Details   string    `json:"details"` // JSON string
	IPAddress string    `json:"ip_address"`
}

// AuditFilter holds optional filters for listing audit logs
type AuditFilter struct {
	MemberID     *int64
	Action       string
	ActionPrefix string
	StartTime    time.Time
	EndTime      time.Time
	Limit        int
	Offset       int
}

// Common audit actions
const (
	ActionMemberJoin         = "member.join"
	ActionMemberLogin        = "member.login"
	ActionMemberLogout       = "member.logout"
	ActionMemberDeactivate   = "member.deactivate"
	ActionSSOLogin           = "sso.login"
	ActionResourceAdd        = "resource.add"
	ActionResourceDeactivate = "resource.deactivate"
	ActionBorrowCheckout     = "borrow.checkout"
	ActionBorrowCheckin      = "borrow.checkin"
)
