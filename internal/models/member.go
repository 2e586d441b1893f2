package models

import "time"

// Member represents a registered library member
type Member struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // Never expose in JSON
	CheckedOut    int       `json:"checked_out"`
	TotalBorrowed int       `json:"total_borrowed"`
	DateJoined    time.Time `json:"date_joined"`
	Active        bool      `json:"active"`
}

// JoinRequest represents the request body for member signup
type JoinRequest struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}
