package domain

import "time"

// SubjectType differentiates account tokens from the configured admin principal.
type SubjectType string

const (
	SubjectTypeUser  SubjectType = "USER"
	SubjectTypeAdmin SubjectType = "ADMIN"
)

// Session represents an issued admin session tracked server side.
type Session struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	ExpiresAt time.Time
	IssuedAt  time.Time
}
