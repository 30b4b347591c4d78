package db

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrConsumed indicates a single-use entity was already consumed
	ErrConsumed = errors.New("this entity has already been consumed")
	// ErrExpired indicates the entity is past its expiry timestamp
	ErrExpired = errors.New("this entity has expired")
	// ErrExhausted indicates a limited-use entity has no uses left
	ErrExhausted = errors.New("this entity has no uses left")
)

// MembershipData is a family membership joined with its family row,
// the shape the service layer works with
type MembershipData struct {
	FamilyID   uuid.UUID `db:"family_id"`
	FamilyName string    `db:"name"`
	JoinCode   string    `db:"join_code"`
	Role       string    `db:"role"`
	JoinedAt   time.Time `db:"joined_at"`
}

// ConsumedInvitation is what an atomic invitation consume hands back
type ConsumedInvitation struct {
	InvitationID uuid.UUID
	FamilyID     uuid.UUID
	Role         string
}

type ListOptions struct {
	PageSize int
	Page     int
	Sort     string
	Query    string
}

// isUniqueViolation sniffs driver errors for unique constraint
// violations, the portable-enough way across sqlite, pg and mysql
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}
