package tables

import (
	"time"

	"github.com/google/uuid"
)

// FamilyInvitationTable represents the family_invitations table.
// Token is write-once at creation; listing paths must go through the
// safe DTOs which strip it.
type FamilyInvitationTable struct {
	ID           uuid.UUID  `db:"id"            fiql:"id,db:id"`
	FamilyID     uuid.UUID  `db:"family_id"     fiql:"family_id,db:family_id"`
	InviterID    uuid.UUID  `db:"inviter_id"    fiql:"inviter_id,db:inviter_id"`
	InviteeEmail *string    `db:"invitee_email" fiql:"invitee_email,db:invitee_email"`
	InviteePhone *string    `db:"invitee_phone"`
	Role         string     `db:"role"          fiql:"role,db:role"`
	Status       string     `db:"status"        fiql:"status,db:status"`
	Token        string     `db:"token"                                               json:"-"`
	ExpiresAt    time.Time  `db:"expires_at"    fiql:"expires_at,db:expires_at"`
	AcceptedAt   *time.Time `db:"accepted_at"   fiql:"accepted_at,db:accepted_at"`
	CreatedAt    time.Time  `db:"created_at"    fiql:"created_at,db:created_at"`
	SentAt       *time.Time `db:"sent_at"`
}
