package tables

import (
	"time"

	"github.com/google/uuid"
)

// FamilyMemberTable represents the family_members table.
// There is exactly one row per (family, user) pair ever - leaving a
// family flips is_active, rejoining flips it back.
type FamilyMemberTable struct {
	ID            uuid.UUID  `db:"id"`
	FamilyID      uuid.UUID  `db:"family_id"`
	UserID        uuid.UUID  `db:"user_id"`
	InviterID     *uuid.UUID `db:"inviter_id"`
	Role          string     `db:"role"`
	IsActive      bool       `db:"is_active"`
	JoinedAt      time.Time  `db:"joined_at"`
	DeactivatedAt *time.Time `db:"deactivated_at"`
}
