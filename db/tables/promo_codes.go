package tables

import (
	"time"

	"github.com/google/uuid"
)

// PromoCodeTable represents the promo_codes table
type PromoCodeTable struct {
	ID          int        `db:"id"           fiql:"id,db:id"`
	Code        string     `db:"code"         fiql:"code,db:code"`
	Description string     `db:"description"  fiql:"description,db:description"`
	MaxUses     int        `db:"max_uses"     fiql:"max_uses,db:max_uses"`
	CurrentUses int        `db:"current_uses" fiql:"current_uses,db:current_uses"`
	ExpiresAt   *time.Time `db:"expires_at"   fiql:"expires_at,db:expires_at"`
	CreatedAt   time.Time  `db:"created_at"   fiql:"created_at,db:created_at"`
}

// PromoRedemptionTable represents the promo_redemptions table,
// one row per (code, user) - the per-user at-most-once guard
type PromoRedemptionTable struct {
	ID          int       `db:"id"`
	PromoCodeID int       `db:"promo_code_id"`
	UserID      uuid.UUID `db:"user_id"`
	RedeemedAt  time.Time `db:"redeemed_at"`
}
