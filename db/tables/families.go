package tables

import (
	"time"

	"github.com/google/uuid"
)

// FamilyTable represents the families table
type FamilyTable struct {
	ID        uuid.UUID  `db:"id"         fiql:"id,db:id"`
	Name      string     `db:"name"       fiql:"name,db:name"`
	JoinCode  string     `db:"join_code"  fiql:"join_code,db:join_code"`
	CreatedBy uuid.UUID  `db:"created_by" fiql:"created_by,db:created_by"`
	CreatedAt time.Time  `db:"created_at" fiql:"created_at,db:created_at"`
	UpdatedAt *time.Time `db:"updated_at" fiql:"updated_at,db:updated_at"`
}
