package manage

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hearthhq/hearth/db/tables"
)

// PaginationResponse is the envelope for every manage list endpoint
type PaginationResponse struct {
	Total   int         `json:"total"`
	Entries interface{} `json:"entries"`
}

func (p *PaginationResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type FamilyDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	JoinCode  string     `json:"join_code"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (a *FamilyDTO) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func familyDTOfromDB(t *tables.FamilyTable) *FamilyDTO {
	return &FamilyDTO{
		ID:        t.ID,
		Name:      t.Name,
		JoinCode:  t.JoinCode,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// InvitationDTO intentionally carries no token field, the raw token
// never leaves the acceptance path.
type InvitationDTO struct {
	ID           uuid.UUID  `json:"id"`
	FamilyID     uuid.UUID  `json:"family_id"`
	InviterID    uuid.UUID  `json:"inviter_id"`
	InviteeEmail *string    `json:"invitee_email"`
	InviteePhone *string    `json:"invitee_phone"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	ExpiresAt    time.Time  `json:"expires_at"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
}

func (a *InvitationDTO) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func invitationDTOfromDB(t *tables.FamilyInvitationTable) *InvitationDTO {
	return &InvitationDTO{
		ID:           t.ID,
		FamilyID:     t.FamilyID,
		InviterID:    t.InviterID,
		InviteeEmail: t.InviteeEmail,
		InviteePhone: t.InviteePhone,
		Role:         t.Role,
		Status:       t.Status,
		ExpiresAt:    t.ExpiresAt,
		AcceptedAt:   t.AcceptedAt,
		CreatedAt:    t.CreatedAt,
		SentAt:       t.SentAt,
	}
}

type PromoCodeDTO struct {
	ID          int        `json:"id"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	MaxUses     int        `json:"max_uses"`
	CurrentUses int        `json:"current_uses"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (a *PromoCodeDTO) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func promoCodeDTOfromDB(t *tables.PromoCodeTable) *PromoCodeDTO {
	return &PromoCodeDTO{
		ID:          t.ID,
		Code:        t.Code,
		Description: t.Description,
		MaxUses:     t.MaxUses,
		CurrentUses: t.CurrentUses,
		ExpiresAt:   t.ExpiresAt,
		CreatedAt:   t.CreatedAt,
	}
}
