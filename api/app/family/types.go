package family

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/hearthhq/hearth/db/tables"
)

type createFamilyRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type createInviteRequest struct {
	FamilyID uuid.UUID `json:"family_id" validate:"required"`
	Email    *string   `json:"email"`
	Phone    *string   `json:"phone"`
	Role     string    `json:"role"`
}

type revokeInviteRequest struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

type acceptInviteRequest struct {
	Token string `json:"invitation_token" validate:"required"`
}

type declineInviteRequest struct {
	Token string `json:"invitation_token" validate:"required"`
}

type joinFamilyRequest struct {
	Code string `json:"invite_code" validate:"required"`
}

type familyCreatedResponse struct {
	Success  bool      `json:"success"`
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	JoinCode string    `json:"join_code"`
}

func (g *familyCreatedResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, http.StatusCreated)
	return nil
}

type inviteCreatedResponse struct {
	Success    bool      `json:"success"`
	ID         uuid.UUID `json:"id"`
	AcceptLink string    `json:"accept_link"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (g *inviteCreatedResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, http.StatusCreated)
	return nil
}

type membershipResponse struct {
	Success    bool      `json:"success"`
	FamilyID   uuid.UUID `json:"family_id"`
	FamilyName string    `json:"family_name"`
	Role       string    `json:"role"`
}

func (g *membershipResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type membershipListEntry struct {
	FamilyID   uuid.UUID `json:"family_id"`
	FamilyName string    `json:"family_name"`
	JoinCode   string    `json:"join_code"`
	Role       string    `json:"role"`
	JoinedAt   time.Time `json:"joined_at"`
}

type memberEntry struct {
	UserID    uuid.UUID  `json:"user_id"`
	InviterID *uuid.UUID `json:"inviter_id,omitempty"`
	Role      string     `json:"role"`
	JoinedAt  time.Time  `json:"joined_at"`
}

type familyOverviewResponse struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	JoinCode string         `json:"join_code"`
	Members  []*memberEntry `json:"members"`
}

func (g *familyOverviewResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type joinCodeResponse struct {
	FamilyID uuid.UUID `json:"family_id"`
	JoinCode string    `json:"join_code"`
}

func (g *joinCodeResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// inviteEntry is the member-facing invitation view, it deliberately
// has no token field.
type inviteEntry struct {
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

func inviteEntryFromDB(t *tables.FamilyInvitationTable) *inviteEntry {
	return &inviteEntry{
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

type genericSuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (g *genericSuccessResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func createError(err string, status int) *genericErrorResponse {
	return &genericErrorResponse{
		Error:      err,
		StatusCode: status,
	}
}

type genericErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *genericErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}
