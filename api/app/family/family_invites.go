package family

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/hearthhq/hearth/family"
)

func (f *FamilyRessource) createInvite(w http.ResponseWriter, r *http.Request) {
	userID, ok := f.principal(w, r)
	if !ok {
		return
	}
	var req createInviteRequest
	if !f.decodeAndValidate(w, r, &req) {
		return
	}
	created, err := f.service.CreateInvitation(
		r.Context(),
		userID,
		req.FamilyID,
		req.Email,
		req.Phone,
		req.Role,
	)
	if err != nil {
		f.respondError(w, r, err)
		return
	}
	f.renderResponse(w, r, &inviteCreatedResponse{
		Success:    true,
		ID:         created.ID,
		AcceptLink: created.AcceptLink,
		ExpiresAt:  created.ExpiresAt,
	})
}

func (f *FamilyRessource) familyInvites(w http.ResponseWriter, r *http.Request) {
	userID, ok := f.principal(w, r)
	if !ok {
		return
	}
	familyID, ok := f.familyIDParam(w, r)
	if !ok {
		return
	}
	invites, err := f.service.InvitationsForFamily(r.Context(), userID, familyID)
	if err != nil {
		f.respondError(w, r, err)
		return
	}
	entries := make([]*inviteEntry, 0, len(invites))
	for _, v := range invites {
		entries = append(entries, inviteEntryFromDB(v))
	}
	render.Respond(w, r, entries)
}

func (f *FamilyRessource) revokeInvite(w http.ResponseWriter, r *http.Request) {
	userID, ok := f.principal(w, r)
	if !ok {
		return
	}
	var req revokeInviteRequest
	if !f.decodeAndValidate(w, r, &req) {
		return
	}
	err := f.service.RevokeInvitation(r.Context(), userID, req.ID)
	if err != nil {
		f.respondError(w, r, err)
		return
	}
	f.renderResponse(w, r, &genericSuccessResponse{
		Success: true,
		Message: "Invitation revoked",
	})
}

// inviteQR renders the accept link of a pending invitation as a png
// qr code, only for the inviter themselves.
func (f *FamilyRessource) inviteQR(w http.ResponseWriter, r *http.Request) {
	userID, ok := f.principal(w, r)
	if !ok {
		return
	}
	invitationID, err := uuid.Parse(chi.URLParam(r, "invitationID"))
	if err != nil {
		f.renderResponse(w, r, createError("invalid invitation id", http.StatusBadRequest))
		return
	}
	link, err := f.service.AcceptLinkForInvitation(r.Context(), userID, invitationID)
	if err != nil {
		f.respondError(w, r, err)
		return
	}
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		f.log.Error("could not encode qr code", zap.Error(err))
		f.renderResponse(w, r, createError("could not encode qr code", http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, err = w.Write(png)
	if err != nil {
		f.log.Error("unable to write qr code", zap.Error(err))
	}
}

func (f *FamilyRessource) acceptInvite(w http.ResponseWriter, r *http.Request) {
	userID, ok := f.principal(w, r)
	if !ok {
		return
	}
	var req acceptInviteRequest
	if !f.decodeAndValidate(w, r, &req) {
		return
	}
	res, err := f.service.AcceptInvitation(r.Context(), userID, req.Token)
	if err != nil {
		f.respondError(w, r, err)
		return
	}
	f.renderResponse(w, r, &membershipResponse{
		Success:    true,
		FamilyID:   res.FamilyID,
		FamilyName: res.FamilyName,
		Role:       string(res.Role),
	})
}

func (f *FamilyRessource) declineInvite(w http.ResponseWriter, r *http.Request) {
	if _, ok := f.principal(w, r); !ok {
		return
	}
	var req declineInviteRequest
	if !f.decodeAndValidate(w, r, &req) {
		return
	}
	err := f.service.DeclineInvitation(r.Context(), req.Token)
	if err != nil {
		f.respondError(w, r, err)
		return
	}
	f.renderResponse(w, r, &genericSuccessResponse{
		Success: true,
		Message: "Invitation declined",
	})
}

func (f *FamilyRessource) decodeAndValidate(
	w http.ResponseWriter,
	r *http.Request,
	req interface{},
) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		f.log.Info("invalid payload data", zap.Error(err))
		f.renderResponse(w, r, createError("invalid payload", http.StatusBadRequest))
		return false
	}
	if err := f.validate.Struct(req); err != nil {
		f.renderResponse(w, r, createError(err.Error(), http.StatusUnprocessableEntity))
		return false
	}
	return true
}

func (f *FamilyRessource) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, family.ErrInvalidName),
		errors.Is(err, family.ErrInvalidRole),
		errors.Is(err, family.ErrInvalidContact):
		f.renderResponse(w, r, createError(err.Error(), http.StatusUnprocessableEntity))
	case errors.Is(err, family.ErrNotAMember),
		errors.Is(err, family.ErrPermissionDenied):
		f.renderResponse(w, r, createError(err.Error(), http.StatusForbidden))
	case errors.Is(err, family.ErrInviteNotFound),
		errors.Is(err, family.ErrFamilyNotFound):
		f.renderResponse(w, r, createError(err.Error(), http.StatusNotFound))
	case errors.Is(err, family.ErrInviteConsumed),
		errors.Is(err, family.ErrAlreadyMember):
		f.renderResponse(w, r, createError(err.Error(), http.StatusConflict))
	case errors.Is(err, family.ErrInviteExpired):
		f.renderResponse(w, r, createError(err.Error(), http.StatusGone))
	default:
		f.log.Error("unexpected error", zap.Error(err))
		f.renderResponse(w, r, createError("internal error", http.StatusInternalServerError))
	}
}
