package family

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hearthhq/hearth/family"
)

// FamilyRessource habours the member-facing family endpoints
type FamilyRessource struct {
	log      *zap.Logger
	service  *family.Service
	validate *validator.Validate
}

func NewFamilyRessource(logger *zap.Logger,
	service *family.Service,
	validate *validator.Validate) *FamilyRessource {
	return &FamilyRessource{
		log:      logger,
		service:  service,
		validate: validate,
	}
}

func (f *FamilyRessource) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(jwtauth.Authenticator)

	r.Post("/create", f.createFamily)
	r.Get("/mine", f.myMemberships)
	r.Post("/accept-invite", f.acceptInvite)
	r.Post("/decline-invite", f.declineInvite)
	r.Post("/join", f.joinByCode)

	r.Route("/invites", func(ri chi.Router) {
		ri.Post("/create", f.createInvite)
		ri.Post("/revoke", f.revokeInvite)
		ri.Get("/{invitationID}/qr", f.inviteQR)
	})

	r.Route("/{familyID}", func(rf chi.Router) {
		rf.Get("/", f.familyOverview)
		rf.Post("/leave", f.leaveFamily)
		rf.Post("/code/rotate", f.rotateJoinCode)
		rf.Get("/invites", f.familyInvites)
	})

	return r
}

// principal pulls the authenticated user id out of the bearer token
func (f *FamilyRessource) principal(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	token, _, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(token.Subject())
	if err != nil {
		f.log.Error("unable to parse user id", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return id, true
}

func (f *FamilyRessource) createFamily(w http.ResponseWriter, r *http.Request) {
	userID, ok := f.principal(w, r)
	if !ok {
		return
	}
	var req createFamilyRequest
	if !f.decodeAndValidate(w, r, &req) {
		return
	}
	created, err := f.service.CreateFamily(r.Context(), userID, req.Name)
	if err != nil {
		f.respondError(w, r, err)
		return
	}
	f.renderResponse(w, r, &familyCreatedResponse{
		Success:  true,
		ID:       created.ID,
		Name:     created.Name,
		JoinCode: created.JoinCode,
	})
}

func (f *FamilyRessource) myMemberships(w http.ResponseWriter, r *http.Request) {
	userID, ok := f.principal(w, r)
	if !ok {
		return
	}
	memberships, err := f.service.Memberships(r.Context(), userID)
	if err != nil {
		f.respondError(w, r, err)
		return
	}
	entries := make([]*membershipListEntry, 0, len(memberships))
	for _, m := range memberships {
		entries = append(entries, &membershipListEntry{
			FamilyID:   m.FamilyID,
			FamilyName: m.FamilyName,
			JoinCode:   m.JoinCode,
			Role:       m.Role,
			JoinedAt:   m.JoinedAt,
		})
	}
	render.Respond(w, r, entries)
}

func (f *FamilyRessource) familyOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := f.principal(w, r)
	if !ok {
		return
	}
	familyID, ok := f.familyIDParam(w, r)
	if !ok {
		return
	}
	overview, err := f.service.FamilyOverview(r.Context(), userID, familyID)
	if err != nil {
		f.respondError(w, r, err)
		return
	}
	members := make([]*memberEntry, 0, len(overview.Members))
	for _, m := range overview.Members {
		members = append(members, &memberEntry{
			UserID:    m.UserID,
			InviterID: m.InviterID,
			Role:      m.Role,
			JoinedAt:  m.JoinedAt,
		})
	}
	f.renderResponse(w, r, &familyOverviewResponse{
		ID:       overview.Family.ID,
		Name:     overview.Family.Name,
		JoinCode: overview.Family.JoinCode,
		Members:  members,
	})
}

func (f *FamilyRessource) leaveFamily(w http.ResponseWriter, r *http.Request) {
	userID, ok := f.principal(w, r)
	if !ok {
		return
	}
	familyID, ok := f.familyIDParam(w, r)
	if !ok {
		return
	}
	err := f.service.LeaveFamily(r.Context(), userID, familyID)
	if err != nil {
		f.respondError(w, r, err)
		return
	}
	f.renderResponse(w, r, &genericSuccessResponse{
		Success: true,
		Message: "Left family",
	})
}

func (f *FamilyRessource) rotateJoinCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := f.principal(w, r)
	if !ok {
		return
	}
	familyID, ok := f.familyIDParam(w, r)
	if !ok {
		return
	}
	code, err := f.service.RotateJoinCode(r.Context(), userID, familyID)
	if err != nil {
		f.respondError(w, r, err)
		return
	}
	f.renderResponse(w, r, &joinCodeResponse{
		FamilyID: familyID,
		JoinCode: code,
	})
}

func (f *FamilyRessource) joinByCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := f.principal(w, r)
	if !ok {
		return
	}
	var req joinFamilyRequest
	if !f.decodeAndValidate(w, r, &req) {
		return
	}
	res, err := f.service.JoinFamilyByCode(r.Context(), userID, req.Code)
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

func (f *FamilyRessource) familyIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "familyID"))
	if err != nil {
		f.renderResponse(w, r, createError("invalid family id", http.StatusBadRequest))
		return uuid.Nil, false
	}
	return id, true
}

func (f *FamilyRessource) renderResponse(w http.ResponseWriter, r *http.Request, res render.Renderer) {
	if err := render.Render(w, r, res); err != nil {
		f.log.Error("unable to render response", zap.Error(err))
	}
}
