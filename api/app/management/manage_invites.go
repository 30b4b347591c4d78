package management

import (
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

func (m *ManagementRessource) listInvites(w http.ResponseWriter, r *http.Request) {
	page := r.Context().Value(pageKey).(int)
	pageSize := r.Context().Value(pageSizeKey).(int)
	query := r.Context().Value(queryKey).(string)
	sort := r.Context().Value(sortKey).(string)

	invites, err := m.inviteService.List(r.Context(), page, pageSize, query, sort)
	if err != nil {
		m.log.Error("error listing invites", zap.Error(err))

		return
	}
	render.Respond(w, r, invites)
}
