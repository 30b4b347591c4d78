package management

import (
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

func (m *ManagementRessource) listFamilies(w http.ResponseWriter, r *http.Request) {
	page := r.Context().Value(pageKey).(int)
	pageSize := r.Context().Value(pageSizeKey).(int)
	query := r.Context().Value(queryKey).(string)
	sort := r.Context().Value(sortKey).(string)

	families, err := m.familyService.List(r.Context(), page, pageSize, query, sort)
	if err != nil {
		m.log.Error("error listing families", zap.Error(err))

		return
	}
	render.Respond(w, r, families)
}
