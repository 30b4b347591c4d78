package management

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

func (m *ManagementRessource) listPromoCodes(w http.ResponseWriter, r *http.Request) {
	page := r.Context().Value(pageKey).(int)
	pageSize := r.Context().Value(pageSizeKey).(int)
	query := r.Context().Value(queryKey).(string)
	sort := r.Context().Value(sortKey).(string)

	codes, err := m.promoService.List(r.Context(), page, pageSize, query, sort)
	if err != nil {
		m.log.Error("error listing promo codes", zap.Error(err))

		return
	}
	render.Respond(w, r, codes)
}

func (m *ManagementRessource) createPromoCode(w http.ResponseWriter, r *http.Request) {
	var req *createPromoCodeRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		m.log.Info("invalid payload data", zap.Error(err))
		render.Respond(w, r, createError("invalid payload", http.StatusBadRequest))
		return
	}
	err = m.promoService.Create(r.Context(), req.Code, req.Description, req.MaxUses, req.ExpiresAt)
	success := true
	message := "Successfully created promo code"
	if err != nil {
		success = false
		message = "Could not create promo code"
	}
	err = render.Render(w, r, &genericSuccessResponse{
		Success: success,
		Message: message,
	})
	if err != nil {
		m.log.Error("unable to render response", zap.Error(err))
	}
}

func (m *ManagementRessource) deletePromoCode(w http.ResponseWriter, r *http.Request) {
	var req *deletePromoCodeRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		m.log.Info("invalid payload data", zap.Error(err))
		render.Respond(w, r, createError("invalid payload", http.StatusBadRequest))
		return
	}
	err = m.promoService.Delete(r.Context(), req.Code)
	success := true
	message := "Successfully deleted promo code"
	if err != nil {
		success = false
		message = "Could not delete promo code"
	}
	err = render.Render(w, r, &genericSuccessResponse{
		Success: success,
		Message: message,
	})
	if err != nil {
		m.log.Error("unable to render response", zap.Error(err))
	}
}
