package promo

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hearthhq/hearth/promo"
)

// PromoRessource habours the member-facing promo code endpoints
type PromoRessource struct {
	log      *zap.Logger
	service  *promo.Service
	validate *validator.Validate
}

func NewPromoRessource(logger *zap.Logger,
	service *promo.Service,
	validate *validator.Validate) *PromoRessource {
	return &PromoRessource{
		log:      logger,
		service:  service,
		validate: validate,
	}
}

func (p *PromoRessource) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(jwtauth.Authenticator)
	r.Post("/redeem", p.redeem)
	return r
}

type redeemRequest struct {
	Code string `json:"code" validate:"required"`
}

type redeemResponse struct {
	Code        string    `json:"code"`
	Description string    `json:"description"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}

func (g *redeemResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func createError(err string, status int) *genericErrorResponse {
	return &genericErrorResponse{
		Error:      err,
		StatusCode: status,
	}
}

type genericErrorResponse struct {
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *genericErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func (p *PromoRessource) redeem(w http.ResponseWriter, r *http.Request) {
	token, _, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	userID, err := uuid.Parse(token.Subject())
	if err != nil {
		p.log.Error("unable to parse user id", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		p.log.Info("invalid payload data", zap.Error(err))
		p.renderResponse(w, r, createError("invalid payload", http.StatusBadRequest))
		return
	}
	if err := p.validate.Struct(&req); err != nil {
		p.renderResponse(w, r, createError(err.Error(), http.StatusUnprocessableEntity))
		return
	}
	res, err := p.service.Redeem(r.Context(), userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, promo.ErrCodeNotFound):
			p.renderResponse(w, r, createError(err.Error(), http.StatusNotFound))
		case errors.Is(err, promo.ErrAlreadyRedeemed):
			p.renderResponse(w, r, createError(err.Error(), http.StatusConflict))
		case errors.Is(err, promo.ErrCodeExpired),
			errors.Is(err, promo.ErrCodeExhausted):
			p.renderResponse(w, r, createError(err.Error(), http.StatusGone))
		default:
			p.log.Error("unexpected error", zap.Error(err))
			p.renderResponse(w, r, createError("internal error", http.StatusInternalServerError))
		}
		return
	}
	p.renderResponse(w, r, &redeemResponse{
		Code:        res.Code,
		Description: res.Description,
		RedeemedAt:  res.RedeemedAt,
	})
}

func (p *PromoRessource) renderResponse(w http.ResponseWriter, r *http.Request, res render.Renderer) {
	if err := render.Render(w, r, res); err != nil {
		p.log.Error("unable to render response", zap.Error(err))
	}
}
