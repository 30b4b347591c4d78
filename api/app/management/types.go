package management

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

type genericSuccessResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	ID      *string `json:"id,omitempty"`
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
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *genericErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

type createPromoCodeRequest struct {
	Code        string     `json:"code"`
	Description string     `json:"description"`
	MaxUses     int        `json:"max_uses"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

type deletePromoCodeRequest struct {
	Code string `json:"code"`
}
