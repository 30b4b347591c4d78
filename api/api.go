package api

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hearthhq/hearth/api/app/management"
	"github.com/hearthhq/hearth/config"
	famsvc "github.com/hearthhq/hearth/family"
	"github.com/hearthhq/hearth/manage"
	promosvc "github.com/hearthhq/hearth/promo"

	fr "github.com/hearthhq/hearth/api/app/family"
	pr "github.com/hearthhq/hearth/api/app/promo"
)

var validate *validator.Validate
var tokenAuth *jwtauth.JWTAuth

func compose(logger *zap.Logger,
	cfg *config.Configuration,
	familyService *famsvc.Service,
	promoService *promosvc.Service,
	manageFamilyService *manage.FamilyService,
	manageInviteService *manage.InviteService,
	managePromoService *manage.PromoService) (*chi.Mux, error) {
	validate = validator.New()

	key, err := hmacSigningKey(cfg.JWT)
	if err != nil {
		return nil, err
	}
	tokenAuth = jwtauth.New(cfg.JWT.Algorithm, key, nil)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Use(loggerMiddleware(logger))

	r.Use(middleware.Recoverer)

	r.Use(middleware.Timeout(50 * time.Second))
	r.Use(jwtauth.Verifier(tokenAuth))

	r.Get("/.ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	familyRessource := fr.NewFamilyRessource(
		logger.Named("family_ressource"),
		familyService,
		validate,
	)
	promoRessource := pr.NewPromoRessource(
		logger.Named("promo_ressource"),
		promoService,
		validate,
	)

	if cfg.ManageEndpoint != nil && cfg.ManageEndpoint.Enable {
		manageRessource := management.NewManagementRessource(
			logger.Named("management_ressource"),
			*cfg,
			manageFamilyService,
			manageInviteService,
			managePromoService,
		)
		r.Mount("/manage", manageRessource.Router())
	}

	r.Mount("/family", familyRessource.Router())

	r.Mount("/promo", promoRessource.Router())

	return r, nil
}

// hmacSigningKey resolves the shared secret used to verify the
// upstream-issued bearer tokens, either inline or from a key file
func hmacSigningKey(cfg *config.JWTConfiguration) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("no jwt configuration found")
	}
	if !strings.HasPrefix(cfg.Algorithm, "HS") {
		return nil, errors.New("only HS256, HS384 and HS512 are supported")
	}
	if cfg.HMACSigningKey != "" {
		return []byte(cfg.HMACSigningKey), nil
	}
	if cfg.HMACSigningKeyFile != "" {
		key, err := os.ReadFile(cfg.HMACSigningKeyFile)
		if err != nil {
			return nil, err
		}
		return key, nil
	}
	return nil, errors.New("no hmac signing key configured")
}
