package management

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"

	"github.com/hearthhq/hearth/config"
	"github.com/hearthhq/hearth/sanitize"
)

const claimRoles = "roles"

// ManagementRessource habours the headless admin endpoints
type ManagementRessource struct {
	log           *zap.Logger
	cfg           config.Configuration
	familyService FamilyLister
	inviteService InviteLister
	promoService  PromoAdminService
}

func (m *ManagementRessource) Router() *chi.Mux {
	r := chi.NewRouter()

	if m.cfg.ManageEndpoint.CORS != nil {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   m.cfg.ManageEndpoint.CORS.AllowedOrigins,
			AllowedMethods:   m.cfg.ManageEndpoint.CORS.AllowedMethods,
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: m.cfg.ManageEndpoint.CORS.AllowCredentials,
			MaxAge:           300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		m.log.Debug(
			"Could not found",
			zap.String("method", r.Method),
			sanitize.UserInputString("path", r.URL.Path),
		)
		w.WriteHeader(404)
	})

	r.Get("/.ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	r.Group(func(gr chi.Router) {
		gr.Use(jwtauth.Authenticator)
		gr.Use(adminOnlyMiddleWare)
		gr.Route("/families", func(r chi.Router) {
			r.With(pageinate).Get("/", m.listFamilies)
		})
		gr.Route("/invites", func(r chi.Router) {
			r.With(pageinate).Get("/", m.listInvites)
		})
		gr.Route("/promo-codes", func(r chi.Router) {
			r.With(pageinate).Get("/", m.listPromoCodes)
			r.Post("/create", m.createPromoCode)
			r.Post("/delete", m.deletePromoCode)
		})
	})
	return r
}

func NewManagementRessource(logger *zap.Logger,
	cfg config.Configuration,
	familyService FamilyLister,
	inviteService InviteLister,
	promoService PromoAdminService) *ManagementRessource {
	return &ManagementRessource{
		log:           logger,
		cfg:           cfg,
		familyService: familyService,
		inviteService: inviteService,
		promoService:  promoService,
	}
}

type contextKey string

var pageSizeKey contextKey = "page_size"
var pageKey contextKey = "page"
var queryKey contextKey = "query"
var sortKey contextKey = "sort"

func pageinate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		p := r.URL.Query().Get("page")

		intOrDefault := func(in string, def int) int {
			if in == "" {
				return def
			}
			i, err := strconv.Atoi(in)
			if err != nil {
				return def
			}
			return i
		}
		ctx = context.WithValue(ctx, pageKey, intOrDefault(p, 1))
		s := r.URL.Query().Get("page_size")
		ctx = context.WithValue(ctx, pageSizeKey, intOrDefault(s, 12))

		q := r.URL.Query().Get("query")
		ctx = context.WithValue(ctx, queryKey, q)

		sort := r.URL.Query().Get("sort")
		ctx = context.WithValue(ctx, sortKey, sort)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminOnlyMiddleWare requires an admin entry in the roles claim of
// the upstream-issued bearer token
func adminOnlyMiddleWare(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		raw, ok := claims[claimRoles]
		if !ok || raw == nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		arr, ok := raw.([]interface{})
		if !ok || len(arr) == 0 {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		found := false
		for _, v := range arr {
			role, ok := v.(string)
			if ok && strings.ToLower(role) == "admin" {
				found = true
				break
			}
		}
		if !found {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
