package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/grantfunnel/internal/config"
	"github.com/tendant/grantfunnel/internal/http/features/funnel"
	"github.com/tendant/grantfunnel/internal/http/features/organizations"
	"github.com/tendant/grantfunnel/internal/http/features/pages"
	"github.com/tendant/grantfunnel/internal/http/features/tenants"
	"github.com/tendant/grantfunnel/internal/http/middleware"
	"github.com/tendant/grantfunnel/internal/httputil"
	"github.com/tendant/grantfunnel/pkg/api"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	Client          *api.Client
	PageSize        int
	Cookie          httputil.CookieConfig
	RateLimit       config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	Validation      config.ValidationConfig
}

// NewRouter creates a new HTTP router with all pages registered.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("router: API client is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}

	flasher := httputil.NewFlasher(cfg.Cookie)
	renderer, err := pages.NewRenderer(cfg.Logger, flasher)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.Validation.MaxRequestBodySize))

	r.NotFound(renderer.NotFound)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/organizations", http.StatusFound)
	})

	mutations := middleware.MutationRateLimit(cfg.RateLimit, cfg.Logger)

	orgHandler := organizations.NewHandler(cfg.Logger, cfg.Client, renderer, cfg.PageSize)
	r.Get("/organizations", orgHandler.List)
	r.Get("/organizations/{orgID}", orgHandler.Detail)

	tenantHandler := tenants.NewHandler(cfg.Logger, cfg.Client, renderer, flasher)
	r.Get("/tenants", tenantHandler.List)
	r.Get("/tenants/slug", tenantHandler.SlugSuggestion)
	r.With(mutations).Post("/tenants", tenantHandler.Create)

	funnelHandler := funnel.NewHandler(cfg.Logger, cfg.Client, renderer, flasher)
	r.Route("/tenants/{tenantID}/funnel", func(r chi.Router) {
		r.Get("/", funnelHandler.Board)
		r.Group(func(r chi.Router) {
			r.Use(mutations)
			r.Post("/", funnelHandler.Add)
			r.Post("/bulk", funnelHandler.Bulk)
			r.Post("/{entryID}/status", funnelHandler.Move)
			r.Post("/{entryID}/delete", funnelHandler.Delete)
		})
	})

	return r, nil
}
