// Package grantfunnel provides the grant funnel web UI as an embeddable
// http.Handler over a grant funnel REST backend.
//
// Basic usage:
//
//	ui, err := grantfunnel.New(grantfunnel.Config{
//	    APIBaseURL: "http://localhost:8000/api",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", ui.Handler())
//
// Pages link to absolute paths (/organizations, /tenants/...), so mount the
// handler at the root of its host:
//
//	r := chi.NewRouter()
//	r.Mount("/", ui.Handler())
package grantfunnel

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tendant/grantfunnel/internal/config"
	httpserver "github.com/tendant/grantfunnel/internal/http"
	"github.com/tendant/grantfunnel/internal/httputil"
	"github.com/tendant/grantfunnel/pkg/api"
)

// Config holds the configuration for the UI.
type Config struct {
	// APIBaseURL is the backend base URL including its /api prefix (required).
	APIBaseURL string

	// APITimeout bounds each backend request (default: no timeout).
	APITimeout time.Duration

	// HTTPClient overrides the client used to reach the backend.
	HTTPClient *http.Client

	// PageSize is the organization list page size (default: 50).
	PageSize int

	// CookieSecure sets the Secure flag on the notification cookie.
	CookieSecure bool

	// MutationsPerMinute limits form posts per client IP (default: 60, negative disables).
	MutationsPerMinute int

	// Logger is the structured logger (default: slog.Default()).
	Logger *slog.Logger
}

// UI is a configured grant funnel web UI.
type UI struct {
	config  Config
	client  *api.Client
	handler http.Handler
}

// New creates the UI and its backend client.
func New(cfg Config) (*UI, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	client := api.New(cfg.APIBaseURL,
		api.WithHTTPClient(cfg.HTTPClient),
		api.WithLogger(cfg.Logger),
		api.WithUserAgent("grantfunnel"),
	)

	cookie := httputil.DefaultCookieConfig()
	cookie.Secure = cfg.CookieSecure

	handler, err := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:   cfg.Logger,
		Client:   client,
		PageSize: cfg.PageSize,
		Cookie:   cookie,
		RateLimit: config.RateLimitConfig{
			Enabled:            cfg.MutationsPerMinute > 0,
			MutationsPerMinute: cfg.MutationsPerMinute,
		},
		SecurityHeaders: config.DefaultSecurityHeaders(),
		Validation:      config.ValidationConfig{MaxRequestBodySize: 1 << 20},
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	return &UI{config: cfg, client: client, handler: handler}, nil
}

func validateConfig(cfg *Config) error {
	if cfg.APIBaseURL == "" {
		return errors.New("APIBaseURL is required")
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("APIBaseURL must be an absolute http(s) URL, got %q", cfg.APIBaseURL)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.MutationsPerMinute == 0 {
		cfg.MutationsPerMinute = 60
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.APITimeout}
	}
}

// Handler returns the UI's routes.
//
//	GET  /                                      - redirect to /organizations
//	GET  /health                                - health check
//	GET  /organizations                         - organization list (?q=&offset=)
//	GET  /organizations/{orgID}                 - organization with its grants
//	GET  /tenants                               - tenant list and create form
//	POST /tenants                               - create tenant
//	GET  /tenants/slug                          - slug suggestion (?name=)
//	GET  /tenants/{tenantID}/funnel             - funnel board (?status=&q=)
//	POST /tenants/{tenantID}/funnel             - add organization
//	POST /tenants/{tenantID}/funnel/bulk        - add several organizations
//	POST /tenants/{tenantID}/funnel/{id}/status - move entry
//	POST /tenants/{tenantID}/funnel/{id}/delete - remove entry
func (u *UI) Handler() http.Handler {
	return u.handler
}

// Client returns the backend client for advanced usage.
func (u *UI) Client() *api.Client {
	return u.client
}
