package middleware

import (
	"fmt"
	"net/http"

	"github.com/tendant/grantfunnel/internal/config"
)

type header struct {
	name  string
	value string
}

// responseHeaders resolves the configured values once; empty values are skipped.
func responseHeaders(cfg config.SecurityHeadersConfig) []header {
	candidates := []header{
		{"Content-Security-Policy", cfg.CSP},
		{"X-Frame-Options", cfg.FrameOptions},
		{"X-Content-Type-Options", cfg.ContentTypeOptions},
		{"X-XSS-Protection", cfg.XSSProtection},
		{"Referrer-Policy", cfg.ReferrerPolicy},
		{"Permissions-Policy", cfg.PermissionsPolicy},
		// Pages are always rendered from a fresh backend read; a cached
		// board would show a funnel that no longer exists.
		{"Cache-Control", cfg.CacheControl},
	}
	if cfg.HSTSMaxAge > 0 {
		candidates = append(candidates, header{"Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge)})
	}

	out := candidates[:0]
	for _, h := range candidates {
		if h.value != "" {
			out = append(out, h)
		}
	}
	return out
}

// SecurityHeaders creates middleware that applies the configured security
// and caching headers to every page. Disabling it keeps only Cache-Control.
func SecurityHeaders(cfg config.SecurityHeadersConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		cfg = config.SecurityHeadersConfig{CacheControl: cfg.CacheControl}
	}
	headers := responseHeaders(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, h := range headers {
				w.Header().Set(h.name, h.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
