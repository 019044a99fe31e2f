package pages

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/tendant/grantfunnel/internal/httputil"
	"github.com/tendant/grantfunnel/pkg/api"
	"github.com/tendant/grantfunnel/pkg/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"organizations.html",
	"organization.html",
	"tenants.html",
	"funnel.html",
	"error.html",
}

// Renderer renders HTML pages inside the shared layout.
type Renderer struct {
	logger    *slog.Logger
	flasher   *httputil.Flasher
	templates map[string]*template.Template
}

// NewRenderer parses the embedded page templates.
func NewRenderer(logger *slog.Logger, flasher *httputil.Flasher) (*Renderer, error) {
	funcs := template.FuncMap{
		"statusLabel":  func(s domain.FunnelStatus) string { return s.Label() },
		"formatAmount": domain.FormatAmount,
		"formatYear":   domain.FormatYear,
		"shortID":      domain.ShortID,
		"deref":        domain.Deref,
		"date":         func(t time.Time) string { return t.Format("Jan 2, 2006") },
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
	}

	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &Renderer{
		logger:    logger,
		flasher:   flasher,
		templates: templates,
	}, nil
}

// PageData holds data for template rendering.
type PageData struct {
	Title string
	Nav   string
	Flash *httputil.Flash
	Data  any
}

// Render executes a page template. The pending flash, if any, is consumed;
// a flash already set on data takes precedence.
func (h *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	tmpl, ok := h.templates[name]
	if !ok {
		h.logger.Error("unknown template", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if pending := h.flasher.Pop(w, r); data.Flash == nil {
		data.Flash = pending
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// ErrorPage is the data of the error template.
type ErrorPage struct {
	Status  int
	Message string
}

// RenderError renders a page for a failed load. Backend 404s stay 404;
// other backend failures become 502.
func (h *Renderer) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	message := "The grant funnel API could not be reached."
	switch {
	case api.IsNotFound(err):
		status = http.StatusNotFound
		message = "Not found."
	case errors.Is(err, api.ErrRequestFailed):
		message = "The grant funnel API returned an error: " + err.Error()
	default:
		status = http.StatusInternalServerError
		message = "Something went wrong."
	}

	h.logger.Warn("page load failed", "path", r.URL.Path, "status", status, "error", err)
	h.Render(w, r, status, "error.html", PageData{
		Title: http.StatusText(status),
		Data:  ErrorPage{Status: status, Message: message},
	})
}

// NotFound renders the 404 page.
func (h *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusNotFound, "error.html", PageData{
		Title: http.StatusText(http.StatusNotFound),
		Data:  ErrorPage{Status: http.StatusNotFound, Message: "Not found."},
	})
}
