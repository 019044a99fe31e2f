package tenants

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tendant/grantfunnel/internal/http/features/pages"
	"github.com/tendant/grantfunnel/internal/http/middleware"
	"github.com/tendant/grantfunnel/internal/httputil"
	"github.com/tendant/grantfunnel/pkg/domain"
)

// API is the subset of the backend the tenant pages need.
type API interface {
	ListTenants(ctx context.Context) ([]domain.Tenant, error)
	CreateTenant(ctx context.Context, in domain.TenantInput) (*domain.Tenant, error)
}

// Handler serves the tenant pages.
type Handler struct {
	logger   *slog.Logger
	client   API
	renderer *pages.Renderer
	flasher  *httputil.Flasher
}

// NewHandler creates a new tenants handler.
func NewHandler(logger *slog.Logger, client API, renderer *pages.Renderer, flasher *httputil.Flasher) *Handler {
	return &Handler{
		logger:   logger,
		client:   client,
		renderer: renderer,
		flasher:  flasher,
	}
}

// ListPage is the data of the tenants template.
type ListPage struct {
	Tenants []domain.Tenant
	// Name and Slug refill the create form after a rejected submission.
	Name string
	Slug string
}

// List renders all tenants and the create form.
// GET /tenants
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, ListPage{}, nil)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data ListPage, flash *httputil.Flash) {
	tenants, err := h.client.ListTenants(r.Context())
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	data.Tenants = tenants

	h.renderer.Render(w, r, status, "tenants.html", pages.PageData{
		Title: "Tenants",
		Nav:   "tenants",
		Flash: flash,
		Data:  data,
	})
}

// Create creates a tenant from the form and redirects back to the list.
// POST /tenants
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		if middleware.IsBodyTooLarge(err) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	submitted := domain.TenantInput{Name: r.PostForm.Get("name"), Slug: r.PostForm.Get("slug")}
	in, err := submitted.Normalize()
	if err != nil {
		h.render(w, r, http.StatusUnprocessableEntity, ListPage{Name: submitted.Name, Slug: submitted.Slug}, &httputil.Flash{
			Kind:    httputil.FlashError,
			Message: validationMessage(err),
		})
		return
	}

	tenant, err := h.client.CreateTenant(r.Context(), in)
	if err != nil {
		h.logger.Warn("tenant creation failed", "slug", in.Slug, "error", err)
		h.flasher.Error(w, fmt.Sprintf("Could not create tenant %q: %v", in.Name, err))
		httputil.SeeOther(w, r, "/tenants")
		return
	}

	h.logger.Info("tenant created", "tenant_id", tenant.ID, "slug", tenant.Slug)
	h.flasher.Info(w, fmt.Sprintf("Created tenant %q.", tenant.Name))
	httputil.SeeOther(w, r, "/tenants")
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyName):
		return "Name is required."
	case errors.Is(err, domain.ErrNameTooLong):
		return fmt.Sprintf("Name must be at most %d characters.", domain.MaxTenantNameLength)
	case errors.Is(err, domain.ErrInvalidSlug):
		return "Slug may only contain lowercase letters, digits and single hyphens."
	default:
		return err.Error()
	}
}

// SlugSuggestion returns the slug derived from a tenant name.
// GET /tenants/slug?name=
func (h *Handler) SlugSuggestion(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"slug": domain.Slugify(r.URL.Query().Get("name")),
	})
}
