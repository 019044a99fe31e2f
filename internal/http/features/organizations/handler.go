package organizations

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tendant/grantfunnel/internal/http/features/pages"
	"github.com/tendant/grantfunnel/pkg/directory"
)

// Handler serves the organization list and detail pages.
type Handler struct {
	logger   *slog.Logger
	client   directory.API
	renderer *pages.Renderer
	pageSize int
}

// NewHandler creates a new organizations handler.
func NewHandler(logger *slog.Logger, client directory.API, renderer *pages.Renderer, pageSize int) *Handler {
	return &Handler{
		logger:   logger,
		client:   client,
		renderer: renderer,
		pageSize: pageSize,
	}
}

// ListPage is the data of the organization list template.
type ListPage struct {
	*directory.List
	CountError error
	PrevURL    string
	NextURL    string
}

// List renders one page of organizations.
// GET /organizations?q=&offset=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	list, err := directory.LoadList(r.Context(), h.client, query, offset, h.pageSize)
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	if list.CountErr != nil {
		h.logger.Warn("organization count failed", "query", query, "error", list.CountErr)
	}

	h.renderer.Render(w, r, http.StatusOK, "organizations.html", pages.PageData{
		Title: "Organizations",
		Nav:   "organizations",
		Data: ListPage{
			List:       list,
			CountError: list.CountErr,
			PrevURL:    pageURL(query, offset-h.pageSize),
			NextURL:    pageURL(query, offset+h.pageSize),
		},
	})
}

func pageURL(query string, offset int) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if offset > 0 {
		v.Set("offset", strconv.Itoa(offset))
	}
	if len(v) == 0 {
		return "/organizations"
	}
	return "/organizations?" + v.Encode()
}

// Detail renders an organization with the grants it gave and received.
// GET /organizations/{orgID}
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	if _, err := uuid.Parse(orgID); err != nil {
		h.renderer.NotFound(w, r)
		return
	}

	detail, err := directory.LoadDetail(r.Context(), h.client, orgID)
	if err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}
	for name, section := range map[string]directory.GrantSection{"given": detail.Given, "received": detail.Received} {
		if section.Err != nil {
			h.logger.Warn("grant list failed", "org_id", orgID, "side", name, "error", section.Err)
		}
	}

	h.renderer.Render(w, r, http.StatusOK, "organization.html", pages.PageData{
		Title: detail.Organization.Name,
		Nav:   "organizations",
		Data:  detail,
	})
}
