package funnel

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tendant/grantfunnel/internal/http/features/pages"
	"github.com/tendant/grantfunnel/internal/http/middleware"
	"github.com/tendant/grantfunnel/internal/httputil"
	"github.com/tendant/grantfunnel/pkg/domain"
	"github.com/tendant/grantfunnel/pkg/funnel"
)

// Handler serves a tenant's funnel board and its mutations.
type Handler struct {
	logger   *slog.Logger
	client   funnel.API
	renderer *pages.Renderer
	flasher  *httputil.Flasher
}

// NewHandler creates a new funnel handler.
func NewHandler(logger *slog.Logger, client funnel.API, renderer *pages.Renderer, flasher *httputil.Flasher) *Handler {
	return &Handler{
		logger:   logger,
		client:   client,
		renderer: renderer,
		flasher:  flasher,
	}
}

// BoardPage is the data of the funnel template.
type BoardPage struct {
	TenantID    string
	Filter      domain.FunnelStatus
	Statuses    []domain.FunnelStatus
	Columns     []funnel.Column
	Query       string
	SearchError error
	Results     []domain.Organization
}

func boardURL(tenantID string) string {
	return "/tenants/" + tenantID + "/funnel"
}

// tenantID returns the validated tenant path parameter, or renders 404.
func (h *Handler) tenantID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "tenantID")
	if _, err := uuid.Parse(id); err != nil {
		h.renderer.NotFound(w, r)
		return "", false
	}
	return id, true
}

// parseForm reads the form body, answering the request itself on failure.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		if middleware.IsBodyTooLarge(err) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return false
	}
	return true
}

// Board renders the funnel columns and, when q is set, organization search results.
// GET /tenants/{tenantID}/funnel?status=&q=
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}

	opts := []funnel.BoardOption{funnel.WithLogger(h.logger)}
	var filter domain.FunnelStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s, err := domain.ParseFunnelStatus(raw)
		if err != nil {
			h.logger.Debug("ignoring status filter", "status", raw, "error", err)
		} else {
			filter = s
			opts = append(opts, funnel.WithStatusFilter(s))
		}
	}

	board := funnel.NewBoard(h.client, tenantID, opts...)
	if err := board.Refresh(r.Context()); err != nil {
		h.renderer.RenderError(w, r, err)
		return
	}

	data := BoardPage{
		TenantID: tenantID,
		Filter:   filter,
		Statuses: domain.FunnelStatuses,
		Columns:  board.Columns(),
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if data.Query != "" {
		results, err := board.Search(r.Context(), data.Query)
		if err != nil {
			h.logger.Warn("organization search failed", "query", data.Query, "error", err)
			data.SearchError = err
		}
		data.Results = results
	}

	h.renderer.Render(w, r, http.StatusOK, "funnel.html", pages.PageData{
		Title: "Funnel",
		Nav:   "tenants",
		Data:  data,
	})
}

// Add puts one organization into the funnel with the default status.
// POST /tenants/{tenantID}/funnel
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok || !parseForm(w, r) {
		return
	}

	in := domain.FunnelEntryInput{OrgID: strings.TrimSpace(r.PostForm.Get("org_id"))}
	if err := in.Validate(); err != nil {
		h.flasher.Error(w, "Choose an organization to add.")
		httputil.SeeOther(w, r, boardURL(tenantID))
		return
	}

	if _, err := h.client.CreateFunnelEntry(r.Context(), tenantID, in); err != nil {
		h.fail(w, r, tenantID, "Could not add organization", err)
		return
	}
	h.flasher.Info(w, "Organization added to the funnel.")
	httputil.SeeOther(w, r, boardURL(tenantID))
}

// Bulk adds every organization ID listed in the form, one per line.
// POST /tenants/{tenantID}/funnel/bulk
func (h *Handler) Bulk(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok || !parseForm(w, r) {
		return
	}

	var status domain.FunnelStatus
	if raw := strings.TrimSpace(r.PostForm.Get("status")); raw != "" {
		s, err := domain.ParseFunnelStatus(raw)
		if err != nil {
			h.flasher.Error(w, fmt.Sprintf("Unknown status %q.", raw))
			httputil.SeeOther(w, r, boardURL(tenantID))
			return
		}
		status = s
	}

	ids := SplitOrgIDs(r.PostForm.Get("org_ids"))
	if len(ids) == 0 {
		h.flasher.Error(w, "List at least one organization ID.")
		httputil.SeeOther(w, r, boardURL(tenantID))
		return
	}
	in := make([]domain.FunnelEntryInput, 0, len(ids))
	for _, id := range ids {
		in = append(in, domain.FunnelEntryInput{OrgID: id, Status: status})
	}

	created, err := h.client.BulkCreateFunnelEntries(r.Context(), tenantID, in)
	if err != nil {
		h.fail(w, r, tenantID, "Could not add organizations", err)
		return
	}
	h.flasher.Info(w, fmt.Sprintf("Added %d of %d organizations.", len(created), len(in)))
	httputil.SeeOther(w, r, boardURL(tenantID))
}

// SplitOrgIDs splits a pasted list of IDs on whitespace and commas and
// drops duplicates, keeping first-seen order.
func SplitOrgIDs(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	seen := make(map[string]bool, len(fields))
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		ids = append(ids, f)
	}
	return ids
}

// Move changes an entry's status.
// POST /tenants/{tenantID}/funnel/{entryID}/status
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	entryID := chi.URLParam(r, "entryID")
	if _, err := uuid.Parse(entryID); err != nil {
		h.renderer.NotFound(w, r)
		return
	}
	if !parseForm(w, r) {
		return
	}

	status, err := domain.ParseFunnelStatus(r.PostForm.Get("status"))
	if err != nil {
		h.flasher.Error(w, fmt.Sprintf("Unknown status %q.", r.PostForm.Get("status")))
		httputil.SeeOther(w, r, boardURL(tenantID))
		return
	}

	if _, err := h.client.UpdateFunnelEntry(r.Context(), tenantID, entryID, status); err != nil {
		h.fail(w, r, tenantID, "Could not move entry", err)
		return
	}
	h.flasher.Info(w, "Moved to "+status.Label()+".")
	httputil.SeeOther(w, r, boardURL(tenantID))
}

// Delete removes an entry from the funnel.
// POST /tenants/{tenantID}/funnel/{entryID}/delete
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenantID(w, r)
	if !ok {
		return
	}
	entryID := chi.URLParam(r, "entryID")
	if _, err := uuid.Parse(entryID); err != nil {
		h.renderer.NotFound(w, r)
		return
	}

	if err := h.client.DeleteFunnelEntry(r.Context(), tenantID, entryID); err != nil {
		h.fail(w, r, tenantID, "Could not remove entry", err)
		return
	}
	h.flasher.Info(w, "Entry removed.")
	httputil.SeeOther(w, r, boardURL(tenantID))
}

// fail reports a rejected mutation on the next board render.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, tenantID, action string, err error) {
	h.logger.Warn("funnel mutation failed", "tenant_id", tenantID, "path", r.URL.Path, "error", err)
	h.flasher.Error(w, fmt.Sprintf("%s: %v", action, err))
	httputil.SeeOther(w, r, boardURL(tenantID))
}
