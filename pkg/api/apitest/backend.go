// Package apitest provides an in-memory grant funnel backend for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tendant/grantfunnel/pkg/domain"
)

// Request is a request recorded by the backend.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type failure struct {
	method string
	path   string
	status int
	body   string
}

// Backend is an in-memory implementation of the REST surface.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	clock    time.Time
	orgs     []domain.Organization
	grants   []domain.Grant
	tenants  []domain.Tenant
	entries  []domain.FunnelEntry
	requests []Request
	failures []failure
}

// NewBackend starts a backend that is shut down when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Close)
	return b
}

// URL is the base URL to hand to api.New.
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

// Close shuts the server down.
func (b *Backend) Close() {
	b.Server.Close()
}

// Requests returns the requests seen so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// ResetRequests clears the request log.
func (b *Backend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

// Fail makes the next request matching method and path prefix answer with status and body.
func (b *Backend) Fail(method, pathPrefix string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, failure{method: method, path: pathPrefix, status: status, body: body})
}

func (b *Backend) tick() time.Time {
	b.clock = b.clock.Add(time.Second)
	return b.clock
}

// AddOrganization seeds an organization and returns it.
func (b *Backend) AddOrganization(name string, opts ...func(*domain.Organization)) domain.Organization {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.tick()
	org := domain.Organization{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	for _, opt := range opts {
		opt(&org)
	}
	b.orgs = append(b.orgs, org)
	return org
}

// AddGrant seeds a grant between two organizations.
func (b *Backend) AddGrant(funderID, granteeID, amount string, year int) domain.Grant {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := domain.Grant{ID: uuid.NewString(), FunderOrgID: funderID, GranteeOrgID: granteeID, CreatedAt: b.tick()}
	if amount != "" {
		d := domain.Decimal(amount)
		g.Amount = &d
	}
	if year != 0 {
		g.Year = &year
	}
	b.grants = append(b.grants, g)
	return g
}

// AddTenant seeds a tenant.
func (b *Backend) AddTenant(name string) domain.Tenant {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := domain.Tenant{ID: uuid.NewString(), Name: name, Slug: domain.Slugify(name), CreatedAt: b.tick()}
	b.tenants = append(b.tenants, t)
	return t
}

// AddEntry seeds a funnel entry with any status, including unknown ones.
func (b *Backend) AddEntry(tenantID, orgID string, status domain.FunnelStatus) domain.FunnelEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.tick()
	e := domain.FunnelEntry{ID: uuid.NewString(), TenantID: tenantID, OrgID: orgID, Status: status, CreatedAt: now, UpdatedAt: now}
	b.entries = append(b.entries, e)
	return e
}

// Entries returns a tenant's entries in insertion order.
func (b *Backend) Entries(tenantID string) []domain.FunnelEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.FunnelEntry
	for _, e := range b.entries {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Route("/api", func(r chi.Router) {
		r.Get("/organizations", b.listOrganizations)
		r.Get("/organizations/count", b.countOrganizations)
		r.Get("/organizations/{id}", b.getOrganization)
		r.Get("/grants", b.listGrants)
		r.Get("/tenants", b.listTenants)
		r.Post("/tenants", b.createTenant)
		r.Get("/tenants/{tenantID}/funnel", b.listEntries)
		r.Post("/tenants/{tenantID}/funnel", b.createEntry)
		r.Post("/tenants/{tenantID}/funnel/bulk", b.bulkCreateEntries)
		r.Patch("/tenants/{tenantID}/funnel/{entryID}", b.updateEntry)
		r.Delete("/tenants/{tenantID}/funnel/{entryID}", b.deleteEntry)
	})
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAll(r)
		}
		path := strings.TrimPrefix(r.URL.Path, "/api")

		b.mu.Lock()
		b.requests = append(b.requests, Request{Method: r.Method, Path: path, Query: r.URL.RawQuery, Body: string(body)})
		for i, f := range b.failures {
			if f.method == r.Method && strings.HasPrefix(path, f.path) {
				b.failures = append(b.failures[:i], b.failures[i+1:]...)
				b.mu.Unlock()
				w.WriteHeader(f.status)
				fmt.Fprint(w, f.body)
				return
			}
		}
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func page(r *http.Request, n int) (int, int) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

func (b *Backend) matchOrganizations(q string) []domain.Organization {
	q = strings.ToLower(q)
	out := []domain.Organization{}
	for _, o := range b.orgs {
		if q == "" || strings.Contains(strings.ToLower(o.Name), q) {
			out = append(out, o)
		}
	}
	return out
}

func (b *Backend) listOrganizations(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	orgs := b.matchOrganizations(r.URL.Query().Get("q"))
	start, end := page(r, len(orgs))
	writeJSON(w, http.StatusOK, orgs[start:end])
}

func (b *Backend) countOrganizations(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]int{"count": len(b.matchOrganizations(r.URL.Query().Get("q")))})
}

func (b *Backend) getOrganization(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := chi.URLParam(r, "id")
	for _, o := range b.orgs {
		if o.ID == id {
			writeJSON(w, http.StatusOK, o)
			return
		}
	}
	detail(w, http.StatusNotFound, "Organization not found")
}

func (b *Backend) listGrants(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	funder := r.URL.Query().Get("funder_org_id")
	grantee := r.URL.Query().Get("grantee_org_id")
	out := []domain.Grant{}
	for _, g := range b.grants {
		if funder != "" && g.FunderOrgID != funder {
			continue
		}
		if grantee != "" && g.GranteeOrgID != grantee {
			continue
		}
		out = append(out, g)
	}
	start, end := page(r, len(out))
	writeJSON(w, http.StatusOK, out[start:end])
}

func (b *Backend) listTenants(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]domain.Tenant{}, b.tenants...))
}

func (b *Backend) createTenant(w http.ResponseWriter, r *http.Request) {
	var in domain.TenantInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" || in.Slug == "" {
		detail(w, http.StatusUnprocessableEntity, "name and slug are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tenants {
		if t.Slug == in.Slug {
			detail(w, http.StatusConflict, "Slug already exists")
			return
		}
	}
	t := domain.Tenant{ID: uuid.NewString(), Name: in.Name, Slug: in.Slug, CreatedAt: b.tick()}
	b.tenants = append(b.tenants, t)
	writeJSON(w, http.StatusCreated, t)
}

func (b *Backend) hasTenant(id string) bool {
	for _, t := range b.tenants {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (b *Backend) listEntries(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tenantID := chi.URLParam(r, "tenantID")
	if !b.hasTenant(tenantID) {
		detail(w, http.StatusNotFound, "Tenant not found")
		return
	}
	status := domain.FunnelStatus(r.URL.Query().Get("status"))
	out := []domain.FunnelEntry{}
	for _, e := range b.entries {
		if e.TenantID != tenantID || (status != "" && e.Status != status) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) newEntry(tenantID string, in domain.FunnelEntryInput) (domain.FunnelEntry, bool) {
	if in.Status == "" {
		in.Status = domain.FunnelStatusProspect
	}
	if in.OrgID == "" || !in.Status.Valid() {
		return domain.FunnelEntry{}, false
	}
	now := b.tick()
	return domain.FunnelEntry{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		OrgID:     in.OrgID,
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}, true
}

func (b *Backend) createEntry(w http.ResponseWriter, r *http.Request) {
	var in domain.FunnelEntryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	tenantID := chi.URLParam(r, "tenantID")
	if !b.hasTenant(tenantID) {
		detail(w, http.StatusNotFound, "Tenant not found")
		return
	}
	e, ok := b.newEntry(tenantID, in)
	if !ok {
		detail(w, http.StatusUnprocessableEntity, "invalid funnel entry")
		return
	}
	b.entries = append(b.entries, e)
	writeJSON(w, http.StatusCreated, e)
}

func (b *Backend) bulkCreateEntries(w http.ResponseWriter, r *http.Request) {
	var in []domain.FunnelEntryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		detail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	tenantID := chi.URLParam(r, "tenantID")
	if !b.hasTenant(tenantID) {
		detail(w, http.StatusNotFound, "Tenant not found")
		return
	}
	created := make([]domain.FunnelEntry, 0, len(in))
	for _, item := range in {
		e, ok := b.newEntry(tenantID, item)
		if !ok {
			detail(w, http.StatusUnprocessableEntity, "invalid funnel entry")
			return
		}
		created = append(created, e)
	}
	b.entries = append(b.entries, created...)
	writeJSON(w, http.StatusCreated, created)
}

func (b *Backend) findEntry(r *http.Request) int {
	tenantID := chi.URLParam(r, "tenantID")
	entryID := chi.URLParam(r, "entryID")
	for i, e := range b.entries {
		if e.ID == entryID && e.TenantID == tenantID {
			return i
		}
	}
	return -1
}

func (b *Backend) updateEntry(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status domain.FunnelStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || !in.Status.Valid() {
		detail(w, http.StatusUnprocessableEntity, "invalid status")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.findEntry(r)
	if i < 0 {
		detail(w, http.StatusNotFound, "Funnel entry not found")
		return
	}
	b.entries[i].Status = in.Status
	b.entries[i].UpdatedAt = b.tick()
	writeJSON(w, http.StatusOK, b.entries[i])
}

func (b *Backend) deleteEntry(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.findEntry(r)
	if i < 0 {
		detail(w, http.StatusNotFound, "Funnel entry not found")
		return
	}
	b.entries = append(b.entries[:i], b.entries[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}
