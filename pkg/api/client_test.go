package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/grantfunnel/pkg/api"
	"github.com/tendant/grantfunnel/pkg/api/apitest"
	"github.com/tendant/grantfunnel/pkg/domain"
)

func TestClient_ErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	client := api.New(srv.URL)
	_, err := client.ListTenants(context.Background())
	require.Error(t, err)

	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "internal error")
	assert.True(t, errors.Is(err, api.ErrRequestFailed))
	assert.Equal(t, http.StatusInternalServerError, api.StatusCode(err))

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "internal error", apiErr.Body)
	assert.Equal(t, "/tenants", apiErr.Path)
}

func TestClient_TransportErrorIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := api.New(url)
	_, err := client.ListTenants(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrRequestFailed))
	assert.Equal(t, 0, api.StatusCode(err))
}

func TestClient_NoContentSkipsDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/tenants/t1/funnel/e1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := api.New(srv.URL)
	require.NoError(t, client.DeleteFunnelEntry(context.Background(), "t1", "e1"))
}

func TestClient_QueryOnlyCarriesDefinedParams(t *testing.T) {
	tests := []struct {
		name  string
		call  func(c *api.Client) error
		path  string
		query string
	}{
		{
			name: "organizations without params",
			call: func(c *api.Client) error {
				_, err := c.ListOrganizations(context.Background(), api.OrganizationQuery{})
				return err
			},
			path:  "/organizations",
			query: "",
		},
		{
			name: "organizations with all params",
			call: func(c *api.Client) error {
				_, err := c.ListOrganizations(context.Background(), api.OrganizationQuery{Q: "red cross", Offset: 50, Limit: 25})
				return err
			},
			path:  "/organizations",
			query: "limit=25&offset=50&q=red+cross",
		},
		{
			name: "count without query",
			call: func(c *api.Client) error {
				_, err := c.CountOrganizations(context.Background(), "")
				return err
			},
			path:  "/organizations/count",
			query: "",
		},
		{
			name: "grants by funder",
			call: func(c *api.Client) error {
				_, err := c.ListGrants(context.Background(), api.GrantQuery{FunderOrgID: "org-1"})
				return err
			},
			path:  "/grants",
			query: "funder_org_id=org-1",
		},
		{
			name: "funnel with status",
			call: func(c *api.Client) error {
				_, err := c.ListFunnelEntries(context.Background(), "t1", domain.FunnelStatusFunded)
				return err
			},
			path:  "/tenants/t1/funnel",
			query: "status=funded",
		},
		{
			name: "funnel without status",
			call: func(c *api.Client) error {
				_, err := c.ListFunnelEntries(context.Background(), "t1", "")
				return err
			},
			path:  "/tenants/t1/funnel",
			query: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotQuery string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
				if r.URL.Path == "/organizations/count" {
					w.Write([]byte(`{"count":0}`))
					return
				}
				w.Write([]byte(`[]`))
			}))
			defer srv.Close()

			require.NoError(t, tt.call(api.New(srv.URL)))
			assert.Equal(t, tt.path, gotPath)
			assert.Equal(t, tt.query, gotQuery)
		})
	}
}

func TestClient_PathSegmentsAreEscaped(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"id":"x","name":"x"}`))
	}))
	defer srv.Close()

	_, err := api.New(srv.URL).GetOrganization(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/organizations/a%2Fb", gotPath)
}

func TestClient_CreateFunnelEntryOmitsEmptyStatus(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"e1","tenant_id":"t1","org_id":"org-1","status":"prospect"}`))
	}))
	defer srv.Close()

	entry, err := api.New(srv.URL).CreateFunnelEntry(context.Background(), "t1", domain.FunnelEntryInput{OrgID: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"org_id": "org-1"}, body)
	assert.Equal(t, domain.FunnelStatusProspect, entry.Status)
}

func TestClient_ForwardsRequestID(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx := api.WithRequestID(context.Background(), "req-42")
	_, err := api.New(srv.URL).ListTenants(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-42", got)
}

func TestClient_FunnelRoundTrip(t *testing.T) {
	backend := apitest.NewBackend(t)
	tenant := backend.AddTenant("Acme")
	client := api.New(backend.URL())
	ctx := context.Background()

	created, err := client.CreateFunnelEntry(ctx, tenant.ID, domain.FunnelEntryInput{OrgID: "org-1"})
	require.NoError(t, err)

	entries, err := client.ListFunnelEntries(ctx, tenant.ID, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "org-1", entries[0].OrgID)
	assert.Equal(t, domain.FunnelStatusProspect, entries[0].Status)

	updated, err := client.UpdateFunnelEntry(ctx, tenant.ID, created.ID, domain.FunnelStatusFunded)
	require.NoError(t, err)
	assert.Equal(t, domain.FunnelStatusFunded, updated.Status)

	entries, err = client.ListFunnelEntries(ctx, tenant.ID, domain.FunnelStatusFunded)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, created.ID, entries[0].ID)

	require.NoError(t, client.DeleteFunnelEntry(ctx, tenant.ID, created.ID))
	entries, err = client.ListFunnelEntries(ctx, tenant.ID, "")
	require.NoError(t, err)
	assert.Empty(t, entries)

	err = client.DeleteFunnelEntry(ctx, tenant.ID, created.ID)
	assert.True(t, api.IsNotFound(err))
}

func TestClient_BulkCreate(t *testing.T) {
	backend := apitest.NewBackend(t)
	tenant := backend.AddTenant("Acme")
	client := api.New(backend.URL())

	created, err := client.BulkCreateFunnelEntries(context.Background(), tenant.ID, []domain.FunnelEntryInput{
		{OrgID: "org-1"},
		{OrgID: "org-2", Status: domain.FunnelStatusResearching},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, domain.FunnelStatusProspect, created[0].Status)
	assert.Equal(t, domain.FunnelStatusResearching, created[1].Status)
}

func TestClient_OrganizationsAndCount(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.AddOrganization("American Red Cross")
	backend.AddOrganization("Gates Foundation")
	client := api.New(backend.URL())
	ctx := context.Background()

	orgs, err := client.ListOrganizations(ctx, api.OrganizationQuery{Q: "red cross"})
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "American Red Cross", orgs[0].Name)

	n, err := client.CountOrganizations(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = client.GetOrganization(ctx, "missing")
	assert.True(t, api.IsNotFound(err))
}

func TestClient_CreateTenantConflict(t *testing.T) {
	backend := apitest.NewBackend(t)
	client := api.New(backend.URL())
	ctx := context.Background()

	tenant, err := client.CreateTenant(ctx, domain.TenantInput{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.Slug)

	_, err = client.CreateTenant(ctx, domain.TenantInput{Name: "Acme 2", Slug: "acme"})
	assert.Equal(t, http.StatusConflict, api.StatusCode(err))
}
