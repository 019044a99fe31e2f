package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/grantfunnel/pkg/api/apitest"
	"github.com/tendant/grantfunnel/pkg/domain"
)

// execute runs the CLI against backend and returns what it printed to stdout.
func execute(t *testing.T, backend *apitest.Backend, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("API_BASE_URL", backend.URL())
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestOrgsList(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.AddOrganization("Red Cross", apitest.InCity("Austin", "TX"))
	backend.AddOrganization("Gates Foundation")

	out, err := execute(t, backend, "", "orgs", "list", "-q", "red")
	require.NoError(t, err)
	assert.Contains(t, out, "Red Cross")
	assert.Contains(t, out, "Austin, TX")
	assert.Contains(t, out, "Showing 1-1 of 1")
	assert.NotContains(t, out, "Gates")
}

func TestOrgsList_Paging(t *testing.T) {
	backend := apitest.NewBackend(t)
	for _, name := range []string{"A", "B", "C"} {
		backend.AddOrganization(name)
	}

	out, err := execute(t, backend, "", "orgs", "list", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 1-2 of 3")
	assert.Contains(t, out, "--offset 2")
}

func TestOrgsList_Empty(t *testing.T) {
	backend := apitest.NewBackend(t)

	out, err := execute(t, backend, "", "orgs", "list", "-q", "Red Cross")
	require.NoError(t, err)
	assert.Contains(t, out, "No organizations found.")
}

func TestOrgsShow(t *testing.T) {
	backend := apitest.NewBackend(t)
	gates := backend.AddOrganization("Gates Foundation", apitest.WithRegistry("IRS", "12-3456789"))
	redCross := backend.AddOrganization("Red Cross")
	backend.AddGrant(gates.ID, redCross.ID, "1234.50", 2023)

	out, err := execute(t, backend, "", "orgs", "show", gates.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Gates Foundation")
	assert.Contains(t, out, "12-3456789")
	assert.Contains(t, out, "Grants Given (1)")
	assert.Contains(t, out, "$1,234.5")
	assert.Contains(t, out, redCross.ID)
	assert.Contains(t, out, "No grants received recorded.")
}

func TestOrgsShow_NotFound(t *testing.T) {
	backend := apitest.NewBackend(t)

	_, err := execute(t, backend, "", "orgs", "show", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestTenantsCreateAndList(t *testing.T) {
	backend := apitest.NewBackend(t)

	out, err := execute(t, backend, "", "tenants", "create", "Acme Corp!")
	require.NoError(t, err)
	assert.Contains(t, out, "Created tenant Acme Corp! (acme-corp)")

	out, err = execute(t, backend, "", "tenants", "create", "Other", "--slug", "custom-slug")
	require.NoError(t, err)
	assert.Contains(t, out, "(custom-slug)")

	out, err = execute(t, backend, "", "tenants", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "acme-corp")
	assert.Contains(t, out, "custom-slug")
}

func TestTenantsCreate_Invalid(t *testing.T) {
	backend := apitest.NewBackend(t)

	_, err := execute(t, backend, "", "tenants", "create", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyName)

	_, err = execute(t, backend, "", "tenants", "create", "Acme", "--slug", "Not A Slug")
	assert.ErrorIs(t, err, domain.ErrInvalidSlug)
	assert.Empty(t, backend.Requests())
}

func TestFunnelShow(t *testing.T) {
	backend := apitest.NewBackend(t)
	tenant := backend.AddTenant("Acme")
	org := backend.AddOrganization("Red Cross", apitest.InCity("Austin", "TX"))
	entry := backend.AddEntry(tenant.ID, org.ID, domain.FunnelStatusResearching)
	backend.AddEntry(tenant.ID, org.ID, domain.FunnelStatus("archived"))

	// Tenants can be named by slug.
	out, err := execute(t, backend, "", "funnel", "show", "acme")
	require.NoError(t, err)
	for _, s := range domain.FunnelStatuses {
		assert.Contains(t, out, s.Label())
	}
	assert.Contains(t, out, "Researching (1)")
	assert.Contains(t, out, "Red Cross")
	assert.Contains(t, out, entry.ID)
	assert.NotContains(t, out, "archived")
}

func TestFunnelShow_StatusFilter(t *testing.T) {
	backend := apitest.NewBackend(t)
	tenant := backend.AddTenant("Acme")
	backend.AddEntry(tenant.ID, backend.AddOrganization("A").ID, domain.FunnelStatusFunded)
	backend.AddEntry(tenant.ID, backend.AddOrganization("B").ID, domain.FunnelStatusPassed)

	out, err := execute(t, backend, "", "funnel", "show", tenant.ID, "--status", "funded")
	require.NoError(t, err)
	assert.Contains(t, out, "Funded (1)")
	assert.Contains(t, out, "Passed (0)")

	_, err = execute(t, backend, "", "funnel", "show", tenant.ID, "--status", "archived")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestFunnelShow_UnknownTenant(t *testing.T) {
	backend := apitest.NewBackend(t)

	_, err := execute(t, backend, "", "funnel", "show", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestFunnelMutations(t *testing.T) {
	backend := apitest.NewBackend(t)
	tenant := backend.AddTenant("Acme")
	org := backend.AddOrganization("Red Cross")

	out, err := execute(t, backend, "", "funnel", "add", tenant.ID, org.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Prospect (1)")

	entries := backend.Entries(tenant.ID)
	require.Len(t, entries, 1)

	out, err = execute(t, backend, "", "funnel", "move", tenant.ID, entries[0].ID, "funded")
	require.NoError(t, err)
	assert.Contains(t, out, "Funded (1)")
	assert.Equal(t, domain.FunnelStatusFunded, backend.Entries(tenant.ID)[0].Status)

	_, err = execute(t, backend, "", "funnel", "move", tenant.ID, entries[0].ID, "archived")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	out, err = execute(t, backend, "", "funnel", "remove", tenant.ID, entries[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Funded (0)")
	assert.Empty(t, backend.Entries(tenant.ID))
}

func TestFunnelSearch(t *testing.T) {
	backend := apitest.NewBackend(t)
	tenant := backend.AddTenant("Acme")
	backend.AddOrganization("Red Cross")

	out, err := execute(t, backend, "", "funnel", "search", tenant.ID, "red")
	require.NoError(t, err)
	assert.Contains(t, out, "Red Cross")

	out, err = execute(t, backend, "", "funnel", "search", tenant.ID, "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, `No organizations match "zzz".`)
}

func TestFunnelImport(t *testing.T) {
	backend := apitest.NewBackend(t)
	tenant := backend.AddTenant("Acme")
	a := backend.AddOrganization("A")
	b := backend.AddOrganization("B")

	path := filepath.Join(t.TempDir(), "orgs.yaml")
	content := "- org_id: " + a.ID + "\n- org_id: " + b.ID + "\n  status: researching\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	out, err := execute(t, backend, "", "funnel", "import", "acme", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Added 2 of 2 organizations.")
	assert.Contains(t, out, "Prospect (1)")
	assert.Contains(t, out, "Researching (1)")

	var bulk int
	for _, r := range backend.Requests() {
		if r.Path == "/tenants/"+tenant.ID+"/funnel/bulk" {
			bulk++
		}
	}
	assert.Equal(t, 1, bulk)
}

func TestFunnelImport_Stdin(t *testing.T) {
	backend := apitest.NewBackend(t)
	tenant := backend.AddTenant("Acme")
	org := backend.AddOrganization("A")

	out, err := execute(t, backend, "- org_id: "+org.ID+"\n", "funnel", "import", tenant.ID, "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 1 of 1 organizations.")
	assert.Len(t, backend.Entries(tenant.ID), 1)
}

func TestParseImport(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []domain.FunnelEntryInput
		wantErr error
	}{
		{
			name: "default and explicit status",
			raw:  "- org_id: a\n- org_id: b\n  status: funded\n",
			want: []domain.FunnelEntryInput{
				{OrgID: "a"},
				{OrgID: "b", Status: domain.FunnelStatusFunded},
			},
		},
		{name: "empty file", raw: "", wantErr: errEmptyImport},
		{name: "empty list", raw: "[]\n", wantErr: errEmptyImport},
		{name: "unknown status", raw: "- org_id: a\n  status: archived\n", wantErr: domain.ErrInvalidStatus},
		{name: "missing org", raw: "- status: funded\n", wantErr: domain.ErrEmptyOrgID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseImport([]byte(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseImport_UnknownField(t *testing.T) {
	_, err := parseImport([]byte("- org: a\n"))
	assert.Error(t, err)
}

func TestNewServer(t *testing.T) {
	backend := apitest.NewBackend(t)
	t.Setenv("API_BASE_URL", backend.URL())
	t.Setenv("SERVER_PORT", "9090")

	a := &app{}
	root := newRootCmd()
	require.NoError(t, a.setup(root, nil))

	server, err := a.newServer()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", server.Addr)
	assert.NotNil(t, server.Handler)
}
