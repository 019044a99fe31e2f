package directory_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/grantfunnel/pkg/api"
	"github.com/tendant/grantfunnel/pkg/api/apitest"
	"github.com/tendant/grantfunnel/pkg/directory"
)

func TestLoadList(t *testing.T) {
	backend := apitest.NewBackend(t)
	for _, name := range []string{"Red Cross Austin", "Red Cross Dallas", "Red Cross Houston", "Gates Foundation"} {
		backend.AddOrganization(name)
	}
	client := api.New(backend.URL())

	list, err := directory.LoadList(context.Background(), client, "red cross", 0, 2)
	require.NoError(t, err)
	assert.Len(t, list.Organizations, 2)
	assert.Equal(t, 3, list.Total)
	assert.False(t, list.HasPrev())
	assert.True(t, list.HasNext())

	list, err = directory.LoadList(context.Background(), client, "red cross", 2, 2)
	require.NoError(t, err)
	assert.Len(t, list.Organizations, 1)
	assert.True(t, list.HasPrev())
	assert.False(t, list.HasNext())
}

func TestLoadList_IssuesTwoIndependentRequests(t *testing.T) {
	backend := apitest.NewBackend(t)
	client := api.New(backend.URL())

	_, err := directory.LoadList(context.Background(), client, "", 0, 0)
	require.NoError(t, err)

	paths := map[string]string{}
	for _, r := range backend.Requests() {
		paths[r.Path] = r.Query
	}
	assert.Len(t, paths, 2)
	assert.Contains(t, paths, "/organizations")
	assert.Contains(t, paths, "/organizations/count")
	assert.Equal(t, "", paths["/organizations"])
}

func TestLoadList_NoResults(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.AddOrganization("Gates Foundation")

	list, err := directory.LoadList(context.Background(), api.New(backend.URL()), "Red Cross", 0, 50)
	require.NoError(t, err)
	assert.Empty(t, list.Organizations)
	assert.Equal(t, 0, list.Total)
}

func TestLoadList_CountFailureKeepsList(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.AddOrganization("Gates Foundation")
	backend.Fail(http.MethodGet, "/organizations/count", http.StatusInternalServerError, "internal error")

	list, err := directory.LoadList(context.Background(), api.New(backend.URL()), "", 0, 50)
	require.NoError(t, err)
	assert.Len(t, list.Organizations, 1)
	assert.Error(t, list.CountErr)
	assert.False(t, list.HasNext())
}

func TestLoadList_CountFailureKeepsPaging(t *testing.T) {
	backend := apitest.NewBackend(t)
	for _, name := range []string{"Red Cross Austin", "Red Cross Dallas", "Red Cross Houston", "Red Cross Plano", "Red Cross Waco"} {
		backend.AddOrganization(name)
	}
	backend.Fail(http.MethodGet, "/organizations/count", http.StatusInternalServerError, "internal error")

	list, err := directory.LoadList(context.Background(), api.New(backend.URL()), "", 0, 2)
	require.NoError(t, err)
	require.Error(t, list.CountErr)
	assert.Len(t, list.Organizations, 2)
	assert.True(t, list.HasNext())
}

func TestLoadList_ListFailure(t *testing.T) {
	backend := apitest.NewBackend(t)
	backend.Fail(http.MethodGet, "/organizations", http.StatusInternalServerError, "internal error")
	backend.Fail(http.MethodGet, "/organizations", http.StatusInternalServerError, "internal error")

	_, err := directory.LoadList(context.Background(), api.New(backend.URL()), "", 0, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestLoadDetail(t *testing.T) {
	backend := apitest.NewBackend(t)
	gates := backend.AddOrganization("Gates Foundation", apitest.WithWebsite("https://gatesfoundation.org"))
	redCross := backend.AddOrganization("Red Cross")
	unicef := backend.AddOrganization("UNICEF")
	backend.AddGrant(gates.ID, redCross.ID, "1000000.00", 2023)
	backend.AddGrant(gates.ID, unicef.ID, "", 0)
	backend.AddGrant(unicef.ID, gates.ID, "500", 2022)

	d, err := directory.LoadDetail(context.Background(), api.New(backend.URL()), gates.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gates Foundation", d.Organization.Name)

	require.Len(t, d.Given.Grants, 2)
	require.NoError(t, d.Given.Err)
	assert.Equal(t, "Grantee", d.Given.Counterpart())
	assert.Equal(t, redCross.ID, d.Given.Rows()[0].OtherOrgID)

	require.Len(t, d.Received.Grants, 1)
	assert.Equal(t, "Funder", d.Received.Counterpart())
	assert.Equal(t, unicef.ID, d.Received.Rows()[0].OtherOrgID)
}

func TestLoadDetail_MissingOrganization(t *testing.T) {
	backend := apitest.NewBackend(t)

	_, err := directory.LoadDetail(context.Background(), api.New(backend.URL()), "missing")
	assert.True(t, api.IsNotFound(err))
}

func TestLoadDetail_GrantFailureIsPerSection(t *testing.T) {
	backend := apitest.NewBackend(t)
	org := backend.AddOrganization("Gates Foundation")
	backend.Fail(http.MethodGet, "/grants", http.StatusServiceUnavailable, "down")

	d, err := directory.LoadDetail(context.Background(), api.New(backend.URL()), org.ID)
	require.NoError(t, err)
	assert.NotNil(t, d.Organization)

	failed := 0
	for _, s := range []directory.GrantSection{d.Given, d.Received} {
		if s.Err != nil {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}
