package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tendant/grantfunnel/pkg/domain"
)

// OrganizationQuery filters the organization list. Zero values are not sent.
type OrganizationQuery struct {
	Q      string
	Offset int
	Limit  int
}

func (q OrganizationQuery) values() url.Values {
	v := url.Values{}
	setString(v, "q", q.Q)
	setInt(v, "offset", q.Offset)
	setInt(v, "limit", q.Limit)
	return v
}

// ListOrganizations searches organizations.
// GET /organizations
func (c *Client) ListOrganizations(ctx context.Context, q OrganizationQuery) ([]domain.Organization, error) {
	var orgs []domain.Organization
	if err := c.do(ctx, http.MethodGet, "/organizations", q.values(), nil, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// GetOrganization fetches one organization.
// GET /organizations/{id}
func (c *Client) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	var org domain.Organization
	if err := c.do(ctx, http.MethodGet, "/organizations/"+segment(id), nil, nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

type countResponse struct {
	Count int `json:"count"`
}

// CountOrganizations counts organizations matching q.
// GET /organizations/count
func (c *Client) CountOrganizations(ctx context.Context, q string) (int, error) {
	v := url.Values{}
	setString(v, "q", q)

	var resp countResponse
	if err := c.do(ctx, http.MethodGet, "/organizations/count", v, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
