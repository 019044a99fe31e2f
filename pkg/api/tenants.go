package api

import (
	"context"
	"net/http"

	"github.com/tendant/grantfunnel/pkg/domain"
)

// ListTenants lists all tenants.
// GET /tenants
func (c *Client) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	if err := c.do(ctx, http.MethodGet, "/tenants", nil, nil, &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

// CreateTenant creates a tenant. The server has the final say on the slug.
// POST /tenants
func (c *Client) CreateTenant(ctx context.Context, in domain.TenantInput) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := c.do(ctx, http.MethodPost, "/tenants", nil, in, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}
