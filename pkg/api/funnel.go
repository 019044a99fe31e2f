package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tendant/grantfunnel/pkg/domain"
)

func funnelPath(tenantID string) string {
	return "/tenants/" + segment(tenantID) + "/funnel"
}

// ListFunnelEntries lists a tenant's funnel entries. An empty status lists all.
// GET /tenants/{id}/funnel
func (c *Client) ListFunnelEntries(ctx context.Context, tenantID string, status domain.FunnelStatus) ([]domain.FunnelEntry, error) {
	v := url.Values{}
	setString(v, "status", string(status))

	var entries []domain.FunnelEntry
	if err := c.do(ctx, http.MethodGet, funnelPath(tenantID), v, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateFunnelEntry adds one organization to a tenant's funnel.
// POST /tenants/{id}/funnel
func (c *Client) CreateFunnelEntry(ctx context.Context, tenantID string, in domain.FunnelEntryInput) (*domain.FunnelEntry, error) {
	var entry domain.FunnelEntry
	if err := c.do(ctx, http.MethodPost, funnelPath(tenantID), nil, in, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// BulkCreateFunnelEntries adds several organizations in one call.
// POST /tenants/{id}/funnel/bulk
func (c *Client) BulkCreateFunnelEntries(ctx context.Context, tenantID string, in []domain.FunnelEntryInput) ([]domain.FunnelEntry, error) {
	if in == nil {
		in = []domain.FunnelEntryInput{}
	}
	var entries []domain.FunnelEntry
	if err := c.do(ctx, http.MethodPost, funnelPath(tenantID)+"/bulk", nil, in, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

type statusUpdate struct {
	Status domain.FunnelStatus `json:"status"`
}

// UpdateFunnelEntry changes an entry's status.
// PATCH /tenants/{id}/funnel/{entryId}
func (c *Client) UpdateFunnelEntry(ctx context.Context, tenantID, entryID string, status domain.FunnelStatus) (*domain.FunnelEntry, error) {
	var entry domain.FunnelEntry
	path := funnelPath(tenantID) + "/" + segment(entryID)
	if err := c.do(ctx, http.MethodPatch, path, nil, statusUpdate{Status: status}, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteFunnelEntry removes an entry.
// DELETE /tenants/{id}/funnel/{entryId}
func (c *Client) DeleteFunnelEntry(ctx context.Context, tenantID, entryID string) error {
	path := funnelPath(tenantID) + "/" + segment(entryID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
