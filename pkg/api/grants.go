package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tendant/grantfunnel/pkg/domain"
)

// GrantQuery filters the grant list. Zero values are not sent.
type GrantQuery struct {
	FunderOrgID  string
	GranteeOrgID string
	Offset       int
	Limit        int
}

func (q GrantQuery) values() url.Values {
	v := url.Values{}
	setString(v, "funder_org_id", q.FunderOrgID)
	setString(v, "grantee_org_id", q.GranteeOrgID)
	setInt(v, "offset", q.Offset)
	setInt(v, "limit", q.Limit)
	return v
}

// ListGrants lists grants.
// GET /grants
func (c *Client) ListGrants(ctx context.Context, q GrantQuery) ([]domain.Grant, error) {
	var grants []domain.Grant
	if err := c.do(ctx, http.MethodGet, "/grants", q.values(), nil, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}
