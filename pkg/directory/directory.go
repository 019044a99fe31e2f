// Package directory loads the organization list and detail views.
package directory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tendant/grantfunnel/pkg/api"
	"github.com/tendant/grantfunnel/pkg/domain"
)

// API is the subset of the backend the organization views need.
type API interface {
	ListOrganizations(ctx context.Context, q api.OrganizationQuery) ([]domain.Organization, error)
	CountOrganizations(ctx context.Context, q string) (int, error)
	GetOrganization(ctx context.Context, id string) (*domain.Organization, error)
	ListGrants(ctx context.Context, q api.GrantQuery) ([]domain.Grant, error)
}

var _ API = (*api.Client)(nil)

// List is one page of the organization list.
type List struct {
	Query         string
	Offset        int
	Limit         int
	Organizations []domain.Organization
	// Total comes from a separate count request and may disagree with
	// Organizations if the data changed in between.
	Total int
	// CountErr is set when only the count request failed.
	CountErr error
}

// HasPrev reports whether there is a previous page.
func (l *List) HasPrev() bool {
	return l.Offset > 0
}

// HasNext reports whether there may be a next page. Without a count, a
// full page is taken to mean more may follow.
func (l *List) HasNext() bool {
	if l.Limit <= 0 || len(l.Organizations) != l.Limit {
		return false
	}
	if l.CountErr != nil {
		return true
	}
	return l.Offset+l.Limit < l.Total
}

// LoadList fetches one page of organizations and the matching count as two
// independent requests running in parallel. The page fails only when the
// list request fails.
func LoadList(ctx context.Context, client API, query string, offset, limit int) (*List, error) {
	if offset < 0 {
		offset = 0
	}
	list := &List{Query: query, Offset: offset, Limit: limit}

	var g errgroup.Group
	g.Go(func() error {
		orgs, err := client.ListOrganizations(ctx, api.OrganizationQuery{Q: query, Offset: offset, Limit: limit})
		if err != nil {
			return fmt.Errorf("list organizations: %w", err)
		}
		list.Organizations = orgs
		return nil
	})
	g.Go(func() error {
		total, err := client.CountOrganizations(ctx, query)
		if err != nil {
			list.CountErr = err
			return nil
		}
		list.Total = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return list, nil
}

// GrantSection is one side of an organization's grants.
type GrantSection struct {
	Grants []domain.Grant
	// Err is set when this side failed to load; the rest of the page still renders.
	Err error
	// Funder is true for grants the organization gave.
	Funder bool
}

// GrantRow is a grant as seen from one organization.
type GrantRow struct {
	Grant      domain.Grant
	OtherOrgID string
}

// Rows returns the grants paired with the organization on the other side.
func (s GrantSection) Rows() []GrantRow {
	rows := make([]GrantRow, 0, len(s.Grants))
	for _, g := range s.Grants {
		other := g.FunderOrgID
		if s.Funder {
			other = g.GranteeOrgID
		}
		rows = append(rows, GrantRow{Grant: g, OtherOrgID: other})
	}
	return rows
}

// Counterpart names the column holding the other organization.
func (s GrantSection) Counterpart() string {
	if s.Funder {
		return "Grantee"
	}
	return "Funder"
}

// Empty is the notice shown when the section has no grants.
func (s GrantSection) Empty() string {
	if s.Funder {
		return "No grants given recorded."
	}
	return "No grants received recorded."
}

// Detail is an organization with the grants it gave and received.
type Detail struct {
	Organization *domain.Organization
	Given        GrantSection
	Received     GrantSection
}

// LoadDetail fetches the organization and both grant lists in parallel.
// Only the organization fetch decides whether the page loads; a failed
// grant list is reported in its section.
func LoadDetail(ctx context.Context, client API, orgID string) (*Detail, error) {
	d := &Detail{
		Given:    GrantSection{Funder: true},
		Received: GrantSection{Funder: false},
	}

	var g errgroup.Group
	g.Go(func() error {
		org, err := client.GetOrganization(ctx, orgID)
		if err != nil {
			return fmt.Errorf("get organization %s: %w", orgID, err)
		}
		d.Organization = org
		return nil
	})
	g.Go(func() error {
		d.Given.Grants, d.Given.Err = client.ListGrants(ctx, api.GrantQuery{FunderOrgID: orgID})
		return nil
	})
	g.Go(func() error {
		d.Received.Grants, d.Received.Err = client.ListGrants(ctx, api.GrantQuery{GranteeOrgID: orgID})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
