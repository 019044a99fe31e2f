// Package funnel holds the kanban view-model for a tenant's funnel.
package funnel

import (
	"github.com/tendant/grantfunnel/pkg/domain"
)

// MaxActions is how many move targets a card offers.
const MaxActions = 3

// Grouping is a funnel split into its status buckets.
type Grouping struct {
	// Buckets has one key per known status, each in fetch order.
	Buckets map[domain.FunnelStatus][]domain.FunnelEntry
	// Dropped holds entries whose status is not a known status.
	Dropped []domain.FunnelEntry
}

// Group buckets entries by status, keeping the original relative order.
func Group(entries []domain.FunnelEntry) Grouping {
	g := Grouping{
		Buckets: make(map[domain.FunnelStatus][]domain.FunnelEntry, len(domain.FunnelStatuses)),
	}
	for _, s := range domain.FunnelStatuses {
		g.Buckets[s] = []domain.FunnelEntry{}
	}
	for _, e := range entries {
		if _, ok := g.Buckets[e.Status]; !ok {
			g.Dropped = append(g.Dropped, e)
			continue
		}
		g.Buckets[e.Status] = append(g.Buckets[e.Status], e)
	}
	return g
}

// NextStatuses returns the move targets for an entry in status s: the
// status list without s, cut to the first MaxActions. Any status can move
// to any other; this only picks which buttons to show.
func NextStatuses(s domain.FunnelStatus) []domain.FunnelStatus {
	next := make([]domain.FunnelStatus, 0, MaxActions)
	for _, candidate := range domain.FunnelStatuses {
		if candidate == s {
			continue
		}
		next = append(next, candidate)
		if len(next) == MaxActions {
			break
		}
	}
	return next
}
