package funnel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tendant/grantfunnel/pkg/api"
	"github.com/tendant/grantfunnel/pkg/domain"
)

// orgFetchLimit bounds concurrent organization lookups during Refresh.
const orgFetchLimit = 8

// API is the subset of the backend the board needs. *api.Client satisfies it.
type API interface {
	ListFunnelEntries(ctx context.Context, tenantID string, status domain.FunnelStatus) ([]domain.FunnelEntry, error)
	CreateFunnelEntry(ctx context.Context, tenantID string, in domain.FunnelEntryInput) (*domain.FunnelEntry, error)
	BulkCreateFunnelEntries(ctx context.Context, tenantID string, in []domain.FunnelEntryInput) ([]domain.FunnelEntry, error)
	UpdateFunnelEntry(ctx context.Context, tenantID, entryID string, status domain.FunnelStatus) (*domain.FunnelEntry, error)
	DeleteFunnelEntry(ctx context.Context, tenantID, entryID string) error
	GetOrganization(ctx context.Context, id string) (*domain.Organization, error)
	ListOrganizations(ctx context.Context, q api.OrganizationQuery) ([]domain.Organization, error)
}

var _ API = (*api.Client)(nil)

// Card is one entry on the board.
type Card struct {
	Entry domain.FunnelEntry
	// Org is nil when the organization lookup failed.
	Org     *domain.Organization
	Actions []domain.FunnelStatus
}

// OrgName returns the organization's name, or a shortened ID when unknown.
func (c Card) OrgName() string {
	if c.Org != nil {
		return c.Org.Name
	}
	return domain.ShortID(c.Entry.OrgID)
}

// Column is one status bucket of the board.
type Column struct {
	Status domain.FunnelStatus
	Label  string
	Cards  []Card
}

// Count returns the number of cards in the column.
func (c Column) Count() int {
	return len(c.Cards)
}

// Board is the view state of one tenant's funnel page. It is owned by a
// single page and never shared between pages.
type Board struct {
	api      API
	tenantID string
	filter   domain.FunnelStatus
	logger   *slog.Logger

	mu       sync.RWMutex
	entries  []domain.FunnelEntry
	grouping Grouping
	orgs     map[string]*domain.Organization

	search Latest[searchState]
}

// searchState pairs a query with the results it produced so the two are
// always stored together.
type searchState struct {
	Query   string
	Results []domain.Organization
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithStatusFilter restricts the board to entries in one status.
func WithStatusFilter(s domain.FunnelStatus) BoardOption {
	return func(b *Board) {
		b.filter = s
	}
}

// WithLogger sets the logger used to report dropped entries.
func WithLogger(logger *slog.Logger) BoardOption {
	return func(b *Board) {
		b.logger = logger
	}
}

// NewBoard creates an empty board for tenantID. Call Refresh to load it.
func NewBoard(client API, tenantID string, opts ...BoardOption) *Board {
	b := &Board{
		api:      client,
		tenantID: tenantID,
		logger:   slog.Default(),
		grouping: Group(nil),
		orgs:     map[string]*domain.Organization{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// TenantID returns the tenant the board belongs to.
func (b *Board) TenantID() string {
	return b.tenantID
}

// Refresh re-reads the entry list and the organization of every entry.
func (b *Board) Refresh(ctx context.Context) error {
	entries, err := b.api.ListFunnelEntries(ctx, b.tenantID, b.filter)
	if err != nil {
		return fmt.Errorf("list funnel entries: %w", err)
	}

	grouping := Group(entries)
	for _, e := range grouping.Dropped {
		b.logger.Warn("funnel entry has unknown status",
			"tenant_id", b.tenantID,
			"entry_id", e.ID,
			"org_id", e.OrgID,
			"status", string(e.Status),
		)
	}

	orgs := b.fetchOrganizations(ctx, entries)

	b.mu.Lock()
	b.entries = entries
	b.grouping = grouping
	b.orgs = orgs
	b.mu.Unlock()
	return nil
}

// fetchOrganizations looks up each distinct organization in parallel.
// A failed lookup leaves that organization out of the map.
func (b *Board) fetchOrganizations(ctx context.Context, entries []domain.FunnelEntry) map[string]*domain.Organization {
	var (
		mu   sync.Mutex
		orgs = make(map[string]*domain.Organization)
		seen = make(map[string]bool)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(orgFetchLimit)
	for _, e := range entries {
		if seen[e.OrgID] {
			continue
		}
		seen[e.OrgID] = true
		orgID := e.OrgID
		g.Go(func() error {
			org, err := b.api.GetOrganization(gctx, orgID)
			if err != nil {
				b.logger.Debug("organization lookup failed", "org_id", orgID, "error", err)
				return nil
			}
			mu.Lock()
			orgs[orgID] = org
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return orgs
}

// Entries returns the entries from the last Refresh, in fetch order.
func (b *Board) Entries() []domain.FunnelEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.FunnelEntry(nil), b.entries...)
}

// Grouping returns the status buckets from the last Refresh.
func (b *Board) Grouping() Grouping {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.grouping
}

// Columns returns the six status columns in funnel order.
func (b *Board) Columns() []Column {
	b.mu.RLock()
	defer b.mu.RUnlock()

	columns := make([]Column, 0, len(domain.FunnelStatuses))
	for _, s := range domain.FunnelStatuses {
		bucket := b.grouping.Buckets[s]
		col := Column{Status: s, Label: s.Label(), Cards: make([]Card, 0, len(bucket))}
		for _, e := range bucket {
			col.Cards = append(col.Cards, Card{
				Entry:   e,
				Org:     b.orgs[e.OrgID],
				Actions: NextStatuses(e.Status),
			})
		}
		columns = append(columns, col)
	}
	return columns
}

// Move changes an entry's status and then reloads the whole board.
func (b *Board) Move(ctx context.Context, entryID string, status domain.FunnelStatus) error {
	if !status.Valid() {
		return fmt.Errorf("move entry %s: %w: %q", entryID, domain.ErrInvalidStatus, status)
	}
	if _, err := b.api.UpdateFunnelEntry(ctx, b.tenantID, entryID, status); err != nil {
		return fmt.Errorf("move entry %s: %w", entryID, err)
	}
	return b.Refresh(ctx)
}

// Remove deletes an entry and then reloads the whole board.
func (b *Board) Remove(ctx context.Context, entryID string) error {
	if err := b.api.DeleteFunnelEntry(ctx, b.tenantID, entryID); err != nil {
		return fmt.Errorf("remove entry %s: %w", entryID, err)
	}
	return b.Refresh(ctx)
}

// Add puts an organization into the funnel with the server's default
// status, clears the search and reloads the board.
func (b *Board) Add(ctx context.Context, orgID string) error {
	in := domain.FunnelEntryInput{OrgID: strings.TrimSpace(orgID)}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("add organization: %w", err)
	}
	if _, err := b.api.CreateFunnelEntry(ctx, b.tenantID, in); err != nil {
		return fmt.Errorf("add organization %s: %w", in.OrgID, err)
	}
	b.ClearSearch()
	return b.Refresh(ctx)
}

// AddMany adds several organizations through the bulk endpoint and reloads
// the board. It returns the entries the backend created, which may be fewer
// than requested. The created entries are returned even if the reload fails.
func (b *Board) AddMany(ctx context.Context, in []domain.FunnelEntryInput) ([]domain.FunnelEntry, error) {
	for i, item := range in {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("bulk add item %d: %w", i, err)
		}
	}
	created, err := b.api.BulkCreateFunnelEntries(ctx, b.tenantID, in)
	if err != nil {
		return nil, fmt.Errorf("bulk add: %w", err)
	}
	b.ClearSearch()
	return created, b.Refresh(ctx)
}

// Search looks up organizations to add. A blank query sends no request.
// If a newer search was started while this one was in flight, its
// results are discarded and the newer search's results are returned.
func (b *Board) Search(ctx context.Context, q string) ([]domain.Organization, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return b.SearchResults(), nil
	}

	ticket := b.search.Begin()

	results, err := b.api.ListOrganizations(ctx, api.OrganizationQuery{Q: q})
	if err != nil {
		if !b.search.Current(ticket) {
			return b.SearchResults(), nil
		}
		return nil, fmt.Errorf("search organizations: %w", err)
	}
	if results == nil {
		results = []domain.Organization{}
	}
	if !b.search.Apply(ticket, searchState{Query: q, Results: results}) {
		b.logger.Debug("discarding stale search results", "query", q)
		return b.SearchResults(), nil
	}
	return results, nil
}

// SearchResults returns the results of the newest completed search.
func (b *Board) SearchResults() []domain.Organization {
	return b.search.Value().Results
}

// SearchQuery returns the query of the newest completed search.
func (b *Board) SearchQuery() string {
	return b.search.Value().Query
}

// ClearSearch drops search state and invalidates in-flight searches.
func (b *Board) ClearSearch() {
	b.search.Reset()
}
