package domain

import (
	"fmt"
	"time"
)

// FunnelStatus is the stage of an organization within a tenant's funnel.
type FunnelStatus string

const (
	FunnelStatusProspect              FunnelStatus = "prospect"
	FunnelStatusShortlisted           FunnelStatus = "shortlisted"
	FunnelStatusResearching           FunnelStatus = "researching"
	FunnelStatusApplicationInProgress FunnelStatus = "application_in_progress"
	FunnelStatusFunded                FunnelStatus = "funded"
	FunnelStatusPassed                FunnelStatus = "passed"
)

// FunnelStatuses lists every status in funnel order.
var FunnelStatuses = []FunnelStatus{
	FunnelStatusProspect,
	FunnelStatusShortlisted,
	FunnelStatusResearching,
	FunnelStatusApplicationInProgress,
	FunnelStatusFunded,
	FunnelStatusPassed,
}

var funnelStatusLabels = map[FunnelStatus]string{
	FunnelStatusProspect:              "Prospect",
	FunnelStatusShortlisted:           "Shortlisted",
	FunnelStatusResearching:           "Researching",
	FunnelStatusApplicationInProgress: "Application in Progress",
	FunnelStatusFunded:                "Funded",
	FunnelStatusPassed:                "Passed",
}

// Valid returns true if s is one of the known statuses.
func (s FunnelStatus) Valid() bool {
	_, ok := funnelStatusLabels[s]
	return ok
}

// Label returns the human-readable name of the status.
func (s FunnelStatus) Label() string {
	if label, ok := funnelStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseFunnelStatus validates a raw status value.
func ParseFunnelStatus(raw string) (FunnelStatus, error) {
	s := FunnelStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// FunnelEntry places one organization in one tenant's funnel.
type FunnelEntry struct {
	ID        string       `json:"id"`
	TenantID  string       `json:"tenant_id"`
	OrgID     string       `json:"org_id"`
	Status    FunnelStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// FunnelEntryInput is the payload for adding an organization to a funnel.
// An empty Status lets the server apply its default.
type FunnelEntryInput struct {
	OrgID  string       `json:"org_id" yaml:"org_id"`
	Status FunnelStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// Validate checks the input before it is sent.
func (in FunnelEntryInput) Validate() error {
	if in.OrgID == "" {
		return ErrEmptyOrgID
	}
	if in.Status != "" && !in.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}
	return nil
}
