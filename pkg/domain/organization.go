package domain

import (
	"strings"
	"time"
)

// Organization is a nonprofit or funding entity sourced from an external registry.
type Organization struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Country    *string   `json:"country"`
	Registry   *string   `json:"registry"`
	ExternalID *string   `json:"external_id"`
	Website    *string   `json:"website"`
	City       *string   `json:"city"`
	Region     *string   `json:"region"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Location joins the known city, region and country.
func (o Organization) Location() string {
	return joinPresent(o.City, o.Region, o.Country)
}

// ShortLocation joins the known city and region.
func (o Organization) ShortLocation() string {
	return joinPresent(o.City, o.Region)
}

func joinPresent(parts ...*string) string {
	var out []string
	for _, p := range parts {
		if p != nil && *p != "" {
			out = append(out, *p)
		}
	}
	return strings.Join(out, ", ")
}

// ShortID abbreviates an identifier for display when the full record is unavailable.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

// Deref returns the pointed-to string or an empty string.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
