package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MaxTenantNameLength is the longest accepted tenant name, in characters.
const MaxTenantNameLength = 200

// Tenant represents an isolated workspace with its own funnel.
type Tenant struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	LinkedOrgID *string   `json:"linked_org_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TenantInput is the payload for creating a tenant.
type TenantInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Normalize trims the input, strips control characters from the name and
// fills a blank slug from the name.
func (in TenantInput) Normalize() (TenantInput, error) {
	out := TenantInput{
		Name: strings.TrimSpace(removeControlChars(in.Name)),
		Slug: strings.TrimSpace(in.Slug),
	}
	if out.Name == "" {
		return out, ErrEmptyName
	}
	if utf8.RuneCountInString(out.Name) > MaxTenantNameLength {
		return out, ErrNameTooLong
	}
	if out.Slug == "" {
		out.Slug = Slugify(out.Name)
	}
	if !IsSlug(out.Slug) {
		return out, ErrInvalidSlug
	}
	return out, nil
}

func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
