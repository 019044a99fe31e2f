package domain

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "punctuation and spaces", in: "Acme Foundation, Inc.", want: "acme-foundation-inc"},
		{name: "already a slug", in: "red-cross", want: "red-cross"},
		{name: "leading and trailing junk", in: "  --Hello World!!  ", want: "hello-world"},
		{name: "runs collapse to one hyphen", in: "A & B -- C", want: "a-b-c"},
		{name: "digits kept", in: "Fund 2024", want: "fund-2024"},
		{name: "non-ascii treated as separator", in: "Café Société", want: "caf-soci-t"},
		{name: "empty", in: "", want: ""},
		{name: "only symbols", in: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsSlug(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"acme", true},
		{"acme-foundation-inc", true},
		{"fund-2024", true},
		{"", false},
		{"-acme", false},
		{"acme-", false},
		{"acme--inc", false},
		{"Acme", false},
		{"acme inc", false},
	}

	for _, tt := range tests {
		if got := IsSlug(tt.in); got != tt.want {
			t.Errorf("IsSlug(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTenantInput_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       TenantInput
		wantSlug string
		wantErr  error
	}{
		{
			name:     "blank slug is derived from name",
			in:       TenantInput{Name: "Acme Foundation, Inc."},
			wantSlug: "acme-foundation-inc",
		},
		{
			name:     "explicit slug is kept",
			in:       TenantInput{Name: "Acme", Slug: " acme-hq "},
			wantSlug: "acme-hq",
		},
		{
			name:     "control characters are stripped",
			in:       TenantInput{Name: "Acme\x00\tHQ\n"},
			wantSlug: "acmehq",
		},
		{
			name:    "name too long",
			in:      TenantInput{Name: strings.Repeat("a", MaxTenantNameLength+1)},
			wantErr: ErrNameTooLong,
		},
		{
			name:    "length counts characters, not bytes",
			in:      TenantInput{Name: strings.Repeat("é", MaxTenantNameLength)},
			wantErr: ErrInvalidSlug,
		},
		{
			name:    "blank name",
			in:      TenantInput{Name: "   ", Slug: "acme"},
			wantErr: ErrEmptyName,
		},
		{
			name:    "invalid explicit slug",
			in:      TenantInput{Name: "Acme", Slug: "Acme HQ"},
			wantErr: ErrInvalidSlug,
		},
		{
			name:    "name without slug characters",
			in:      TenantInput{Name: "!!!"},
			wantErr: ErrInvalidSlug,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			if err != tt.wantErr {
				t.Fatalf("Normalize() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.Slug != tt.wantSlug {
				t.Errorf("Slug = %q, want %q", got.Slug, tt.wantSlug)
			}
		})
	}
}
