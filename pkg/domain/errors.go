package domain

import "errors"

// Validation errors
var (
	ErrInvalidStatus = errors.New("invalid funnel status")
	ErrEmptyName     = errors.New("name is required")
	ErrNameTooLong   = errors.New("name is too long")
	ErrInvalidSlug   = errors.New("slug must contain only lowercase letters, digits and single hyphens")
	ErrEmptyOrgID    = errors.New("org_id is required")
)
