package apitest

import (
	"bytes"
	"io"
	"net/http"

	"github.com/tendant/grantfunnel/pkg/domain"
)

// readAll reads the request body and puts a fresh copy back for the next handler.
func readAll(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, err
}

// InCity sets the organization's city and region.
func InCity(city, region string) func(*domain.Organization) {
	return func(o *domain.Organization) {
		o.City = &city
		o.Region = &region
	}
}

// WithRegistry sets the organization's registry reference.
func WithRegistry(registry, externalID string) func(*domain.Organization) {
	return func(o *domain.Organization) {
		o.Registry = &registry
		o.ExternalID = &externalID
	}
}

// WithWebsite sets the organization's website.
func WithWebsite(url string) func(*domain.Organization) {
	return func(o *domain.Organization) {
		o.Website = &url
	}
}
