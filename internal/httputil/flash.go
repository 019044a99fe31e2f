package httputil

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"unicode/utf8"
)

const flashCookieName = "flash"

// MaxFlashMessage caps a flash message, in characters, so the encoded
// cookie stays under the 4096-byte limit browsers enforce. Backend error
// bodies can be whole HTML pages.
const MaxFlashMessage = 300

// FlashKind distinguishes success notices from failures.
type FlashKind string

const (
	FlashInfo  FlashKind = "info"
	FlashError FlashKind = "error"
)

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// IsError returns true if the flash reports a failure.
func (f *Flash) IsError() bool {
	return f != nil && f.Kind == FlashError
}

// CookieConfig holds cookie configuration.
type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool // Set to true in production (HTTPS)
	SameSite http.SameSite
}

// DefaultCookieConfig returns default cookie configuration.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Path:     "/",
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
	}
}

// Flasher stores flashes in a short-lived cookie.
type Flasher struct {
	cfg CookieConfig
}

// NewFlasher creates a Flasher.
func NewFlasher(cfg CookieConfig) *Flasher {
	return &Flasher{cfg: cfg}
}

// Set stores a flash for the next request. Long messages are truncated.
func (f *Flasher) Set(w http.ResponseWriter, kind FlashKind, message string) {
	raw, err := json.Marshal(Flash{Kind: kind, Message: truncate(message, MaxFlashMessage)})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     f.cfg.Path,
		Domain:   f.cfg.Domain,
		MaxAge:   60,
		HttpOnly: true,
		Secure:   f.cfg.Secure,
		SameSite: f.cfg.SameSite,
	})
}

// Info stores a success notice.
func (f *Flasher) Info(w http.ResponseWriter, message string) {
	f.Set(w, FlashInfo, message)
}

// Error stores a failure notice.
func (f *Flasher) Error(w http.ResponseWriter, message string) {
	f.Set(w, FlashError, message)
}

// Pop reads the pending flash, if any, and clears the cookie.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     f.cfg.Path,
		Domain:   f.cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.cfg.Secure,
		SameSite: f.cfg.SameSite,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flash Flash
	if err := json.Unmarshal(raw, &flash); err != nil || flash.Message == "" {
		return nil
	}
	return &flash
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
