package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFlasher_RoundTrip(t *testing.T) {
	f := NewFlasher(DefaultCookieConfig())

	w := httptest.NewRecorder()
	f.Error(w, "500: internal error")

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	if !cookies[0].HttpOnly {
		t.Error("flash cookie should be HttpOnly")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	w2 := httptest.NewRecorder()

	flash := f.Pop(w2, req)
	if flash == nil {
		t.Fatal("Pop returned nil")
	}
	if !flash.IsError() {
		t.Errorf("Kind = %q, want %q", flash.Kind, FlashError)
	}
	if flash.Message != "500: internal error" {
		t.Errorf("Message = %q", flash.Message)
	}

	cleared := w2.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("Pop should expire the cookie, got %+v", cleared)
	}
}

func TestFlasher_LongMessageFitsInCookie(t *testing.T) {
	f := NewFlasher(DefaultCookieConfig())
	message := "Could not move entry: 502: " + strings.Repeat("<p>bad gateway</p>", 200)

	w := httptest.NewRecorder()
	f.Error(w, message)

	header := w.Header().Get("Set-Cookie")
	if len(header) > 4096 {
		t.Fatalf("Set-Cookie header is %d bytes, browsers drop cookies over 4096", len(header))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(w.Result().Cookies()[0])
	flash := f.Pop(httptest.NewRecorder(), req)
	if flash == nil {
		t.Fatal("Pop returned nil")
	}
	if !strings.HasPrefix(flash.Message, "Could not move entry: 502: ") {
		t.Errorf("Message lost its prefix: %q", flash.Message)
	}
	if n := utf8.RuneCountInString(flash.Message); n != MaxFlashMessage {
		t.Errorf("Message length = %d, want %d", n, MaxFlashMessage)
	}
	if !strings.HasSuffix(flash.Message, "…") {
		t.Errorf("truncated message should end with an ellipsis: %q", flash.Message)
	}
}

func TestFlasher_PopWithoutCookie(t *testing.T) {
	f := NewFlasher(DefaultCookieConfig())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	if flash := f.Pop(w, req); flash != nil {
		t.Errorf("Pop = %+v, want nil", flash)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("Pop without a flash should not touch cookies")
	}
}

func TestFlasher_PopIgnoresGarbage(t *testing.T) {
	f := NewFlasher(DefaultCookieConfig())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "flash", Value: "%%%not-base64"})
	w := httptest.NewRecorder()

	if flash := f.Pop(w, req); flash != nil {
		t.Errorf("Pop = %+v, want nil", flash)
	}
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusBadRequest, "name is required")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if body := w.Body.String(); body != "{\"error\":\"name is required\"}\n" {
		t.Errorf("body = %q", body)
	}
}
