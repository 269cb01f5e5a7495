package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func flashRoundTrip(t *testing.T, writer, reader *FlashStore, mutate func(*http.Cookie)) (string, *httptest.ResponseRecorder) {
	t.Helper()
	set := httptest.NewRecorder()
	if err := writer.Set(set, "Successfully added expense."); err != nil {
		t.Fatalf("Set: %v", err)
	}
	cookies := set.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	if mutate != nil {
		mutate(cookies[0])
	}

	req := httptest.NewRequest(http.MethodGet, "/budget", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	return reader.Pop(rec, req), rec
}

func TestFlash_RoundTripClearsCookie(t *testing.T) {
	f, err := NewFlashStore("secret")
	if err != nil {
		t.Fatal(err)
	}

	msg, rec := flashRoundTrip(t, f, f, nil)
	if msg != "Successfully added expense." {
		t.Fatalf("Pop() = %q", msg)
	}

	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected the flash cookie to be cleared, got %+v", cleared)
	}
}

func TestFlash_RejectsTampering(t *testing.T) {
	f, _ := NewFlashStore("secret")

	msg, _ := flashRoundTrip(t, f, f, func(c *http.Cookie) { c.Value += "x" })
	if msg != "" {
		t.Errorf("tampered cookie read as %q", msg)
	}
}

func TestFlash_RejectsOtherSecret(t *testing.T) {
	a, _ := NewFlashStore("secret-a")
	b, _ := NewFlashStore("secret-b")

	if msg, _ := flashRoundTrip(t, a, b, nil); msg != "" {
		t.Errorf("cookie signed with another secret read as %q", msg)
	}
}

func TestFlash_Expires(t *testing.T) {
	writer, _ := NewFlashStore("secret")
	reader, _ := NewFlashStore("secret")
	reader.now = func() time.Time { return time.Now().Add(flashTTL + time.Minute) }

	if msg, _ := flashRoundTrip(t, writer, reader, nil); msg != "" {
		t.Errorf("expired cookie read as %q", msg)
	}
}

func TestFlash_NoCookie(t *testing.T) {
	f, _ := NewFlashStore("secret")
	rec := httptest.NewRecorder()
	if msg := f.Pop(rec, httptest.NewRequest(http.MethodGet, "/", nil)); msg != "" {
		t.Errorf("Pop() without cookie = %q", msg)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("Pop without a cookie should not set one")
	}
}

func TestNewFlashStore_EmptySecret(t *testing.T) {
	if _, err := NewFlashStore(""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
