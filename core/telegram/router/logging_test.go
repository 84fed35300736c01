package router

import (
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type codedError struct{ code string }

func (e *codedError) Error() string { return "coded" }
func (e *codedError) Code() string  { return e.code }

func TestDeriveErrorCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"coder", &codedError{code: "storage fault"}, "STORAGE_FAULT"},
		{"coder empty falls back to type", &codedError{}, "CODEDERROR"},
		{"plain error", errors.New("boom"), "ERRORSTRING"},
	}
	for _, tc := range cases {
		if got := deriveErrorCode(tc.err); got != tc.want {
			t.Errorf("%s: deriveErrorCode = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestNormalizeHandlerName(t *testing.T) {
	cases := map[string]string{
		"/start":     "start",
		"/My Stats":  "my_stats",
		"  /stats  ": "stats",
		"":           "unknown",
	}
	for in, want := range cases {
		if got := normalizeHandlerName(in); got != want {
			t.Errorf("normalizeHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCallbackKeyPrefersUnique(t *testing.T) {
	cb := &tele.Callback{Unique: "retry", Data: "\\fstats|30"}
	if got := callbackKey(cb); got != "retry" {
		t.Fatalf("callbackKey = %q, want retry", got)
	}
	cb = &tele.Callback{Data: "\\fstats|30"}
	if got := callbackKey(cb); got != "stats" {
		t.Fatalf("callbackKey = %q, want stats", got)
	}
}
