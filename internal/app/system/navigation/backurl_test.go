package navigation

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestSafeBackURL(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"no return", "/thread/abc/like", "/"},
		{"local page", "/thread/abc/like?return=/community/org_1", "/community/org_1"},
		{"external url", "/thread/abc/like?return=https://evil.example.com/", "/"},
		{"action url", "/thread/abc/like?return=/thread/abc/delete", "/"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", tc.target, nil)
			if got := SafeBackURL(req, ThreadActionBackURL); got != tc.want {
				t.Errorf("SafeBackURL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSafeBackURL_FormValue(t *testing.T) {
	form := url.Values{"return": {"/profile/user_1"}}
	req := httptest.NewRequest("POST", "/thread/abc/like", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if got := SafeBackURL(req, ThreadActionBackURL); got != "/profile/user_1" {
		t.Errorf("SafeBackURL = %q, want /profile/user_1", got)
	}
}

func TestSafeBackURL_AllowedPrefix(t *testing.T) {
	opts := BackURLOptions{AllowedPrefix: "/community", Fallback: "/community"}
	req := httptest.NewRequest("GET", "/x?return=/profile", nil)

	if got := SafeBackURL(req, opts); got != "/community" {
		t.Errorf("SafeBackURL = %q, want fallback", got)
	}
}

func TestWithExcludedID(t *testing.T) {
	base := ThreadActionBackURL
	opts := base.WithExcludedID("abc")
	if opts.ExcludeID != "abc" {
		t.Errorf("ExcludeID = %q", opts.ExcludeID)
	}
	if base.ExcludeID != "" {
		t.Error("WithExcludedID mutated the receiver")
	}
}
