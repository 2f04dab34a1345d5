package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/lostfound-backend/pkg/errors"
)

type loginBody struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/accounts/login/", strings.NewReader(`{"username":"amy"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	if err == nil {
		t.Fatal("expected validation error")
	}
	details, ok := pkgerrors.As(err).Details().(pkgerrors.FieldErrors)
	if !ok || details["password"] != "is required" {
		t.Fatalf("unexpected details %#v", pkgerrors.As(err).Details())
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"amy","password":"x","role":"admin"}`))
	var body loginBody
	if err := DecodeJSONBody(req, &body); err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown field, got %v", err)
	}
}

func TestBearerTokenPrefersHeaderThenCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	req.AddCookie(&http.Cookie{Name: "lf_session", Value: "cookie-token"})
	if got := BearerToken(req, "lf_session"); got != "abc" {
		t.Fatalf("expected header token, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "lf_session", Value: "cookie-token"})
	if got := BearerToken(req, "lf_session"); got != "cookie-token" {
		t.Fatalf("expected cookie token, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if got := BearerToken(req, "lf_session"); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}

func TestQueryStringTrims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?q=%20%20wallet%20", nil)
	if got := QueryString(req, "q"); got != "wallet" {
		t.Fatalf("expected trimmed query, got %q", got)
	}
	long := strings.Repeat("é", 300)
	if got := SanitizeString(long, 10); len([]rune(got)) != 10 {
		t.Fatalf("expected rune-safe truncation, got %d runes", len([]rune(got)))
	}
}

func TestSanitizeStringDropsControlCharacters(t *testing.T) {
	if got := SanitizeString(" Mozilla/5.0\r\nX-Injected: 1 ", 0); got != "Mozilla/5.0X-Injected: 1" {
		t.Fatalf("expected control characters removed, got %q", got)
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "req-123_abc.def:9", want: "req-123_abc.def:9"},
		{in: "  padded  ", want: "padded"},
		{in: "has space", want: ""},
		{in: "<script>", want: ""},
		{in: strings.Repeat("a", 80), want: strings.Repeat("a", 64)},
	}
	for _, tc := range cases {
		if got := SanitizeToken(tc.in, 64); got != tc.want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
