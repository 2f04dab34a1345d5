package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/lostfound-backend/pkg/auth"
	"github.com/angelmondragon/lostfound-backend/pkg/auth/session"
	"github.com/angelmondragon/lostfound-backend/pkg/config"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

func testOptions(verifier session.AccessSessionChecker) AuthOptions {
	return AuthOptions{
		JWT:        testJWT,
		Sessions:   verifier,
		CookieName: "lf_session",
		LoginURL:   "/accounts/login/",
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireLoginRedirectsAnonymous(t *testing.T) {
	handler := RequireLogin(testOptions(stubSessionVerifier{ok: true}))(okHandler())

	for path, want := range map[string]string{
		"/add/":       "/accounts/login/?next=/add/",
		"/dashboard/": "/accounts/login/?next=/dashboard/",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusFound {
			t.Fatalf("%s: expected 302 got %d", path, resp.Code)
		}
		if got := resp.Header().Get("Location"); got != want {
			t.Fatalf("%s: expected location %q got %q", path, want, got)
		}
	}
}

func TestRequireLoginRedirectsInvalidToken(t *testing.T) {
	handler := RequireLogin(testOptions(stubSessionVerifier{ok: true}))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/profile/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302 got %d", resp.Code)
	}
}

func TestRequireLoginRedirectsRevokedSession(t *testing.T) {
	token, _ := mintTestToken(t, false)
	handler := RequireLogin(testOptions(stubSessionVerifier{ok: false}))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/profile/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302 got %d", resp.Code)
	}
}

func TestRequireLoginSessionStoreFailure(t *testing.T) {
	token, _ := mintTestToken(t, false)
	handler := RequireLogin(testOptions(stubSessionVerifier{err: errors.New("redis down")}))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/profile/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestRequireLoginAcceptsCookie(t *testing.T) {
	token, userID := mintTestToken(t, true)

	var captured struct {
		user     string
		staff    bool
		accessID string
	}
	handler := RequireLogin(testOptions(stubSessionVerifier{ok: true}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.user = UserIDFromContext(r.Context())
		captured.staff = IsStaffFromContext(r.Context())
		captured.accessID = AccessIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/profile/", nil)
	req.AddCookie(&http.Cookie{Name: "lf_session", Value: token})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.user != userID.String() {
		t.Fatalf("expected user %s got %s", userID, captured.user)
	}
	if !captured.staff {
		t.Fatal("expected staff flag in context")
	}
	if captured.accessID == "" {
		t.Fatal("expected access id in context")
	}
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	var user string
	handler := OptionalAuth(testOptions(stubSessionVerifier{ok: true}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if user != "" {
		t.Fatalf("expected anonymous context got %s", user)
	}
}

func TestRequireStaff(t *testing.T) {
	handler := RequireStaff(nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), uuid.New(), false, "a"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	req = req.WithContext(WithIdentity(req.Context(), uuid.New(), true, "a"))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestLoginRedirectURL(t *testing.T) {
	cases := []struct {
		login, path, want string
	}{
		{"/accounts/login/", "/add/", "/accounts/login/?next=/add/"},
		{"/accounts/login/", "/?q=red bag", "/accounts/login/?next=/%3Fq%3Dred+bag"},
		{"/login?src=web", "/profile/", "/login?src=web&next=/profile/"},
		{"", "", "/accounts/login/"},
	}
	for _, tc := range cases {
		if got := LoginRedirectURL(tc.login, tc.path); got != tc.want {
			t.Fatalf("LoginRedirectURL(%q, %q) = %q, want %q", tc.login, tc.path, got, tc.want)
		}
	}
}

func mintTestToken(t *testing.T, staff bool) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{
		UserID:   userID,
		Username: "tester",
		IsStaff:  staff,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, userID
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}
