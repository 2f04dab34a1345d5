package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/lostfound-backend/api/responses"
	"github.com/angelmondragon/lostfound-backend/api/validators"
	pkgAuth "github.com/angelmondragon/lostfound-backend/pkg/auth"
	"github.com/angelmondragon/lostfound-backend/pkg/auth/session"
	"github.com/angelmondragon/lostfound-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/lostfound-backend/pkg/errors"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
)

var (
	errNoCredentials  = errors.New("missing credentials")
	errNoSession      = errors.New("session unavailable")
	errSessionBackend = errors.New("session store unavailable")
)

// AuthOptions configures token resolution and the login redirect.
type AuthOptions struct {
	JWT        config.JWTConfig
	Sessions   session.AccessSessionChecker
	CookieName string
	LoginURL   string
	Logger     *logger.Logger
}

// OptionalAuth seeds the request context with the caller's identity when a
// valid session token is present. Anonymous requests pass through untouched.
func OptionalAuth(opts AuthOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, opts)
			if err != nil {
				if errors.Is(err, errSessionBackend) && opts.Logger != nil {
					opts.Logger.Warn(r.Context(), "auth.session_check_failed")
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin redirects anonymous callers to the login page with the
// requested path in next.
func RequireLogin(opts AuthOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) != "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx, err := authenticate(r, opts)
			if err != nil {
				if errors.Is(err, errSessionBackend) {
					responses.WriteError(r.Context(), opts.Logger, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				http.Redirect(w, r, LoginRedirectURL(opts.LoginURL, r.URL.RequestURI()), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff rejects authenticated callers without the staff flag.
func RequireStaff(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsStaffFromContext(r.Context()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "staff access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRedirectURL builds "{loginURL}?next={path}" keeping slashes readable.
func LoginRedirectURL(loginURL, path string) string {
	if loginURL == "" {
		loginURL = "/accounts/login/"
	}
	if path == "" {
		return loginURL
	}
	next := strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return loginURL + sep + "next=" + next
}

func authenticate(r *http.Request, opts AuthOptions) (context.Context, error) {
	token := validators.BearerToken(r, opts.CookieName)
	if token == "" {
		return nil, errNoCredentials
	}
	claims, err := pkgAuth.ParseAccessToken(opts.JWT, token)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errNoSession
	}
	if opts.Sessions != nil {
		ok, err := opts.Sessions.HasSession(r.Context(), claims.ID)
		if err != nil {
			return nil, errors.Join(errSessionBackend, err)
		}
		if !ok {
			return nil, errNoSession
		}
	}

	ctx := WithUserID(r.Context(), claims.UserID.String())
	ctx = context.WithValue(ctx, ctxIsStaff, claims.IsStaff)
	ctx = context.WithValue(ctx, ctxAccessID, claims.ID)
	if opts.Logger != nil {
		ctx = opts.Logger.WithUserID(ctx, claims.UserID.String())
	}
	return ctx, nil
}
