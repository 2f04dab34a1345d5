package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/lostfound-backend/api/middleware"
	"github.com/angelmondragon/lostfound-backend/api/responses"
	"github.com/angelmondragon/lostfound-backend/api/validators"
	"github.com/angelmondragon/lostfound-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/lostfound-backend/pkg/errors"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
)

// SessionCookie configures the cookie carrying the access token for browsers.
type SessionCookie struct {
	Name              string
	Secure            bool
	TrustProxyHeaders bool
}

func (c SessionCookie) set(w http.ResponseWriter, token string, ttl time.Duration) {
	if c.Name == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c SessionCookie) clear(w http.ResponseWriter) {
	if c.Name == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type loginFunc func(svc auth.Service, r *http.Request, body auth.LoginRequest, meta auth.RequestMeta) (*auth.LoginResponse, error)

// AuthLogin wires the public login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, cookie SessionCookie, logg *logger.Logger) http.HandlerFunc {
	return login(svc, cookie, logg, func(svc auth.Service, r *http.Request, body auth.LoginRequest, meta auth.RequestMeta) (*auth.LoginResponse, error) {
		return svc.Login(r.Context(), body, meta)
	})
}

// AdminAuthLogin wires the staff-only login endpoint into the HTTP layer.
func AdminAuthLogin(svc auth.Service, cookie SessionCookie, logg *logger.Logger) http.HandlerFunc {
	return login(svc, cookie, logg, func(svc auth.Service, r *http.Request, body auth.LoginRequest, meta auth.RequestMeta) (*auth.LoginResponse, error) {
		return svc.AdminLogin(r.Context(), body, meta)
	})
}

func login(svc auth.Service, cookie SessionCookie, logg *logger.Logger, do loginFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meta := auth.RequestMeta{
			RemoteAddr: middleware.ClientIP(r, cookie.TrustProxyHeaders),
			Path:       r.URL.Path,
			UserAgent:  validators.SanitizeString(r.UserAgent(), 512),
			RequestID:  middleware.RequestIDFromContext(r.Context()),
		}
		result, err := do(svc, r, body, meta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cookie.set(w, result.AccessToken, time.Duration(result.ExpiresIn)*time.Second)
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the caller's session and clears the cookie.
func AuthLogout(svc auth.Service, cookie SessionCookie, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		if err := svc.Logout(r.Context(), middleware.AccessIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cookie.clear(w)
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
