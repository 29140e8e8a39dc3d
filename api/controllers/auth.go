package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/hostelgrievance/grievance-backend/api/middleware"
	"github.com/hostelgrievance/grievance-backend/api/responses"
	"github.com/hostelgrievance/grievance-backend/api/validators"
	"github.com/hostelgrievance/grievance-backend/internal/auth"
	"github.com/hostelgrievance/grievance-backend/pkg/config"
	pkgerrors "github.com/hostelgrievance/grievance-backend/pkg/errors"
	"github.com/hostelgrievance/grievance-backend/pkg/logger"
)

const refreshTokenHeader = "X-Refresh-Token"

// SessionCookies writes and clears the httpOnly access token cookie.
type SessionCookies struct {
	Cookie config.CookieConfig
	TTL    time.Duration
}

func (c SessionCookies) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Cookie.Name,
		Value:    token,
		Path:     "/",
		Domain:   c.Cookie.Domain,
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Cookie.Secure,
		SameSite: c.Cookie.SameSiteMode(),
	})
}

func (c SessionCookies) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Cookie.Name,
		Value:    "",
		Path:     "/",
		Domain:   c.Cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Cookie.Secure,
		SameSite: c.Cookie.SameSiteMode(),
	})
}

func (c SessionCookies) write(w http.ResponseWriter, s *auth.Session) {
	c.set(w, s.AccessToken)
	w.Header().Set(refreshTokenHeader, s.RefreshToken)
}

// AuthSignup registers a student or faculty account and opens a session.
func AuthSignup(svc auth.Service, cookies SessionCookies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("auth"))
			return
		}
		var body auth.SignupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Signup(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cookies.write(w, result)
		responses.WriteCreated(w, auth.SignupResponse{Token: result.AccessToken, User: result.User})
	}
}

func AuthSignin(svc auth.Service, cookies SessionCookies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("auth"))
			return
		}
		var body auth.SigninRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Signin(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cookies.write(w, result)
		responses.WriteSuccess(w, auth.SigninResponseFrom(result))
	}
}

// AuthSignout revokes the session behind the presented token. The cookie is
// cleared even when the token is already unusable.
func AuthSignout(svc auth.Service, cookies SessionCookies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("auth"))
			return
		}
		token := middleware.TokenFromRequest(r, cookies.Cookie.Name)
		cookies.clear(w)
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		if err := svc.Signout(r.Context(), token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "signed_out"})
	}
}

// AuthRefresh rotates the refresh token and issues a new access token. The
// access token may already be expired.
func AuthRefresh(svc auth.Service, cookies SessionCookies, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("auth"))
			return
		}
		token := middleware.TokenFromRequest(r, cookies.Cookie.Name)
		refresh := strings.TrimSpace(r.Header.Get(refreshTokenHeader))
		if token == "" || refresh == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		result, err := svc.Refresh(r.Context(), token, refresh)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cookies.write(w, result)
		responses.WriteSuccess(w, auth.RefreshResponse{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
		})
	}
}

// Me returns the caller's profile.
func Me(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("auth"))
			return
		}
		id, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.Me(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
