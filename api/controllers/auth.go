package controllers

import (
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/rmadriz/portfolio-backend/api/middleware"
	"github.com/rmadriz/portfolio-backend/api/responses"
	"github.com/rmadriz/portfolio-backend/api/validators"
	"github.com/rmadriz/portfolio-backend/internal/auth"
	"github.com/rmadriz/portfolio-backend/pkg/config"
	pkgerrors "github.com/rmadriz/portfolio-backend/pkg/errors"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
)

// AuthLogin authenticates the admin and sets the http-only session cookie.
// The token also rides in the body for non-browser clients.
func AuthLogin(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload auth.LoginInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.ClientIP = clientIP(r)

		out, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, sessionCookie(cfg, out.Token, out.ExpiresAt))
		responses.WriteSuccess(w, out)
	}
}

// AuthLogout clears the session cookie. The JWT itself stays valid until
// expiry; there is no server-side session store to revoke.
func AuthLogout(cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie := sessionCookie(cfg, "", time.Unix(0, 0))
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
		responses.WriteSuccess(w, map[string]string{"status": "logged out"})
	}
}

// AuthVerify reports the session behind the presented credential.
func AuthVerify(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie(cfg.CookieName); err == nil {
			token = cookie.Value
		}
		if token == "" {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
				token = strings.TrimSpace(raw[7:])
			}
		}
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		session, err := svc.Verify(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// AuthMe returns the session seeded by the auth middleware.
func AuthMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"user_id": claims.UserID,
			"email":   claims.Email,
			"role":    claims.Role,
		})
	}
}

func sessionCookie(cfg config.JWTConfig, token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if _, err := netip.ParseAddr(first); err == nil {
			return first
		}
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return strings.Trim(host, "[]")
}
