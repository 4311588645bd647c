package middlewares

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/mbolis/survey-studio/httpx"
	"github.com/mbolis/survey-studio/log"
)

// Admin checks for the 'admin' role in an OAuth token signed with secret.
func Admin(secret string) func(http.Handler) http.Handler {
	authorize := oauth.Authorize(secret, nil)
	return func(next http.Handler) http.Handler {
		return chi.Chain(authorize, admin).Handler(next)
	}
}

func admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)
		if !hasRole(claims, "admin") {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "auth.role")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func hasRole(claims map[string]string, role string) bool {
	for _, r := range strings.Split(claims["roles"], ",") {
		if strings.TrimSpace(r) == role {
			return true
		}
	}
	return false
}

const refreshCookieAge = 60 * 60 * 24 * 365

// CookieAuth lets a browser reach the admin pages with the tokens kept in
// cookies. An expired access token is renewed with the refresh cookie; when
// that fails too the browser is sent to the login page.
func CookieAuth(bearerServer *oauth.BearerServer) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				h.ServeHTTP(w, r)
				return
			}

			token, err := r.Cookie("access_token")
			if err != nil && !errors.Is(err, http.ErrNoCookie) {
				httpx.LogInternalError(w, "cookie.access_token", err)
				return
			}
			if err == nil {
				r.Header.Set("authorization", "Bearer "+token.Value)
				rec := httpx.NewRecorder()
				h.ServeHTTP(rec, r)
				if rec.Status() != http.StatusUnauthorized {
					rec.Flush(w)
					return
				}
			}

			loginLocation := "/login?goto=" + url.QueryEscape(r.RequestURI)

			refreshToken, err := r.Cookie("refresh_token")
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					httpx.LogInternalError(w, "cookie.refresh_token", err)
					return
				}
				http.Redirect(w, r, loginLocation, http.StatusTemporaryRedirect)
				return
			}

			rec, err := httpx.Grant(r.Context(), bearerServer, url.Values{
				"grant_type":    {"refresh_token"},
				"refresh_token": {refreshToken.Value},
			})
			if err != nil {
				httpx.LogInternalError(w, "cookie.grant", err)
				return
			}
			switch rec.Status() {
			case http.StatusOK:
			case http.StatusUnauthorized:
				setCookie(w, "refresh_token", "", -1)
				http.Redirect(w, r, loginLocation, http.StatusTemporaryRedirect)
				return
			default:
				httpx.LogStatus(w, rec.Status(), log.WarnLevel, "cookie.grant")
				return
			}

			var grant httpx.TokenResponse
			if err := rec.DecodeJSON(&grant); err != nil {
				httpx.LogInternalError(w, "cookie.decode", err)
				return
			}
			setCookie(w, "access_token", grant.AccessToken, int(grant.ExpiresIn))
			setCookie(w, "refresh_token", grant.RefreshToken, refreshCookieAge)

			r.Header.Set("authorization", "Bearer "+grant.AccessToken)
			h.ServeHTTP(w, r)
		})
	}
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
