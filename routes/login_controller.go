package routes

import (
	"net/http"
	"net/url"
	"regexp"

	"github.com/mbolis/survey-studio/app"
	"github.com/mbolis/survey-studio/httpx"
	"github.com/mbolis/survey-studio/log"
)

var reRefresh = regexp.MustCompile(`(?i)^refresh\s+(.+)$`)

// Login exchanges basic auth credentials for a token pair.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		grant(w, r, app, "login", url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		})
	}
}

// Refresh exchanges a refresh token, sent as "Authorization: Refresh <token>".
func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := reRefresh.FindStringSubmatch(r.Header.Get("authorization"))
		if match == nil {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}

		grant(w, r, app, "refresh", url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {match[1]},
		})
	}
}

func grant(w http.ResponseWriter, r *http.Request, app app.App, code string, values url.Values) {
	rec, err := httpx.Grant(r.Context(), app.BearerServer, values)
	if err != nil {
		httpx.LogInternalError(w, code+".grant", err)
		return
	}
	if rec.Status() != http.StatusOK {
		log.Debugf("%s: denied (%d)", code, rec.Status())
	}
	if err := rec.Flush(w); err != nil {
		log.Warnf("%s.write: %s", code, err)
	}
}
