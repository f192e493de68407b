package login

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"setuptrack/infrastructure/cache"
	sessioncookie "setuptrack/infrastructure/session"
	"setuptrack/infrastructure/sqlite"
	"setuptrack/models"
	"setuptrack/userstore"
)

// CreateLoginHandler authenticates the user and issues a session cookie.
func CreateLoginHandler(db *sqlite.DB, users *userstore.Store, sessionCache *cache.SessionCache, userCache *cache.UserCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := strings.TrimSpace(r.FormValue("password"))
		if username == "" || password == "" {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("username and password are required"), http.StatusSeeOther)
			return
		}

		if !users.Authenticate(username, password) {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("invalid username or password"), http.StatusSeeOther)
			return
		}

		session := newSession(username, users.Profile(username))
		if err := persistSession(r.Context(), db, session); err != nil {
			slog.Error("persist session failed", slog.String("username", username), slog.Any("err", err))
			http.Redirect(w, r, "/login?error="+url.QueryEscape("failed to create session"), http.StatusSeeOther)
			return
		}

		sessionCache.Set(&session)
		if u, ok := users.Get(username); ok {
			userCache.Set(u)
		}

		http.SetCookie(w, sessioncookie.Cookie(session.ID, session.ExpiresAt))
		if session.Profile == models.ProfileAuditor {
			http.Redirect(w, r, "/app/audit", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/app/setup", http.StatusSeeOther)
	}
}

func newSession(username, profile string) models.Session {
	return models.Session{
		ID:        newSessionToken(),
		Username:  username,
		Profile:   profile,
		ExpiresAt: time.Now().Add(sessioncookie.DefaultExpiry),
		CreatedAt: time.Now(),
	}
}
