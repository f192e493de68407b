package adminusers

import (
	"net/http"
	"net/url"
	"strings"

	"setuptrack/frontend/login"
	sessioncontext "setuptrack/frontend/shared/context"
	"setuptrack/infrastructure/audit"
	"setuptrack/infrastructure/cache"
	"setuptrack/infrastructure/sqlite"
	"setuptrack/userstore"
)

// CreateUserCommandHandler adds a user or resets an existing user's password
// and profile. A profile change revokes the user's active sessions.
func CreateUserCommandHandler(users *userstore.Store, db *sqlite.DB, sessionCache *cache.SessionCache, userCache *cache.UserCache, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/app/admin/users?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := strings.TrimSpace(r.FormValue("password"))
		profile := r.FormValue("profile")

		if username == "" || password == "" {
			http.Redirect(w, r, "/app/admin/users?error="+url.QueryEscape("username and password are required"), http.StatusSeeOther)
			return
		}
		if err := login.ValidatePasswordPolicy(password); err != nil {
			http.Redirect(w, r, "/app/admin/users?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}

		_, existed := users.Get(username)
		if err := users.Upsert(username, password, profile); err != nil {
			http.Redirect(w, r, "/app/admin/users?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}

		// Stale sessions keep the old profile; drop them.
		sessionCache.DeleteByUsername(username)
		_ = login.DeleteSessionsByUsername(r.Context(), db, username)
		if u, ok := users.Get(username); ok {
			userCache.Set(u)
		}

		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		action := "user.create"
		if existed {
			action = "user.update"
		}
		auditSvc.Record(r.Context(), db, session.Username, action, audit.EntityUser,
			username, nil, map[string]any{"profile": users.Profile(username)})

		http.Redirect(w, r, "/app/admin/users", http.StatusSeeOther)
	}
}
