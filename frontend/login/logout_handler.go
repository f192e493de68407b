package login

import (
	"net/http"

	"setuptrack/infrastructure/cache"
	sessioncookie "setuptrack/infrastructure/session"
	"setuptrack/infrastructure/sqlite"
)

// LogoutHandler removes session state and clears the cookie.
func LogoutHandler(db *sqlite.DB, sessionCache *cache.SessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessioncookie.CookieName)
		if err == nil && cookie.Value != "" {
			sessionCache.Delete(cookie.Value)
			_ = DeleteSessionByToken(r.Context(), db, cookie.Value)
		}
		http.SetCookie(w, sessioncookie.Expired())
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
