package session

import (
	"net/http"
	"time"
)

const (
	// CookieName carries the session token.
	CookieName = "X-Session-Token"

	// DefaultExpiry is how long a login stays valid.
	DefaultExpiry = 12 * time.Hour
)

// Cookie builds the session cookie for a token.
func Cookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Expired builds a cookie that clears the session on the client.
func Expired() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Token extracts the session token from the request, empty when absent.
func Token(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
