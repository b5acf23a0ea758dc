package session

import (
	"net/http"
	"time"
)

// CookieOptions describes how the session cookie is issued. The cookie
// is always http-only and scoped to the whole site with SameSite=Lax.
type CookieOptions struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// SetCookie sends the session token to the client. MaxAge matches the
// session TTL so the browser drops the cookie when the session expires.
func SetCookie(w http.ResponseWriter, token string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
