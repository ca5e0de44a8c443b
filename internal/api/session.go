package api

import (
	"net/http"
	"time"

	"github.com/phrazzld/recall-api/internal/config"
)

// DefaultCookieName is the session cookie used when none is configured.
const DefaultCookieName = "access_token_cookie"

// SessionCookies writes and clears the cookie that carries the access token.
type SessionCookies struct {
	Name     string
	Domain   string
	Secure   bool
	Lifetime time.Duration
}

// NewSessionCookies builds the cookie settings from the auth configuration.
func NewSessionCookies(cfg config.AuthConfig) SessionCookies {
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	return SessionCookies{
		Name:     name,
		Domain:   cfg.CookieDomain,
		Secure:   cfg.CookieSecure,
		Lifetime: cfg.TokenLifetime(),
	}
}

// Set stores token in the session cookie.
func (c SessionCookies) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(c.Lifetime.Seconds()),
		Expires:  time.Now().Add(c.Lifetime),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (c SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
