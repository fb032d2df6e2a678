package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
)

const (
	// SessionCookieName carries the signed session token
	SessionCookieName = "arena.session"

	// RoleCookieName carries the local role flag chosen on /select-role
	RoleCookieName = "arena.role"

	roleCookieMaxAge = 365 * 24 * time.Hour
)

// CookieOptions are shared by every cookie the server writes.
type CookieOptions struct {
	Secure bool
}

// SetSessionCookie stores the session token.
func SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie. The role cookie is left alone.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetRoleCookie overwrites the local role flag with a canonical role name.
func SetRoleCookie(w http.ResponseWriter, role access.Role, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     RoleCookieName,
		Value:    role.String(),
		Path:     "/",
		MaxAge:   int(roleCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RoleFlag reads the local role flag. A missing cookie is an absent claim.
func RoleFlag(r *http.Request) access.Claim {
	c, err := r.Cookie(RoleCookieName)
	if err != nil {
		return access.Claim{}
	}
	return access.ClaimOf(c.Value)
}

// SessionToken extracts a session token from the Authorization header
// (API clients) or the session cookie (browsers), in that order.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
