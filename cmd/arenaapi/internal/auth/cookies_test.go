package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetRoleCookie(rec, access.RoleHost, CookieOptions{Secure: true})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, RoleCookieName, cookies[0].Name)
	assert.Equal(t, "host", cookies[0].Value)
	assert.True(t, cookies[0].Secure)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	flag := RoleFlag(req)
	assert.True(t, flag.Present())
	assert.Equal(t, access.RoleHost, flag.Role())
}

func TestRoleFlag_LegacyAndMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, RoleFlag(req).Present())

	req.AddCookie(&http.Cookie{Name: RoleCookieName, Value: "institute"})
	assert.Equal(t, access.RoleHost, RoleFlag(req).Role())
}

func TestSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok", time.Now().Add(time.Hour), CookieOptions{})
	c := rec.Result().Cookies()[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, CookieOptions{})
	c = rec.Result().Cookies()[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.True(t, c.MaxAge < 0)
}

func TestSessionToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, SessionToken(req))

	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", SessionToken(req))

	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", SessionToken(req))
}

func TestViewContext(t *testing.T) {
	v := GetViewFromContext(context.Background())
	assert.Equal(t, access.PhaseNoFlag, v.Phase())

	stored := access.NewView(access.ClaimOf("host"))
	ctx := SetViewContext(context.Background(), stored)
	assert.Equal(t, stored, GetViewFromContext(ctx))

	_, ok := GetUserFromContext(ctx)
	assert.False(t, ok)
	ctx = SetUserContext(ctx, AuthenticatedPrincipal{UserID: "u"})
	p, ok := GetUserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u", p.UserID)
}
