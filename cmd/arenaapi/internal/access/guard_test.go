package access

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	g, err := NewGuard(DefaultRoutes)
	require.NoError(t, err)
	return g
}

func TestGuard_HostOnlyPathsRedirectParticipants(t *testing.T) {
	g := newTestGuard(t)

	for _, path := range []string{PathCreateBattle, PathCreateCompetition} {
		d := g.Decide(http.MethodGet, path, RoleParticipant)
		assert.Equal(t, Redirect, d.Outcome, path)
		assert.Equal(t, PathSelectRole, d.Location, path)

		d = g.Decide(http.MethodGet, path, RoleHost)
		assert.Equal(t, Render, d.Outcome, path)
	}
}

func TestGuard_ParticipantPathsRedirectHosts(t *testing.T) {
	g := newTestGuard(t)

	for _, path := range []string{PathGenerate, PathGallery, PathLeaderboard, PathJoinCompetition} {
		assert.Equal(t, Render, g.Decide(http.MethodGet, path, RoleParticipant).Outcome, path)

		d := g.Decide(http.MethodGet, path, RoleHost)
		assert.Equal(t, Redirect, d.Outcome, path)
		assert.Equal(t, PathSelectRole, d.Location)
	}
}

func TestGuard_OpenPaths(t *testing.T) {
	g := newTestGuard(t)

	for _, path := range []string{PathLanding, PathLogin, PathSignup, PathProfile, PathSelectRole, PathDemo} {
		for _, role := range []Role{RoleHost, RoleParticipant} {
			assert.Equal(t, Render, g.Decide(http.MethodGet, path, role).Outcome, "%s as %s", path, role)
		}
	}
}

func TestGuard_UnmatchedPathIsNotFound(t *testing.T) {
	g := newTestGuard(t)

	d := g.Decide(http.MethodGet, "/no-such-page", RoleHost)
	assert.Equal(t, NotFound, d.Outcome)
	assert.Empty(t, d.Location)
}

func TestGuard_MethodScopedRoutes(t *testing.T) {
	g := newTestGuard(t)

	assert.Equal(t, Render, g.Decide(http.MethodGet, "/api/competitions", RoleParticipant).Outcome)
	assert.Equal(t, Render, g.Decide(http.MethodGet, "/api/competitions", RoleHost).Outcome)
	assert.Equal(t, Render, g.Decide(http.MethodPost, "/api/competitions", RoleHost).Outcome)
	assert.Equal(t, Redirect, g.Decide(http.MethodPost, "/api/competitions", RoleParticipant).Outcome)
}

func TestGuard_ParameterisedRoutes(t *testing.T) {
	g := newTestGuard(t)

	assert.Equal(t, Render, g.Decide(http.MethodPost, "/api/competitions/42/join", RoleParticipant).Outcome)
	assert.Equal(t, Redirect, g.Decide(http.MethodPost, "/api/competitions/42/join", RoleHost).Outcome)
	assert.Equal(t, Render, g.Decide(http.MethodGet, "/api/competitions/joined", RoleParticipant).Outcome)
	assert.Equal(t, Render, g.Decide(http.MethodPost, "/api/auth/login", RoleHost).Outcome)
	assert.Equal(t, Render, g.Decide(http.MethodGet, "/api/prompts/category/fantasy", RoleHost).Outcome)
}

func TestGuard_Scenarios(t *testing.T) {
	g := newTestGuard(t)

	t.Run("host flag without profile renders create-battle", func(t *testing.T) {
		v := NewView(ClaimOf("host")).IdentityIssued().SessionEstablished("u1")
		assert.Equal(t, Render, g.Decide(http.MethodGet, PathCreateBattle, v.Role()).Outcome)
	})

	t.Run("participant profile overrides host flag", func(t *testing.T) {
		v := NewView(ClaimOf("host"))
		assert.Equal(t, Render, g.Decide(http.MethodGet, PathCreateBattle, v.Role()).Outcome)

		v = v.IdentityIssued().SessionEstablished("u1").ProfileLoaded(ClaimOf("participant"))
		d := g.Decide(http.MethodGet, PathCreateBattle, v.Role())
		assert.Equal(t, Redirect, d.Outcome)
		assert.Equal(t, PathSelectRole, d.Location)
	})

	t.Run("anonymous without flag", func(t *testing.T) {
		v := NewView(Claim{})
		assert.Equal(t, Render, g.Decide(http.MethodGet, PathGenerate, v.Role()).Outcome)
		assert.Equal(t, Redirect, g.Decide(http.MethodGet, PathCreateBattle, v.Role()).Outcome)
	})

	t.Run("participant flag survives sign-out", func(t *testing.T) {
		v := NewView(ClaimOf("participant")).IdentityIssued().SessionEstablished("u1").
			ProfileLoaded(ClaimOf("user")).SignedOut()
		assert.Equal(t, Render, g.Decide(http.MethodGet, PathGenerate, v.Role()).Outcome)
	})
}

func TestGuard_RoutesIsACopy(t *testing.T) {
	g := newTestGuard(t)
	routes := g.Routes()
	routes[0].Requirement = HostOnly
	assert.Equal(t, Open, g.Routes()[0].Requirement)
}

func TestLandingFor(t *testing.T) {
	assert.Equal(t, PathCreateBattle, LandingFor(RoleHost))
	assert.Equal(t, PathGenerate, LandingFor(RoleParticipant))
}
