// Package middleware derives the per-request access view (role flag, session,
// profile role) and enforces the route-permission table.
//
// Chain order matters: RolePreference, then Session, then ProfileLoader, then
// Guard. Each stage reads the view left by the previous one from the context.
// Tracing and metrics wrap the whole chain.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/identity"
)

// SessionLookup resolves a session token. identity.Service implements it.
type SessionLookup interface {
	GetSession(ctx context.Context, token string) (*identity.Session, error)
}

// RoleClaimer loads the profile role of a user. profile.Service implements it.
type RoleClaimer interface {
	RoleClaim(ctx context.Context, userID string) (access.Claim, error)
}

// IsAPIRequest reports whether the request targets the JSON API.
func IsAPIRequest(r *http.Request) bool {
	return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
