package middleware

import (
	"net/http"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/auth"
)

// RolePreference lifts the local role flag cookie into a fresh access view.
// It must run before every other access middleware.
func RolePreference(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		view := access.NewView(auth.RoleFlag(r))
		next.ServeHTTP(w, r.WithContext(auth.SetViewContext(r.Context(), view)))
	})
}
