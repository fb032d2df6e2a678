package auth

import (
	"context"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
)

// AuthenticatedPrincipal captures identity metadata propagated through the request context.
type AuthenticatedPrincipal struct {
	// UserID references users.id.
	UserID string
	// Email of the signed-in account.
	Email string
	// SessionID references the active session row.
	SessionID string
}

type principalContextKey struct{}

// SetUserContext stores the authenticated principal on the context for downstream consumers.
func SetUserContext(ctx context.Context, principal AuthenticatedPrincipal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// GetUserFromContext retrieves the authenticated principal from the context.
func GetUserFromContext(ctx context.Context) (AuthenticatedPrincipal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(AuthenticatedPrincipal)
	return principal, ok
}

type viewContextKey struct{}

// SetViewContext stores the visitor's access snapshot on the context.
func SetViewContext(ctx context.Context, view access.View) context.Context {
	return context.WithValue(ctx, viewContextKey{}, view)
}

// GetViewFromContext returns the visitor's access snapshot. Requests that
// bypassed the access middleware get a fresh anonymous view.
func GetViewFromContext(ctx context.Context) access.View {
	if view, ok := ctx.Value(viewContextKey{}).(access.View); ok {
		return view
	}
	return access.NewView(access.Claim{})
}
