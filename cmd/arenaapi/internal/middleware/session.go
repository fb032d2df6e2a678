package middleware

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/auth"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/identity"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/telemetry"
)

// SessionDependencies provides the collaborators for session authentication.
type SessionDependencies struct {
	Sessions SessionLookup
	Cookies  auth.CookieOptions
	Logger   *zap.Logger
}

// NewSessionMiddleware authenticates the session token presented as a Bearer
// header or the session cookie. Requests without a valid session continue
// anonymously; a stale session cookie is cleared. Authentication never blocks
// a request, the guard and handlers decide what anonymous visitors may do.
func NewSessionMiddleware(deps SessionDependencies) func(http.Handler) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			view := auth.GetViewFromContext(ctx).IdentityIssued()

			sess, err := deps.Sessions.GetSession(ctx, token)
			if err != nil {
				if errors.Is(err, identity.ErrInvalidSession) || errors.Is(err, identity.ErrSessionExpired) {
					logger.Debug("rejected session token", zap.Error(err))
					if _, cookieErr := r.Cookie(auth.SessionCookieName); cookieErr == nil {
						auth.ClearSessionCookie(w, deps.Cookies)
					}
				} else {
					logger.Warn("session lookup failed", zap.Error(err))
				}
				ctx = auth.SetViewContext(ctx, view.SignedOut())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			trace.SpanFromContext(ctx).SetAttributes(attribute.String(telemetry.AttrUserID, sess.UserID))
			ctx = auth.SetUserContext(ctx, auth.AuthenticatedPrincipal{
				UserID:    sess.UserID,
				Email:     sess.Email,
				SessionID: sess.ID,
			})
			ctx = auth.SetViewContext(ctx, view.SessionEstablished(sess.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthentication rejects anonymous API requests with 401 and sends
// anonymous page requests to the login page.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.GetUserFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		if IsAPIRequest(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})
}
