package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/auth"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/telemetry"
)

// DefaultProfileTimeout bounds the per-request profile fetch.
const DefaultProfileTimeout = 2 * time.Second

// ProfileLoaderDependencies provides the collaborators for profile loading.
type ProfileLoaderDependencies struct {
	Profiles RoleClaimer
	Timeout  time.Duration
	Metrics  *telemetry.Metrics
	Logger   *zap.Logger
}

// NewProfileLoader fetches the profile role of an authenticated visitor once
// per request. A failed or slow fetch is logged and the view keeps resolving
// from the local role flag; the request is never blocked on it.
func NewProfileLoader(deps ProfileLoaderDependencies) func(http.Handler) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = DefaultProfileTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			view := auth.GetViewFromContext(ctx)
			if !view.Authenticated() {
				next.ServeHTTP(w, r)
				return
			}

			fetchCtx, cancel := context.WithTimeout(ctx, timeout)
			claim, err := deps.Profiles.RoleClaim(fetchCtx, view.UserID())
			cancel()

			switch {
			case err != nil:
				logger.Warn("profile fetch failed, using local role flag",
					zap.String("user_id", view.UserID()),
					zap.Error(err))
				deps.Metrics.RecordProfileFetch("failed")
				view = view.ProfileUnavailable()
			case !claim.Present():
				deps.Metrics.RecordProfileFetch("missing")
				view = view.ProfileLoaded(claim)
			default:
				deps.Metrics.RecordProfileFetch("loaded")
				view = view.ProfileLoaded(claim)
			}

			next.ServeHTTP(w, r.WithContext(auth.SetViewContext(ctx, view)))
		})
	}
}
