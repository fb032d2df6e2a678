package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/auth"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/telemetry"
)

// GuardDependencies provides the collaborators for route guarding.
type GuardDependencies struct {
	Guard   *access.Guard
	Metrics *telemetry.Metrics
	Logger  *zap.Logger
}

// NewGuardMiddleware applies the route-permission table to every request.
// Pages the effective role may not open redirect to the role selector; API
// calls get 403 with the same redirect target in the body. Paths missing from
// the table pass through so the router can render its not-found view.
func NewGuardMiddleware(deps GuardDependencies) func(http.Handler) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			view := auth.GetViewFromContext(r.Context())
			role := view.Role()
			// The router matches on the escaped path, so the table must too.
			decision := deps.Guard.Decide(r.Method, r.URL.EscapedPath(), role)
			deps.Metrics.RecordGuard(decision.Outcome.String(), role.String())

			trace.SpanFromContext(r.Context()).SetAttributes(
				attribute.String(telemetry.AttrEffectiveRole, role.String()),
				attribute.String(telemetry.AttrAccessPhase, view.Phase().String()),
				attribute.String(telemetry.AttrGuardOutcome, decision.Outcome.String()),
			)

			switch decision.Outcome {
			case access.Render, access.NotFound:
				next.ServeHTTP(w, r)
			case access.Redirect:
				logger.Debug("route denied",
					zap.String("path", r.URL.Path),
					zap.String("role", role.String()),
					zap.String("phase", view.Phase().String()))
				if IsAPIRequest(r) {
					writeJSON(w, http.StatusForbidden, map[string]string{
						"error":    "role not permitted",
						"redirect": decision.Location,
					})
					return
				}
				http.Redirect(w, r, decision.Location, http.StatusFound)
			}
		})
	}
}
