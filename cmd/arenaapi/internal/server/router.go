package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/auth"
	arenamiddleware "github.com/promptartclash/arena/cmd/arenaapi/internal/middleware"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/competition"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/gallery"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/generation"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/identity"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/leaderboard"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/profile"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/telemetry"
)

// maxBodyBytes caps JSON and form bodies.
const maxBodyBytes = 1 << 20

// RouterOptions controls the construction of the arena HTTP router.
// Route groups are mounted only when their service is set, so tests and
// tools can build a partial router.
type RouterOptions struct {
	Identity     identity.Service
	Profiles     profile.Service
	Competitions competition.Service
	Gallery      *gallery.Service
	Leaderboard  *leaderboard.Service
	Hub          *leaderboard.Hub
	Generation   *generation.Service

	// Guard enforces the route-permission table. Defaults to access.DefaultRoutes.
	Guard *access.Guard

	Metrics *telemetry.Metrics
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	Cookies        auth.CookieOptions
	ProfileTimeout time.Duration
	Logger         *zap.Logger

	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
	ExtraRoutes   func(chi.Router)
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-Id", "Traceparent"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Server holds the collaborators shared by every handler.
type Server struct {
	opts     RouterOptions
	logger   *zap.Logger
	upgrader *websocket.Upgrader
}

// NewRouter assembles a chi.Router with shared middleware, the access chain,
// CORS policy, pages and the JSON API.
func NewRouter(opts RouterOptions) chi.Router {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Guard == nil {
		opts.Guard = access.MustNewGuard(access.DefaultRoutes)
	}
	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	s := &Server{opts: opts, logger: opts.Logger.Named("http"), upgrader: newStreamUpgrader(corsCfg)}

	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(arenamiddleware.Tracing)
	r.Use(arenamiddleware.NewMetricsMiddleware(opts.Metrics))

	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	// Access chain: role flag, session, profile role, then the route table.
	r.Use(arenamiddleware.RolePreference)
	if opts.Identity != nil {
		r.Use(arenamiddleware.NewSessionMiddleware(arenamiddleware.SessionDependencies{
			Sessions: opts.Identity,
			Cookies:  opts.Cookies,
			Logger:   opts.Logger,
		}))
	}
	if opts.Profiles != nil {
		r.Use(arenamiddleware.NewProfileLoader(arenamiddleware.ProfileLoaderDependencies{
			Profiles: opts.Profiles,
			Timeout:  opts.ProfileTimeout,
			Metrics:  opts.Metrics,
			Logger:   opts.Logger,
		}))
	}
	r.Use(arenamiddleware.NewGuardMiddleware(arenamiddleware.GuardDependencies{
		Guard:   opts.Guard,
		Metrics: opts.Metrics,
		Logger:  opts.Logger,
	}))

	r.NotFound(s.handleNotFound)

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	s.mountPages(r)
	r.Route("/api", s.mountAPI)

	if opts.ExtraRoutes != nil {
		opts.ExtraRoutes(r)
	}

	return r
}

// NewH2CHandler wraps the router with an h2c server to provide HTTP/2 over
// cleartext.
func NewH2CHandler(opts RouterOptions) http.Handler {
	return h2c.NewHandler(NewRouter(opts), &http2.Server{})
}

func (s *Server) mountPages(r chi.Router) {
	requireAuth := arenamiddleware.RequireAuthentication

	r.Get(access.PathLanding, s.handleLanding)
	r.Get(access.PathDemo, s.handleDemo)
	r.Get(access.PathSelectRole, s.handleSelectRolePage)
	r.Post(access.PathSelectRole, s.handleSelectRole)

	if s.opts.Identity != nil {
		r.Get(access.PathLogin, s.handleLoginPage)
		r.Post(access.PathLogin, s.handleLogin)
		r.Get(access.PathSignup, s.handleSignupPage)
		r.Post(access.PathSignup, s.handleSignup)
		r.Post(access.PathLogout, s.handleLogout)
	}
	if s.opts.Profiles != nil {
		r.Get(access.PathProfile, s.handleProfilePage)
		r.With(requireAuth).Post(access.PathProfile, s.handleProfileForm)
	}
	if s.opts.Generation != nil {
		r.Get(access.PathGenerate, s.handleGeneratePage)
		r.Post(access.PathGenerate, s.handleGenerateForm)
	}
	if s.opts.Gallery != nil {
		r.Get(access.PathGallery, s.handleGalleryPage)
		r.With(requireAuth).Post(access.PathGallery, s.handleGalleryForm)
	}
	if s.opts.Leaderboard != nil {
		r.Get(access.PathLeaderboard, s.handleLeaderboardPage)
	}
	if s.opts.Competitions != nil {
		r.Get(access.PathJoinCompetition, s.handleCompetitionsPage)
		r.With(requireAuth).Post(access.PathJoinCompetition, s.handleJoinForm)
		for _, path := range []string{access.PathCreateBattle, access.PathCreateCompetition} {
			r.Get(path, s.handleCreateCompetitionPage)
			r.With(requireAuth).Post(path, s.handleCreateCompetitionForm)
		}
	}
}

func (s *Server) mountAPI(r chi.Router) {
	requireAuth := arenamiddleware.RequireAuthentication

	r.Get("/shell", s.handleShell)

	if s.opts.Identity != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleAPISignup)
			r.Post("/login", s.handleAPILogin)
			r.Post("/logout", s.handleAPILogout)
			r.With(requireAuth).Get("/session", s.handleAPISession)
		})
	}

	if s.opts.Profiles != nil {
		r.With(requireAuth).Get("/profile", s.handleGetProfile)
		r.With(requireAuth).Patch("/profile", s.handleUpdateProfile)
	}

	if s.opts.Gallery != nil {
		r.Get("/submissions", s.handleListSubmissions)
		r.With(requireAuth).Post("/submissions", s.handleCreateSubmission)
		r.With(requireAuth).Post("/submissions/{id}/vote", s.handleToggleVote)
		r.With(requireAuth).Get("/submissions/{id}/vote", s.handleGetVote)
	}

	if s.opts.Leaderboard != nil {
		r.Get("/leaderboard", s.handleLeaderboard)
	}
	if s.opts.Hub != nil {
		r.Get("/leaderboard/stream", s.handleLeaderboardStream)
	}

	if s.opts.Competitions != nil {
		r.Get("/competitions", s.handleListCompetitions)
		r.With(requireAuth).Post("/competitions", s.handleCreateCompetition)
		r.With(requireAuth).Get("/competitions/joined", s.handleJoinedCompetitions)
		r.With(requireAuth).Post("/competitions/{id}/join", s.handleJoinCompetition)
	}

	if s.opts.Generation != nil {
		r.Post("/generate", s.handleGenerate)
		r.Get("/generate/random", s.handleGenerateRandom)
		r.Get("/prompts", s.handleListPrompts)
		r.Get("/prompts/{id}", s.handleGetPrompt)
		r.Get("/prompts/category/{category}", s.handlePromptsByCategory)
		r.Get("/images/{id}", s.handleGetImage)
	}
}
