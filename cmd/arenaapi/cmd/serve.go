package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/auth"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/repository"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/server"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/competition"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/gallery"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/generation"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/identity"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/leaderboard"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/profile"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/telemetry"
)

// sessionPurgeInterval is how often expired sessions are deleted.
const sessionPurgeInterval = time.Hour

// purgeSessions deletes expired sessions on a ticker until ctx is done.
func purgeSessions(ctx context.Context, sessions identity.Service) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Error("purge expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("purged expired sessions", zap.Int64("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arena server",
	Long:  `Starts the HTTP server with the arena pages, the JSON API and the leaderboard stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := context.WithCancel(cmd.Context())
		defer stop()

		shutdownTracing, err := telemetry.Init(ctx, cfg.Observability, logger)
		if err != nil {
			return fmt.Errorf("initialize tracing: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				logger.Warn("tracing shutdown", zap.Error(err))
			}
		}()

		db, err := bunx.NewDB(cfg.DatabaseURL, bunx.WithMaxOpenConns(cfg.MaxDBConnections))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)
		logger.Info("connected to database", zap.String("type", string(bunx.DetectDatabaseType(cfg.DatabaseURL))))

		secret := []byte(cfg.Session.Secret)
		if len(secret) == 0 {
			if secret, err = auth.GenerateSecret(); err != nil {
				return fmt.Errorf("generate session secret: %w", err)
			}
			logger.Warn("session_secret not set; using an ephemeral secret, sessions end on restart")
		}
		issuer, err := auth.NewTokenIssuer(secret, cfg.Session.TTL)
		if err != nil {
			return fmt.Errorf("create token issuer: %w", err)
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := telemetry.NewMetrics(registry)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}

		// Repositories
		userRepo := repository.NewBunUserRepository(db)
		sessionRepo := repository.NewBunSessionRepository(db)
		profileRepo := repository.NewBunProfileRepository(db)
		competitionRepo := repository.NewBunCompetitionRepository(db)
		submissionRepo := repository.NewBunSubmissionRepository(db)
		voteRepo := repository.NewBunVoteRepository(db)
		imageRepo := repository.NewBunGeneratedImageRepository(db)

		identitySvc, err := identity.NewService(identity.Dependencies{
			Users:    userRepo,
			Sessions: sessionRepo,
			Issuer:   issuer,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("create identity service: %w", err)
		}

		go purgeSessions(ctx, identitySvc)

		hub := leaderboard.NewHub(logger, leaderboard.DefaultSubscriberBuffer)
		go hub.Run(ctx)

		catalog, err := generation.NewCatalog(generation.DefaultPrompts, 0)
		if err != nil {
			return fmt.Errorf("load prompt catalog: %w", err)
		}
		var generator generation.ImageGenerator
		if cfg.Generator.URL != "" {
			client, err := generation.NewClient(cfg.Generator.URL, cfg.Generator.Timeout)
			if err != nil {
				return fmt.Errorf("create generator client: %w", err)
			}
			generator = client
		} else {
			logger.Warn("generator_url not set; image generation is disabled")
		}
		generationSvc, err := generation.NewService(generation.Dependencies{
			Catalog:         catalog,
			Generator:       generator,
			Images:          imageRepo,
			SampleCacheSize: cfg.Generator.SampleCacheSize,
			Metrics:         metrics,
			Logger:          logger,
		})
		if err != nil {
			return fmt.Errorf("create generation service: %w", err)
		}

		corsOpts := server.DefaultCORSOptions()
		corsOpts.AllowedOrigins = append(corsOpts.AllowedOrigins, strings.TrimRight(cfg.ServerURL, "/"))

		routerOpts := server.RouterOptions{
			Identity:     identitySvc,
			Profiles:     profile.NewService(profile.Dependencies{Profiles: profileRepo, Logger: logger}),
			Competitions: competition.NewService(competition.Dependencies{Competitions: competitionRepo, Logger: logger}),
			Gallery: gallery.NewService(gallery.Dependencies{
				Submissions: submissionRepo,
				Votes:       voteRepo,
				Notifier:    hub,
				Logger:      logger,
			}),
			Leaderboard: leaderboard.NewService(profileRepo, cfg.LeaderboardLimit),
			Hub:         hub,
			Generation:  generationSvc,
			Guard:       access.MustNewGuard(access.DefaultRoutes),
			Metrics:     metrics,
			Gatherer:    registry,
			Cookies:     auth.CookieOptions{Secure: cfg.Session.CookieSecure},
			Logger:      logger,
			CORSOptions: &corsOpts,
		}

		srv := &http.Server{
			Addr:        cfg.ServerAddr,
			Handler:     server.NewH2CHandler(routerOpts),
			ReadTimeout: 15 * time.Second,
			// No WriteTimeout: leaderboard streams stay open.
			IdleTimeout: 60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server",
				zap.String("addr", cfg.ServerAddr),
				zap.String("url", cfg.ServerURL))
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down gracefully", zap.String("signal", sig.String()))

			// Closing the hub ends every open leaderboard stream.
			stop()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
