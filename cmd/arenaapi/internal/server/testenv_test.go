package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/auth"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/migrations"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/repository"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/competition"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/gallery"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/generation"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/identity"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/leaderboard"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/profile"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/telemetry"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// fakeGenerator returns base64("png:" + prompt).
type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return base64.StdEncoding.EncodeToString([]byte("png:" + prompt)), nil
}

type testEnv struct {
	t        *testing.T
	db       *bun.DB
	router   http.Handler
	hub      *leaderboard.Hub
	gen      *fakeGenerator
	registry *prometheus.Registry
}

type envOption func(*RouterOptions)

func withoutGenerator() envOption {
	return func(o *RouterOptions) {
		svc, err := generation.NewService(generation.Dependencies{
			Catalog:         o.Generation.Catalog(),
			SampleCacheSize: 4,
		})
		if err != nil {
			panic(err)
		}
		o.Generation = svc
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	db, err := bunx.NewDB("file:" + bunx.NewUUIDv7() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	issuer, err := auth.NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	ids, err := identity.NewService(identity.Dependencies{
		Users:    repository.NewBunUserRepository(db),
		Sessions: repository.NewBunSessionRepository(db),
		Issuer:   issuer,
		Logger:   logger,
		HashCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	profiles := repository.NewBunProfileRepository(db)

	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := leaderboard.NewHub(logger, 4)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(hubCtx)
	}()
	t.Cleanup(func() {
		stopHub()
		<-hubDone
	})

	catalog, err := generation.NewCatalog(generation.DefaultPrompts, 8)
	require.NoError(t, err)
	gen := &fakeGenerator{}
	registry := prometheus.NewRegistry()
	metrics, err := telemetry.NewMetrics(registry)
	require.NoError(t, err)
	generator, err := generation.NewService(generation.Dependencies{
		Catalog:         catalog,
		Generator:       gen,
		Images:          repository.NewBunGeneratedImageRepository(db),
		SampleCacheSize: 4,
		Metrics:         metrics,
		Logger:          logger,
	})
	require.NoError(t, err)

	ro := RouterOptions{
		Identity:     ids,
		Profiles:     profile.NewService(profile.Dependencies{Profiles: profiles, Logger: logger}),
		Competitions: competition.NewService(competition.Dependencies{Competitions: repository.NewBunCompetitionRepository(db), Logger: logger}),
		Gallery: gallery.NewService(gallery.Dependencies{
			Submissions: repository.NewBunSubmissionRepository(db),
			Votes:       repository.NewBunVoteRepository(db),
			Notifier:    hub,
			Logger:      logger,
		}),
		Leaderboard: leaderboard.NewService(profiles, 10),
		Hub:         hub,
		Generation:  generator,
		Metrics:     metrics,
		Gatherer:    registry,
		Logger:      logger,
	}
	for _, opt := range opts {
		opt(&ro)
	}

	return &testEnv{
		t:        t,
		db:       db,
		router:   NewRouter(ro),
		hub:      hub,
		gen:      gen,
		registry: registry,
	}
}

// visitor carries the cookies a browser would send.
type visitor struct {
	flag  string
	token string
}

func (v visitor) apply(r *http.Request) {
	if v.flag != "" {
		r.AddCookie(&http.Cookie{Name: auth.RoleCookieName, Value: v.flag})
	}
	if v.token != "" {
		r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: v.token})
	}
}

func (e *testEnv) do(v visitor, method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	v.apply(r)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, r)
	return rec
}

func (e *testEnv) form(v visitor, path string, values url.Values) *httptest.ResponseRecorder {
	e.t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	v.apply(r)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, r)
	return rec
}

// signup registers an account through the API and returns its session.
func (e *testEnv) signup(email, role string) sessionResponse {
	e.t.Helper()
	rec := e.do(visitor{}, http.MethodPost, "/api/auth/signup", signupRequest{
		Email:    email,
		Password: "secret1",
		Role:     role,
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var sess sessionResponse
	decode(e.t, rec, &sess)
	require.NotEmpty(e.t, sess.Token)
	return sess
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
