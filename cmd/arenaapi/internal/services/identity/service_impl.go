package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/auth"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/repository"
)

// Dependencies contains everything the identity service needs.
type Dependencies struct {
	Users    repository.UserRepository
	Sessions repository.SessionRepository
	Issuer   *auth.TokenIssuer
	Logger   *zap.Logger

	// HashCost overrides the bcrypt cost. Zero means bcrypt.DefaultCost.
	HashCost int
}

type service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	issuer   *auth.TokenIssuer
	logger   *zap.Logger
	hashCost int
	now      func() time.Time
}

// NewService creates the identity service.
func NewService(deps Dependencies) (Service, error) {
	if deps.Users == nil || deps.Sessions == nil {
		return nil, errors.New("identity: user and session repositories are required")
	}
	if deps.Issuer == nil {
		return nil, errors.New("identity: token issuer is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cost := deps.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{
		users:    deps.Users,
		sessions: deps.Sessions,
		issuer:   deps.Issuer,
		logger:   logger.Named("identity"),
		hashCost: cost,
		now:      time.Now,
	}, nil
}

func (s *service) SignUp(ctx context.Context, creds Credentials, attrs Attributes, meta ClientMeta) (*Session, error) {
	email, err := normalizeEmail(creds.Email)
	if err != nil {
		return nil, err
	}
	if len(creds.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	// A chosen role is stored canonically. No choice leaves the profile role
	// unset so the visitor's role flag keeps governing.
	var profileRole *string
	roleName := "unset"
	if strings.TrimSpace(attrs.Role) != "" {
		role, ok := access.Normalize(attrs.Role)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, attrs.Role)
		}
		roleName = role.String()
		profileRole = &roleName
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	username := strings.TrimSpace(attrs.Username)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	user := &models.User{Email: email, PasswordHash: string(hash)}
	profile := &models.Profile{
		Username:      username,
		FullName:      strings.TrimSpace(attrs.FullName),
		InstituteName: strings.TrimSpace(attrs.InstituteName),
		Role:          profileRole,
	}
	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account registered", zap.String("user_id", user.ID), zap.String("role", roleName))
	return s.startSession(ctx, user, meta)
}

func (s *service) SignIn(ctx context.Context, creds Credentials, meta ClientMeta) (*Session, error) {
	email, err := normalizeEmail(creds.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Disabled() {
		return nil, ErrAccountDisabled
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("update last login failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return s.startSession(ctx, user, meta)
}

func (s *service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *service) GetSession(ctx context.Context, token string) (*Session, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	row, err := s.sessions.GetByTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if row.ID != claims.SessionID() || row.UserID != claims.UserID() {
		return nil, ErrInvalidSession
	}
	if !row.Active(s.now()) {
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.Disabled() {
		return nil, ErrSessionExpired
	}

	if err := s.sessions.UpdateLastUsed(ctx, row.ID); err != nil {
		s.logger.Debug("update session last used failed", zap.String("session_id", row.ID), zap.Error(err))
	}
	return sessionFrom(row, user.Email, ""), nil
}

func (s *service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

func (s *service) startSession(ctx context.Context, user *models.User, meta ClientMeta) (*Session, error) {
	sessionID := bunx.NewUUIDv7()
	issued, err := s.issuer.Issue(sessionID, user.ID)
	if err != nil {
		return nil, err
	}

	row := &models.Session{
		ID:        sessionID,
		UserID:    user.ID,
		TokenHash: issued.Hash,
		ExpiresAt: issued.ExpiresAt,
		UserAgent: optional(meta.UserAgent),
		IPAddress: optional(meta.IPAddress),
	}
	if err := s.sessions.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return sessionFrom(row, user.Email, issued.Token), nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
