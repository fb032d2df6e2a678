// Package profile reads and edits the profile record that carries a user's
// durable role.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/repository"
)

var (
	// ErrNotFound is returned when the user has no profile record.
	ErrNotFound = errors.New("profile not found")
	// ErrInvalidRole is returned when an update sets a role outside the vocabulary.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidUpdate is returned for unknown fields or values of the wrong type.
	ErrInvalidUpdate = errors.New("invalid profile update")
)

// Service is the profile record contract.
type Service interface {
	// GetProfile returns the profile owned by userID or ErrNotFound.
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	// UpdateProfile applies a partial update. Keys are the JSON field names of
	// the editable columns; any other key is rejected.
	UpdateProfile(ctx context.Context, userID string, fields map[string]any) (*models.Profile, error)
	// RoleClaim returns the profile's role as an access claim. A missing
	// profile yields an absent claim rather than an error.
	RoleClaim(ctx context.Context, userID string) (access.Claim, error)
}

// Update lists the editable profile fields. Nil means unchanged.
type Update struct {
	Username      *string `mapstructure:"username"`
	FullName      *string `mapstructure:"full_name"`
	InstituteName *string `mapstructure:"institute_name"`
	Bio           *string `mapstructure:"bio"`
	Role          *string `mapstructure:"role"`
	AvatarURL     *string `mapstructure:"avatar_url"`
}

// DecodeUpdate converts loosely typed input into an Update.
func DecodeUpdate(fields map[string]any) (Update, error) {
	var upd Update
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &upd,
		ErrorUnused: true,
		ZeroFields:  true,
	})
	if err != nil {
		return Update{}, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(fields); err != nil {
		return Update{}, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	return upd, nil
}

// Dependencies contains everything the profile service needs.
type Dependencies struct {
	Profiles repository.ProfileRepository
	Logger   *zap.Logger
}

type service struct {
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

// NewService creates the profile service.
func NewService(deps Dependencies) Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{profiles: deps.Profiles, logger: logger.Named("profile")}
}

func (s *service) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, fields map[string]any) (*models.Profile, error) {
	upd, err := DecodeUpdate(fields)
	if err != nil {
		return nil, err
	}

	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if name == "" {
			return nil, fmt.Errorf("%w: username cannot be empty", ErrInvalidUpdate)
		}
		p.Username = name
	}
	if upd.FullName != nil {
		p.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.InstituteName != nil {
		p.InstituteName = strings.TrimSpace(*upd.InstituteName)
	}
	if upd.Bio != nil {
		p.Bio = *upd.Bio
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = strings.TrimSpace(*upd.AvatarURL)
	}
	if upd.Role != nil {
		role, ok := access.Normalize(*upd.Role)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, *upd.Role)
		}
		name := role.String()
		if p.RoleValue() != name {
			s.logger.Info("profile role changed",
				zap.String("user_id", userID),
				zap.String("from", p.RoleValue()),
				zap.String("to", name))
		}
		p.Role = &name
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

func (s *service) RoleClaim(ctx context.Context, userID string) (access.Claim, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return access.Claim{}, nil
		}
		return access.Claim{}, err
	}
	return access.ClaimOf(p.RoleValue()), nil
}
