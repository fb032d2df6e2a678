// Package competition manages themed art battles and their rosters.
package competition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/repository"
)

var (
	// ErrNotFound is returned for an unknown competition id.
	ErrNotFound = errors.New("competition not found")
	// ErrInvalid wraps validation failures on create.
	ErrInvalid = errors.New("invalid competition")
	// ErrAlreadyJoined is returned when the user is already on the roster.
	ErrAlreadyJoined = errors.New("already joined this competition")
	// ErrFull is returned when the roster is at capacity.
	ErrFull = errors.New("competition is full")
	// ErrNotOpen is returned when joining before the start or after the end.
	ErrNotOpen = errors.New("competition is not open for joining")
)

// CreateInput is a host's request to open a competition. A nil
// MaxParticipants uses models.DefaultMaxParticipants.
type CreateInput struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Theme           string    `json:"theme"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	MaxParticipants *int      `json:"max_participants,omitempty"`
}

// Service manages competitions.
type Service interface {
	Create(ctx context.Context, hostID string, in CreateInput) (*models.Competition, error)
	Get(ctx context.Context, id string) (*models.Competition, error)
	// List returns every competition ordered by start time.
	List(ctx context.Context) ([]models.Competition, error)
	Join(ctx context.Context, competitionID, userID string) (*models.CompetitionParticipant, error)
	// Joined returns the user's roster entries, most recent first.
	Joined(ctx context.Context, userID string) ([]models.CompetitionParticipant, error)
}

// Dependencies contains everything the competition service needs.
type Dependencies struct {
	Competitions repository.CompetitionRepository
	Logger       *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type service struct {
	competitions repository.CompetitionRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates the competition service.
func NewService(deps Dependencies) Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{competitions: deps.Competitions, logger: logger.Named("competition"), now: now}
}

func (s *service) Create(ctx context.Context, hostID string, in CreateInput) (*models.Competition, error) {
	limit := models.DefaultMaxParticipants
	if in.MaxParticipants != nil {
		limit = *in.MaxParticipants
	}

	c := &models.Competition{
		Title:           in.Title,
		Description:     in.Description,
		Theme:           in.Theme,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		MaxParticipants: limit,
		Status:          models.CompetitionUpcoming,
		CreatedBy:       hostID,
	}
	if err := c.ValidateForCreate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := s.competitions.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create competition: %w", err)
	}
	s.logger.Info("competition created",
		zap.String("competition_id", c.ID),
		zap.String("created_by", hostID),
		zap.Int("max_participants", c.MaxParticipants))
	return c, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Competition, error) {
	c, err := s.competitions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get competition: %w", err)
	}
	return c, nil
}

func (s *service) List(ctx context.Context) ([]models.Competition, error) {
	list, err := s.competitions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return list, nil
}

func (s *service) Join(ctx context.Context, competitionID, userID string) (*models.CompetitionParticipant, error) {
	p, err := s.competitions.Join(ctx, competitionID, userID, s.now())
	switch {
	case err == nil:
		s.logger.Debug("competition joined", zap.String("competition_id", competitionID), zap.String("user_id", userID))
		return p, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return nil, ErrAlreadyJoined
	case errors.Is(err, repository.ErrCompetitionNotOpen):
		return nil, ErrNotOpen
	case errors.Is(err, repository.ErrCompetitionFull):
		return nil, ErrFull
	default:
		return nil, fmt.Errorf("join competition: %w", err)
	}
}

func (s *service) Joined(ctx context.Context, userID string) ([]models.CompetitionParticipant, error) {
	rows, err := s.competitions.Joined(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list joined competitions: %w", err)
	}
	return rows, nil
}
