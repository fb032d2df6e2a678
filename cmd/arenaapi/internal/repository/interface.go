package repository

import (
	"context"
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
)

// UserRepository exposes persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// CreateWithProfile inserts the user and its profile atomically.
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// SessionRepository exposes persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	UpdateLastUsed(ctx context.Context, id string) error
	Revoke(ctx context.Context, id string) error
	RevokeByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ProfileRepository exposes persistence operations for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	// TopByVotes returns profiles ordered by votes_count descending.
	TopByVotes(ctx context.Context, limit int) ([]models.Profile, error)
}

// CompetitionRepository exposes persistence operations for competitions and
// their participant roster.
type CompetitionRepository interface {
	Create(ctx context.Context, competition *models.Competition) error
	GetByID(ctx context.Context, id string) (*models.Competition, error)
	// List returns competitions ordered by start_time ascending.
	List(ctx context.Context) ([]models.Competition, error)
	// Join adds userID to the roster. ErrCompetitionNotOpen outside the
	// schedule, ErrConflict if already joined.
	Join(ctx context.Context, competitionID, userID string, now time.Time) (*models.CompetitionParticipant, error)
	// Joined returns the user's roster entries with their competitions, newest first.
	Joined(ctx context.Context, userID string) ([]models.CompetitionParticipant, error)
}

// SubmissionRepository exposes persistence operations for gallery submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	// List returns submissions with authors, newest first unless oldestFirst.
	List(ctx context.Context, oldestFirst bool, limit int) ([]models.Submission, error)
}

// VoteRepository exposes persistence operations for votes.
type VoteRepository interface {
	// Toggle adds the voter's vote if absent and removes it if present,
	// keeping submission and author counters in step. It returns whether
	// the vote now exists and the submission's new vote count.
	Toggle(ctx context.Context, submissionID, voterID string) (voted bool, votes int, err error)
	HasVoted(ctx context.Context, submissionID, voterID string) (bool, error)
}

// GeneratedImageRepository records images returned by the generation backend.
type GeneratedImageRepository interface {
	Create(ctx context.Context, image *models.GeneratedImage) error
	GetByID(ctx context.Context, id string) (*models.GeneratedImage, error)
	Recent(ctx context.Context, userID string, limit int) ([]models.GeneratedImage, error)
}
