// Package gallery lists community submissions and records votes on them.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/repository"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/leaderboard"
)

// PageSize is the number of submissions returned by List.
const PageSize = 50

var (
	// ErrNotFound is returned for an unknown submission id.
	ErrNotFound = errors.New("submission not found")
	// ErrInvalidSort is returned for a sort order other than newest or oldest.
	ErrInvalidSort = errors.New("invalid sort order")
	// ErrInvalidSubmission wraps validation failures on submit.
	ErrInvalidSubmission = errors.New("invalid submission")
)

// Sort orders the gallery by creation time.
type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
)

// ParseSort parses a sort query value. Blank means newest.
func ParseSort(raw string) (Sort, error) {
	switch Sort(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SortNewest:
		return SortNewest, nil
	case SortOldest:
		return SortOldest, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, raw)
	}
}

// SubmitInput is a participant's gallery entry.
type SubmitInput struct {
	Prompt        string  `json:"prompt"`
	ImageURL      string  `json:"image_url"`
	CompetitionID *string `json:"competition_id,omitempty"`
}

// VoteResult is the state of a vote after a toggle.
type VoteResult struct {
	Voted bool `json:"voted"`
	Votes int  `json:"votes"`
}

// Dependencies contains everything the gallery service needs.
type Dependencies struct {
	Submissions repository.SubmissionRepository
	Votes       repository.VoteRepository
	// Notifier is told whenever vote or submission counters change. Optional.
	Notifier leaderboard.Notifier
	Logger   *zap.Logger
}

// Service lists submissions and toggles votes.
type Service struct {
	submissions repository.SubmissionRepository
	votes       repository.VoteRepository
	notifier    leaderboard.Notifier
	logger      *zap.Logger
}

// NewService creates the gallery service.
func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		submissions: deps.Submissions,
		votes:       deps.Votes,
		notifier:    deps.Notifier,
		logger:      logger.Named("gallery"),
	}
}

// List returns one page of submissions with their authors.
func (s *Service) List(ctx context.Context, sort Sort) ([]models.Submission, error) {
	subs, err := s.submissions.List(ctx, sort == SortOldest, PageSize)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// Submit adds an image to the gallery on behalf of userID.
func (s *Service) Submit(ctx context.Context, userID string, in SubmitInput) (*models.Submission, error) {
	prompt := strings.TrimSpace(in.Prompt)
	imageURL := strings.TrimSpace(in.ImageURL)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrInvalidSubmission)
	}
	if imageURL == "" {
		return nil, fmt.Errorf("%w: image_url is required", ErrInvalidSubmission)
	}

	sub := &models.Submission{
		UserID:   userID,
		Prompt:   prompt,
		ImageURL: imageURL,
	}
	if in.CompetitionID != nil && strings.TrimSpace(*in.CompetitionID) != "" {
		id := strings.TrimSpace(*in.CompetitionID)
		sub.CompetitionID = &id
	}

	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	s.notify("submission")
	return sub, nil
}

// ToggleVote adds voterID's vote to the submission, or removes it if present.
func (s *Service) ToggleVote(ctx context.Context, submissionID, voterID string) (VoteResult, error) {
	voted, votes, err := s.votes.Toggle(ctx, submissionID, voterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return VoteResult{}, ErrNotFound
		}
		return VoteResult{}, fmt.Errorf("toggle vote: %w", err)
	}

	s.logger.Debug("vote toggled",
		zap.String("submission_id", submissionID),
		zap.String("voter_id", voterID),
		zap.Bool("voted", voted))
	s.notify("vote")
	return VoteResult{Voted: voted, Votes: votes}, nil
}

// HasVoted reports whether voterID currently votes for the submission.
func (s *Service) HasVoted(ctx context.Context, submissionID, voterID string) (bool, error) {
	ok, err := s.votes.HasVoted(ctx, submissionID, voterID)
	if err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return ok, nil
}

func (s *Service) notify(reason string) {
	if s.notifier != nil {
		s.notifier.Notify(reason)
	}
}
