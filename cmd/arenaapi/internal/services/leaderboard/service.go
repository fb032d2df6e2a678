// Package leaderboard ranks participants by the votes their submissions have
// received and broadcasts change notifications to live subscribers.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/repository"
)

// Limits on the number of ranked entries returned.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Entry is one ranked row.
type Entry struct {
	Rank             int    `json:"rank"`
	UserID           string `json:"user_id"`
	Username         string `json:"username"`
	AvatarURL        string `json:"avatar_url,omitempty"`
	VotesCount       int    `json:"votes_count"`
	SubmissionsCount int    `json:"submissions_count"`
	Streak           int    `json:"streak"`
}

// Service reads the leaderboard.
type Service struct {
	profiles     repository.ProfileRepository
	defaultLimit int
}

// NewService creates a leaderboard reader. A non-positive defaultLimit uses
// DefaultLimit.
func NewService(profiles repository.ProfileRepository, defaultLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &Service{profiles: profiles, defaultLimit: defaultLimit}
}

// Top returns up to limit entries ranked by votes. Ties keep the earlier
// profile ahead and share no rank. Out of range limits are clamped.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	switch {
	case limit <= 0:
		limit = s.defaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	profiles, err := s.profiles.TopByVotes(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, Entry{
			Rank:             i + 1,
			UserID:           p.UserID,
			Username:         p.Username,
			AvatarURL:        p.AvatarURL,
			VotesCount:       p.VotesCount,
			SubmissionsCount: p.SubmissionsCount,
			Streak:           p.Streak,
		})
	}
	return entries, nil
}
