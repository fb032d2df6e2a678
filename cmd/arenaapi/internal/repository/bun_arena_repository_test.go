package repository

import (
	"context"
	"testing"
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBunCompetitionRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunCompetitionRepository(db)
	ctx := context.Background()

	hostID := seedUser(t, db, "host@example.com", "host")
	p1 := seedUser(t, db, "p1@example.com", "participant")
	p2 := seedUser(t, db, "p2@example.com", "participant")

	base := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)
	later := seedCompetition(t, db, hostID, "Later", base.Add(48*time.Hour), 50)
	sooner := seedCompetition(t, db, hostID, "Sooner", base, 1)

	t.Run("validation", func(t *testing.T) {
		err := repo.Create(ctx, &models.Competition{Title: "x", CreatedBy: hostID})
		assert.ErrorContains(t, err, "description is required")
	})

	t.Run("defaults", func(t *testing.T) {
		got, err := repo.GetByID(ctx, later.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CompetitionUpcoming, got.Status)
		assert.Zero(t, got.CurrentParticipants)
	})

	t.Run("list by start time", func(t *testing.T) {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, sooner.ID, list[0].ID)
		assert.Equal(t, later.ID, list[1].ID)
	})

	t.Run("join", func(t *testing.T) {
		participant, err := repo.Join(ctx, later.ID, p1, later.StartTime.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, p1, participant.UserID)

		got, err := repo.GetByID(ctx, later.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CurrentParticipants)
	})

	t.Run("join twice conflicts", func(t *testing.T) {
		_, err := repo.Join(ctx, later.ID, p1, later.StartTime.Add(time.Hour))
		assert.ErrorIs(t, err, ErrConflict)

		got, err := repo.GetByID(ctx, later.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CurrentParticipants, "failed join must not change the count")
	})

	t.Run("join full competition", func(t *testing.T) {
		_, err := repo.Join(ctx, sooner.ID, p1, sooner.StartTime)
		require.NoError(t, err)
		_, err = repo.Join(ctx, sooner.ID, p2, sooner.StartTime)
		assert.ErrorIs(t, err, ErrCompetitionFull)
	})

	t.Run("join missing competition", func(t *testing.T) {
		_, err := repo.Join(ctx, bunx.NewUUIDv7(), p2, base)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("joined", func(t *testing.T) {
		rows, err := repo.Joined(ctx, p1)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, row := range rows {
			require.NotNil(t, row.Competition)
			assert.Equal(t, row.CompetitionID, row.Competition.ID)
		}

		rows, err = repo.Joined(ctx, p2)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("join window", func(t *testing.T) {
		p3 := seedUser(t, db, "p3@example.com", "participant")
		window := seedCompetition(t, db, hostID, "Window", base.Add(96*time.Hour), 10)

		tests := []struct {
			name string
			now  time.Time
			err  error
		}{
			{"before start", window.StartTime.Add(-time.Second), ErrCompetitionNotOpen},
			{"after end", window.EndTime.Add(time.Second), ErrCompetitionNotOpen},
			{"at start", window.StartTime, nil},
		}
		for _, tt := range tests {
			_, err := repo.Join(ctx, window.ID, p3, tt.now)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err, tt.name)
				continue
			}
			assert.NoError(t, err, tt.name)
		}

		_, err := repo.Join(ctx, window.ID, p2, window.EndTime)
		assert.NoError(t, err, "at end")

		got, err := repo.GetByID(ctx, window.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.CurrentParticipants, "rejected joins must not change the count")
	})
}

func TestBunSubmissionAndVoteRepositories(t *testing.T) {
	db := setupTestDB(t)
	submissions := NewBunSubmissionRepository(db)
	votes := NewBunVoteRepository(db)
	profiles := NewBunProfileRepository(db)
	ctx := context.Background()

	authorID := seedUser(t, db, "author@example.com", "participant")
	voterID := seedUser(t, db, "voter@example.com", "user")

	first := &models.Submission{UserID: authorID, Prompt: "first", ImageURL: "data:first"}
	require.NoError(t, submissions.Create(ctx, first))
	time.Sleep(2 * time.Millisecond)
	second := &models.Submission{UserID: authorID, Prompt: "second", ImageURL: "data:second"}
	require.NoError(t, submissions.Create(ctx, second))

	t.Run("author counter", func(t *testing.T) {
		author, err := profiles.GetByUserID(ctx, authorID)
		require.NoError(t, err)
		assert.Equal(t, 2, author.SubmissionsCount)
	})

	t.Run("list newest and oldest", func(t *testing.T) {
		newest, err := submissions.List(ctx, false, 50)
		require.NoError(t, err)
		require.Len(t, newest, 2)
		assert.Equal(t, second.ID, newest[0].ID)
		require.NotNil(t, newest[0].Author)
		assert.Equal(t, "author@example.com", newest[0].Author.Username)

		oldest, err := submissions.List(ctx, true, 1)
		require.NoError(t, err)
		require.Len(t, oldest, 1)
		assert.Equal(t, first.ID, oldest[0].ID)
	})

	t.Run("toggle vote on and off", func(t *testing.T) {
		voted, count, err := votes.Toggle(ctx, first.ID, voterID)
		require.NoError(t, err)
		assert.True(t, voted)
		assert.Equal(t, 1, count)

		has, err := votes.HasVoted(ctx, first.ID, voterID)
		require.NoError(t, err)
		assert.True(t, has)

		author, err := profiles.GetByUserID(ctx, authorID)
		require.NoError(t, err)
		assert.Equal(t, 1, author.VotesCount)

		voted, count, err = votes.Toggle(ctx, first.ID, voterID)
		require.NoError(t, err)
		assert.False(t, voted)
		assert.Equal(t, 0, count)

		got, err := submissions.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.VotesCount)

		author, err = profiles.GetByUserID(ctx, authorID)
		require.NoError(t, err)
		assert.Equal(t, 0, author.VotesCount)
	})

	t.Run("toggle on missing submission", func(t *testing.T) {
		_, _, err := votes.Toggle(ctx, bunx.NewUUIDv7(), voterID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("leaderboard order", func(t *testing.T) {
		_, _, err := votes.Toggle(ctx, second.ID, voterID)
		require.NoError(t, err)

		top, err := profiles.TopByVotes(ctx, 10)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, authorID, top[0].UserID)
		assert.Equal(t, 1, top[0].VotesCount)

		top, err = profiles.TopByVotes(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, top, 1)
	})
}

func TestBunGeneratedImageRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunGeneratedImageRepository(db)
	ctx := context.Background()

	userID := seedUser(t, db, "gen@example.com", "participant")
	for _, prompt := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &models.GeneratedImage{UserID: &userID, Prompt: prompt, ImageData: "AAAA"}))
	}
	require.NoError(t, repo.Create(ctx, &models.GeneratedImage{Prompt: "anonymous", ImageData: "AAAA"}))

	recent, err := repo.Recent(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Prompt)
	assert.Equal(t, "b", recent[1].Prompt)

	got, err := repo.GetByID(ctx, recent[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "AAAA", got.ImageData)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}
