package gallery

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/repository"
)

type mockSubmissionRepository struct {
	created     []*models.Submission
	oldestFirst bool
	limit       int
}

func (m *mockSubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	s.ID = fmt.Sprintf("s%d", len(m.created)+1)
	m.created = append(m.created, s)
	return nil
}

func (m *mockSubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	return nil, repository.ErrNotFound
}

func (m *mockSubmissionRepository) List(ctx context.Context, oldestFirst bool, limit int) ([]models.Submission, error) {
	m.oldestFirst = oldestFirst
	m.limit = limit
	return nil, nil
}

// mockVoteRepository tracks votes per submission in memory.
type mockVoteRepository struct {
	votes map[string]map[string]bool // submission → voter set
}

func (m *mockVoteRepository) Toggle(ctx context.Context, submissionID, voterID string) (bool, int, error) {
	voters, ok := m.votes[submissionID]
	if !ok {
		return false, 0, fmt.Errorf("submission %s: %w", submissionID, repository.ErrNotFound)
	}
	if voters[voterID] {
		delete(voters, voterID)
	} else {
		voters[voterID] = true
	}
	return voters[voterID], len(voters), nil
}

func (m *mockVoteRepository) HasVoted(ctx context.Context, submissionID, voterID string) (bool, error) {
	return m.votes[submissionID][voterID], nil
}

type recordingNotifier struct {
	reasons []string
}

func (n *recordingNotifier) Notify(reason string) { n.reasons = append(n.reasons, reason) }

func TestParseSort(t *testing.T) {
	tests := []struct {
		in      string
		want    Sort
		wantErr bool
	}{
		{"", SortNewest, false},
		{"newest", SortNewest, false},
		{" Oldest ", SortOldest, false},
		{"popular", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSort(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSort)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList_PassesOrderAndPageSize(t *testing.T) {
	subs := &mockSubmissionRepository{}
	svc := NewService(Dependencies{Submissions: subs})

	_, err := svc.List(context.Background(), SortOldest)
	require.NoError(t, err)
	assert.True(t, subs.oldestFirst)
	assert.Equal(t, PageSize, subs.limit)

	_, err = svc.List(context.Background(), SortNewest)
	require.NoError(t, err)
	assert.False(t, subs.oldestFirst)
}

func TestSubmit(t *testing.T) {
	subs := &mockSubmissionRepository{}
	notifier := &recordingNotifier{}
	svc := NewService(Dependencies{Submissions: subs, Notifier: notifier})

	blank := "  "
	sub, err := svc.Submit(context.Background(), "u1", SubmitInput{Prompt: " robot ", ImageURL: "data:image/png;base64,AAA", CompetitionID: &blank})
	require.NoError(t, err)
	assert.Equal(t, "robot", sub.Prompt)
	assert.Equal(t, "u1", sub.UserID)
	assert.Nil(t, sub.CompetitionID)
	assert.Equal(t, []string{"submission"}, notifier.reasons)

	_, err = svc.Submit(context.Background(), "u1", SubmitInput{ImageURL: "x"})
	assert.ErrorIs(t, err, ErrInvalidSubmission)
	_, err = svc.Submit(context.Background(), "u1", SubmitInput{Prompt: "x"})
	assert.ErrorIs(t, err, ErrInvalidSubmission)
	assert.Len(t, subs.created, 1)
}

func TestToggleVote(t *testing.T) {
	votes := &mockVoteRepository{votes: map[string]map[string]bool{"s1": {}}}
	notifier := &recordingNotifier{}
	svc := NewService(Dependencies{Votes: votes, Notifier: notifier})
	ctx := context.Background()

	res, err := svc.ToggleVote(ctx, "s1", "u2")
	require.NoError(t, err)
	assert.Equal(t, VoteResult{Voted: true, Votes: 1}, res)

	voted, err := svc.HasVoted(ctx, "s1", "u2")
	require.NoError(t, err)
	assert.True(t, voted)

	res, err = svc.ToggleVote(ctx, "s1", "u2")
	require.NoError(t, err)
	assert.Equal(t, VoteResult{Voted: false, Votes: 0}, res)
	assert.Equal(t, []string{"vote", "vote"}, notifier.reasons)

	_, err = svc.ToggleVote(ctx, "missing", "u2")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, notifier.reasons, 2, "failed toggles do not notify")
}
