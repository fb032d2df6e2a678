package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBunUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		user := &models.User{Email: "  Ada@Example.com ", PasswordHash: "hash"}
		require.NoError(t, repo.Create(ctx, user))
		assert.True(t, bunx.IsUUID(user.ID))
		assert.Equal(t, "ada@example.com", user.Email)

		byID, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)

		byEmail, err := repo.GetByEmail(ctx, "ADA@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.Nil(t, byEmail.LastLoginAt)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{Email: "ada@example.com", PasswordHash: "x"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConflict))
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update last login", func(t *testing.T) {
		user, err := repo.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.NoError(t, repo.UpdateLastLogin(ctx, user.ID))

		user, err = repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
	})
}

func TestBunSessionRepository(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "s@example.com", "participant")
	repo := NewBunSessionRepository(db)
	ctx := context.Background()

	session := &models.Session{
		ID:        bunx.NewUUIDv7(),
		UserID:    userID,
		TokenHash: "hash-1",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.GetByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.True(t, got.Active(time.Now()))

	require.NoError(t, repo.UpdateLastUsed(ctx, session.ID))
	require.NoError(t, repo.Revoke(ctx, session.ID))

	got, err = repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, got.Revoked)
	assert.False(t, got.Active(time.Now()))

	_, err = repo.GetByTokenHash(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	expired := &models.Session{
		ID:        bunx.NewUUIDv7(),
		UserID:    userID,
		TokenHash: "hash-2",
		ExpiresAt: time.Now().Add(-time.Hour).UTC(),
	}
	require.NoError(t, repo.Create(ctx, expired))

	n, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.RevokeByUserID(ctx, userID))
}

func TestBunProfileRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBunProfileRepository(db)
	ctx := context.Background()

	aliceID := seedUser(t, db, "alice@example.com", "participant")
	bobID := seedUser(t, db, "bob@example.com", "")

	t.Run("role is nullable", func(t *testing.T) {
		bob, err := repo.GetByUserID(ctx, bobID)
		require.NoError(t, err)
		assert.Nil(t, bob.Role)
		assert.Equal(t, "", bob.RoleValue())
	})

	t.Run("one profile per user", func(t *testing.T) {
		err := repo.Create(ctx, &models.Profile{UserID: aliceID, Username: "dup"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("update editable columns", func(t *testing.T) {
		alice, err := repo.GetByUserID(ctx, aliceID)
		require.NoError(t, err)

		host := "institute"
		alice.Role = &host
		alice.FullName = "Alice Liddell"
		alice.VotesCount = 999 // ignored: counters are not editable
		require.NoError(t, repo.Update(ctx, alice))

		alice, err = repo.GetByUserID(ctx, aliceID)
		require.NoError(t, err)
		assert.Equal(t, "institute", alice.RoleValue())
		assert.Equal(t, "Alice Liddell", alice.FullName)
		assert.Zero(t, alice.VotesCount)
	})

	t.Run("update missing profile", func(t *testing.T) {
		err := repo.Update(ctx, &models.Profile{UserID: bunx.NewUUIDv7()})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("get missing profile", func(t *testing.T) {
		_, err := repo.GetByUserID(ctx, bunx.NewUUIDv7())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBunUserRepository_CreateWithProfile(t *testing.T) {
	db := setupTestDB(t)
	users := NewBunUserRepository(db)
	profiles := NewBunProfileRepository(db)
	ctx := context.Background()

	role := "participant"
	user := &models.User{Email: "new@example.com", PasswordHash: "h"}
	require.NoError(t, users.CreateWithProfile(ctx, user, &models.Profile{Username: "new", Role: &role}))

	profile, err := profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "participant", profile.RoleValue())

	// A duplicate email rolls back without leaving an orphaned profile.
	dup := &models.User{Email: "new@example.com", PasswordHash: "h"}
	err = users.CreateWithProfile(ctx, dup, &models.Profile{Username: "dup"})
	assert.ErrorIs(t, err, ErrConflict)

	var count int
	require.NoError(t, db.NewRaw("SELECT count(*) FROM profiles").Scan(ctx, &count))
	assert.Equal(t, 1, count)
}
