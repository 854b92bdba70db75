package notification

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ceramicflow/internal/database"
)

func newTestRepo(t *testing.T) *eventRepository {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Connect(fmt.Sprintf("file:notification_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &Event{}))
	return NewRepository(db)
}

func TestPull_ReadAndClear(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewService(repo)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &Event{ReservationID: 1, OwnerID: 1, Message: "second", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &Event{ReservationID: 1, OwnerID: 1, Message: "first", CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &Event{ReservationID: 2, OwnerID: 2, Message: "bob's", CreatedAt: base}))

	got, err := svc.Pull(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, "second", got[1].Message)

	got, err = svc.Pull(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = svc.Pull(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCleanup_DeletesOnlyExpired(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &Event{OwnerID: 1, Message: "old", CreatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, repo.Create(ctx, &Event{OwnerID: 1, Message: "fresh", CreatedAt: now.Add(-time.Hour)}))

	c := NewCleanupService(repo, 24*time.Hour)
	c.now = func() time.Time { return now }

	deleted, err := c.CleanupOldEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	left, err := repo.Pull(ctx, 1)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "fresh", left[0].Message)
}
