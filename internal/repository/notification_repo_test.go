package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormNotificationRepository(createTestDB(t))
	require.NoError(t, err)

	first, err := repo.Create(ctx, 1, "Leave Approved", "approved")
	require.NoError(t, err)
	assert.False(t, first.Read)

	second, err := repo.Create(ctx, 1, "Loss of Pay Alert", "lop")
	require.NoError(t, err)

	_, err = repo.Create(ctx, 2, "Leave Rejected", "rejected")
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	limited, err := repo.ListByUser(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	unread, err := repo.CountUnread(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, repo.MarkRead(ctx, 1, first.ID))
	assert.ErrorIs(t, repo.MarkRead(ctx, 2, second.ID), ErrNotificationNotFound, "other users cannot mark it")

	unread, err = repo.CountUnread(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
