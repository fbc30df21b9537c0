package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryInsert_DuplicateShortID(t *testing.T) {
	repo := NewMemoryURLRepository()
	ctx := context.Background()

	first, err := repo.Insert(ctx, "abc123", "https://example.com/first", "https://short.ly/abc123", nil)
	require.NoError(t, err)

	_, err = repo.Insert(ctx, "abc123", "https://example.com/second", "https://short.ly/abc123", nil)
	assert.ErrorIs(t, err, ErrDuplicateShortID)

	// The colliding insert must not overwrite the existing mapping.
	stored, err := repo.FindByShortID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "https://example.com/first", stored.OriginalURL)
}

func TestMemoryRetention(t *testing.T) {
	repo := NewMemoryURLRepository()
	ctx := context.Background()

	mapping, err := repo.Insert(ctx, "abc123", "https://example.com", "https://short.ly/abc123", nil)
	require.NoError(t, err)

	// Age the record past the retention window.
	repo.SetNowFunc(func() time.Time {
		return mapping.CreatedAt.Add(Retention + time.Hour)
	})

	_, err = repo.FindByShortID(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound, "expired mappings are invisible to reads")

	_, err = repo.IncrementClicks(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)

	purged, err := repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	purged, err = repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestMemoryDeleteByID(t *testing.T) {
	repo := NewMemoryURLRepository()
	ctx := context.Background()

	mapping, err := repo.Insert(ctx, "abc123", "https://example.com", "https://short.ly/abc123", nil)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, mapping.ID))
	assert.ErrorIs(t, repo.DeleteByID(ctx, mapping.ID), ErrNotFound)

	_, err = repo.FindByShortID(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)
}
