package service

import (
	"context"
	"testing"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"github.com/juhi-kothari/Pranam-app/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func deactivate(t *testing.T, db *gorm.DB, p *model.Publication) {
	t.Helper()
	require.NoError(t, db.Model(&model.Publication{}).Where("id = ?", p.ID).Update("is_active", false).Error)
}

func TestBookmarkLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewBookmarkService(repository.NewStore(db))
	ctx := context.Background()
	gita := testutil.SeedPublication(t, db, "Gita", "250.00", 5)
	vedas := testutil.SeedPublication(t, db, "Vedas", "400.00", 5)
	retired := testutil.SeedPublication(t, db, "Retired", "100.00", 5)
	deactivate(t, db, retired)
	const user = uint64(7)

	b, err := svc.Add(ctx, user, gita.ID)
	require.NoError(t, err)
	require.NotNil(t, b.Publication)
	assert.Equal(t, "Gita", b.Publication.Title)

	_, err = svc.Add(ctx, user, gita.ID)
	assert.ErrorIs(t, err, ErrAlreadyBookmarked)
	_, err = svc.Add(ctx, user, retired.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Add(ctx, user, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Add(ctx, user, 0)
	assert.ErrorIs(t, err, ErrValidation)

	ok, err := svc.IsBookmarked(ctx, user, gita.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.IsBookmarked(ctx, user+1, gita.ID)
	require.NoError(t, err)
	assert.False(t, ok, "bookmarks are per user")

	for _, want := range []bool{true, false, true} {
		got, err := svc.Toggle(ctx, user, vedas.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = svc.Toggle(ctx, user, retired.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := svc.Count(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err := svc.List(ctx, user, 1, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	for _, item := range list.Items {
		assert.NotNil(t, item.Publication)
	}

	require.NoError(t, svc.Remove(ctx, user, gita.ID))
	assert.ErrorIs(t, svc.Remove(ctx, user, gita.ID), ErrNotFound)

	cleared, err := svc.Clear(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)
	n, err = svc.Count(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPopularPublications(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewBookmarkService(repository.NewStore(db))
	ctx := context.Background()
	gita := testutil.SeedPublication(t, db, "Gita", "250.00", 5)
	vedas := testutil.SeedPublication(t, db, "Vedas", "400.00", 5)
	retired := testutil.SeedPublication(t, db, "Retired", "100.00", 5)

	for _, user := range []uint64{1, 2, 3} {
		_, err := svc.Add(ctx, user, gita.ID)
		require.NoError(t, err)
	}
	for _, user := range []uint64{1, 2} {
		_, err := svc.Add(ctx, user, retired.ID)
		require.NoError(t, err)
	}
	_, err := svc.Add(ctx, 1, vedas.ID)
	require.NoError(t, err)
	deactivate(t, db, retired)

	popular, err := svc.Popular(ctx, 0)
	require.NoError(t, err)
	require.Len(t, popular, 2, "inactive publications are skipped")
	assert.Equal(t, gita.ID, popular[0].Publication.ID)
	assert.Equal(t, int64(3), popular[0].BookmarkCount)
	assert.Equal(t, vedas.ID, popular[1].Publication.ID)
	assert.Equal(t, int64(1), popular[1].BookmarkCount)
}
