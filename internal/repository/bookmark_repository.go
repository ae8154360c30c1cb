package repository

import (
	"context"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"gorm.io/gorm"
)

// PublicationCount is one row of the most-bookmarked ranking.
type PublicationCount struct {
	PublicationID uint64
	BookmarkCount int64
}

type BookmarkRepository interface {
	Create(ctx context.Context, b *model.Bookmark) error
	// Delete reports whether a bookmark was removed.
	Delete(ctx context.Context, userID, publicationID uint64) (bool, error)
	Exists(ctx context.Context, userID, publicationID uint64) (bool, error)
	ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Bookmark, int64, error)
	CountByUser(ctx context.Context, userID uint64) (int64, error)
	DeleteByUser(ctx context.Context, userID uint64) (int64, error)
	MostBookmarked(ctx context.Context, limit int) ([]PublicationCount, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) Create(ctx context.Context, b *model.Bookmark) error {
	return r.db.WithContext(ctx).Omit("Publication").Create(b).Error
}

func (r *bookmarkRepository) Delete(ctx context.Context, userID, publicationID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND publication_id = ?", userID, publicationID).
		Delete(&model.Bookmark{})
	return res.RowsAffected > 0, res.Error
}

func (r *bookmarkRepository) Exists(ctx context.Context, userID, publicationID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Bookmark{}).
		Where("user_id = ? AND publication_id = ?", userID, publicationID).
		Count(&n).Error
	return n > 0, err
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Bookmark, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Bookmark{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Bookmark
	if err := q.Session(&gorm.Session{}).
		Preload("Publication").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *bookmarkRepository) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Bookmark{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *bookmarkRepository) DeleteByUser(ctx context.Context, userID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Bookmark{})
	return res.RowsAffected, res.Error
}

func (r *bookmarkRepository) MostBookmarked(ctx context.Context, limit int) ([]PublicationCount, error) {
	var rows []PublicationCount
	err := r.db.WithContext(ctx).
		Model(&model.Bookmark{}).
		Select("publication_id, COUNT(*) AS bookmark_count").
		Group("publication_id").
		Order("bookmark_count DESC").
		Order("publication_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
