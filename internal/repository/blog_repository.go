package repository

import (
	"context"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"gorm.io/gorm"
)

type BlogRepository interface {
	Create(ctx context.Context, b *model.BlogPost) error
	FindByID(ctx context.Context, id uint64) (*model.BlogPost, error)
	FindBySlug(ctx context.Context, slug string) (*model.BlogPost, error)
	SlugTaken(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, id uint64, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint64) error
	IncrementViews(ctx context.Context, id uint64) error
	// IncrementLikes returns the like count after the increment.
	IncrementLikes(ctx context.Context, id uint64) (int, error)
}

type blogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, b *model.BlogPost) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *blogRepository) FindByID(ctx context.Context, id uint64) (*model.BlogPost, error) {
	var b model.BlogPost
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *blogRepository) FindBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	var b model.BlogPost
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *blogRepository) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.BlogPost{}).Where("slug = ?", slug).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *blogRepository) Update(ctx context.Context, id uint64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.BlogPost{}).Where("id = ?", id).Updates(fields).Error
}

func (r *blogRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&model.BlogPost{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *blogRepository) IncrementViews(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&model.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *blogRepository) IncrementLikes(ctx context.Context, id uint64) (int, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&model.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var likes []int
	if err := db.Model(&model.BlogPost{}).Where("id = ?", id).Pluck("likes", &likes).Error; err != nil {
		return 0, err
	}
	if len(likes) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return likes[0], nil
}
