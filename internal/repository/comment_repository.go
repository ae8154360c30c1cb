package repository

import (
	"context"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	FindByID(ctx context.Context, id uint64) (*model.Comment, error)
	// ListTopLevel returns a post's top-level comments newest first, each
	// with its replies oldest first. Unapproved comments and replies are
	// left out unless includePending is set.
	ListTopLevel(ctx context.Context, blogID uint64, includePending bool, offset, limit int) ([]model.Comment, int64, error)
	ListPending(ctx context.Context, offset, limit int) ([]model.Comment, int64, error)
	Approve(ctx context.Context, id uint64) error
	// Delete removes a comment and its replies.
	Delete(ctx context.Context, id uint64) error
	DeleteByBlog(ctx context.Context, blogID uint64) error
	Counts(ctx context.Context) (total, approved int64, err error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Omit("Replies").Create(c).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uint64) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) ListTopLevel(ctx context.Context, blogID uint64, includePending bool, offset, limit int) ([]model.Comment, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("blog_id = ? AND parent_id IS NULL", blogID)
	if !includePending {
		q = q.Where("is_approved = ?", true)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Comment
	if err := q.Session(&gorm.Session{}).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			if !includePending {
				db = db.Where("is_approved = ?", true)
			}
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *commentRepository) ListPending(ctx context.Context, offset, limit int) ([]model.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Comment{}).Where("is_approved = ?", false)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Comment
	if err := q.Session(&gorm.Session{}).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *commentRepository) Approve(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("is_approved", true).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("parent_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.Comment{}, id).Error
}

func (r *commentRepository) DeleteByBlog(ctx context.Context, blogID uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("blog_id = ? AND parent_id IS NOT NULL", blogID).Delete(&model.Comment{}).Error; err != nil {
		return err
	}
	return db.Where("blog_id = ?", blogID).Delete(&model.Comment{}).Error
}

func (r *commentRepository) Counts(ctx context.Context) (int64, int64, error) {
	db := r.db.WithContext(ctx)
	var total, approved int64
	if err := db.Model(&model.Comment{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Model(&model.Comment{}).Where("is_approved = ?", true).Count(&approved).Error; err != nil {
		return 0, 0, err
	}
	return total, approved, nil
}
