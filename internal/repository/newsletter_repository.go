package repository

import (
	"context"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"gorm.io/gorm"
)

type NewsletterRepository interface {
	Create(ctx context.Context, s *model.NewsletterSubscription) error
	FindByEmail(ctx context.Context, email string) (*model.NewsletterSubscription, error)
	Update(ctx context.Context, id uint64, fields map[string]interface{}) error
	// List filters on is_active when active is non-nil.
	List(ctx context.Context, active *bool, offset, limit int) ([]model.NewsletterSubscription, int64, error)
}

type newsletterRepository struct {
	db *gorm.DB
}

func NewNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &newsletterRepository{db: db}
}

func (r *newsletterRepository) Create(ctx context.Context, s *model.NewsletterSubscription) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *newsletterRepository) FindByEmail(ctx context.Context, email string) (*model.NewsletterSubscription, error) {
	var s model.NewsletterSubscription
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *newsletterRepository) Update(ctx context.Context, id uint64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.NewsletterSubscription{}).Where("id = ?", id).Updates(fields).Error
}

func (r *newsletterRepository) List(ctx context.Context, active *bool, offset, limit int) ([]model.NewsletterSubscription, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.NewsletterSubscription{})
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.NewsletterSubscription
	if err := q.Session(&gorm.Session{}).
		Order("subscribed_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
