package repository

import (
	"context"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"gorm.io/gorm"
)

type FormRepository interface {
	CreateHealingRequest(ctx context.Context, h *model.HealingRequest) error
	FindHealingRequest(ctx context.Context, id uint64) (*model.HealingRequest, error)
	UpdateHealingRequest(ctx context.Context, id uint64, fields map[string]interface{}) error
	// ListHealingRequests filters on status when it is non-empty.
	ListHealingRequests(ctx context.Context, status model.HealingStatus, offset, limit int) ([]model.HealingRequest, int64, error)

	CreateQuestion(ctx context.Context, q *model.Question) error
	FindQuestion(ctx context.Context, id uint64) (*model.Question, error)
	UpdateQuestion(ctx context.Context, id uint64, fields map[string]interface{}) error
	ListQuestions(ctx context.Context, status model.QuestionStatus, offset, limit int) ([]model.Question, int64, error)
}

type formRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) FormRepository {
	return &formRepository{db: db}
}

// listByStatus pages a submissions table newest first.
func listByStatus[T any](ctx context.Context, db *gorm.DB, status string, offset, limit int) ([]T, int64, error) {
	q := db.WithContext(ctx).Model(new(T))
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []T
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

func (r *formRepository) CreateHealingRequest(ctx context.Context, h *model.HealingRequest) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *formRepository) FindHealingRequest(ctx context.Context, id uint64) (*model.HealingRequest, error) {
	var h model.HealingRequest
	if err := r.db.WithContext(ctx).First(&h, id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *formRepository) UpdateHealingRequest(ctx context.Context, id uint64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.HealingRequest{}).Where("id = ?", id).Updates(fields).Error
}

func (r *formRepository) ListHealingRequests(ctx context.Context, status model.HealingStatus, offset, limit int) ([]model.HealingRequest, int64, error) {
	return listByStatus[model.HealingRequest](ctx, r.db, string(status), offset, limit)
}

func (r *formRepository) CreateQuestion(ctx context.Context, q *model.Question) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *formRepository) FindQuestion(ctx context.Context, id uint64) (*model.Question, error) {
	var q model.Question
	if err := r.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *formRepository) UpdateQuestion(ctx context.Context, id uint64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Question{}).Where("id = ?", id).Updates(fields).Error
}

func (r *formRepository) ListQuestions(ctx context.Context, status model.QuestionStatus, offset, limit int) ([]model.Question, int64, error) {
	return listByStatus[model.Question](ctx, r.db, string(status), offset, limit)
}
