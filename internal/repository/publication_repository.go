package repository

import (
	"context"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"gorm.io/gorm"
)

type PublicationRepository interface {
	Create(ctx context.Context, p *model.Publication) error
	FindByID(ctx context.Context, id uint64) (*model.Publication, error)
	FindByTitle(ctx context.Context, title string) (*model.Publication, error)
	// DecrementStock takes qty units out of stock, or returns
	// ErrInsufficientStock without touching the row.
	DecrementStock(ctx context.Context, id uint64, qty int) error
	IncrementStock(ctx context.Context, id uint64, qty int) error
}

type publicationRepository struct {
	db *gorm.DB
}

func NewPublicationRepository(db *gorm.DB) PublicationRepository {
	return &publicationRepository{db: db}
}

func (r *publicationRepository) Create(ctx context.Context, p *model.Publication) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *publicationRepository) FindByID(ctx context.Context, id uint64) (*model.Publication, error) {
	var p model.Publication
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *publicationRepository) FindByTitle(ctx context.Context, title string) (*model.Publication, error) {
	var p model.Publication
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *publicationRepository) DecrementStock(ctx context.Context, id uint64, qty int) error {
	res := r.db.WithContext(ctx).
		Model(&model.Publication{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *publicationRepository) IncrementStock(ctx context.Context, id uint64, qty int) error {
	return r.db.WithContext(ctx).
		Model(&model.Publication{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}
