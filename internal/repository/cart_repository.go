package repository

import (
	"context"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	// FindOrCreate returns the user's cart with items and their publications.
	FindOrCreate(ctx context.Context, userID uint64) (*model.Cart, error)
	UpsertItem(ctx context.Context, cartID, publicationID uint64, qty int, price decimal.Decimal) error
	FindItem(ctx context.Context, cartID, publicationID uint64) (*model.CartItem, error)
	DeleteItem(ctx context.Context, cartID, publicationID uint64) (int64, error)
	DeleteItems(ctx context.Context, cartID uint64, itemIDs []uint64) error
	ClearByUser(ctx context.Context, userID uint64) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindOrCreate(ctx context.Context, userID uint64) (*model.Cart, error) {
	c := model.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		FirstOrCreate(&c).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Publication").
		First(&c, c.ID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepository) UpsertItem(ctx context.Context, cartID, publicationID uint64, qty int, price decimal.Decimal) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "publication_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "price", "updated_at"}),
	}).Create(&model.CartItem{
		CartID:        cartID,
		PublicationID: publicationID,
		Quantity:      qty,
		Price:         price,
	}).Error
}

func (r *cartRepository) FindItem(ctx context.Context, cartID, publicationID uint64) (*model.CartItem, error) {
	var it model.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ? AND publication_id = ?", cartID, publicationID).
		First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID, publicationID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND publication_id = ?", cartID, publicationID).
		Delete(&model.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *cartRepository) DeleteItems(ctx context.Context, cartID uint64, itemIDs []uint64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND id IN ?", cartID, itemIDs).
		Delete(&model.CartItem{}).Error
}

func (r *cartRepository) ClearByUser(ctx context.Context, userID uint64) error {
	sub := r.db.WithContext(ctx).Model(&model.Cart{}).Select("id").Where("user_id = ?", userID)
	return r.db.WithContext(ctx).
		Where("cart_id IN (?)", sub).
		Delete(&model.CartItem{}).Error
}
