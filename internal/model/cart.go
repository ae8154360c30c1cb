package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64     `gorm:"column:user_id;uniqueIndex;not null" json:"userId"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Cart) TableName() string {
	return "carts"
}

// Total sums price snapshots, not current catalog prices.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

type CartItem struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID        uint64          `gorm:"column:cart_id;uniqueIndex:uniq_cart_publication;not null" json:"-"`
	PublicationID uint64          `gorm:"column:publication_id;uniqueIndex:uniq_cart_publication;not null" json:"publicationId"`
	Publication   *Publication    `gorm:"foreignKey:PublicationID" json:"publication,omitempty"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
