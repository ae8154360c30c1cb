package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Publication struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	Author      string          `gorm:"size:120;not null" json:"author"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null" json:"stock"`
	ImageURL    string          `gorm:"column:image_url;size:512" json:"image,omitempty"`
	IsActive    bool            `gorm:"column:is_active;not null" json:"isActive"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Publication) TableName() string {
	return "publications"
}
