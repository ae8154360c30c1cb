package model

import "time"

type NewsletterSubscription struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email          string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	IsActive       bool       `gorm:"column:is_active;not null" json:"isActive"`
	Source         string     `gorm:"size:64" json:"source,omitempty"`
	SubscribedAt   time.Time  `gorm:"column:subscribed_at;not null" json:"subscribedAt"`
	UnsubscribedAt *time.Time `gorm:"column:unsubscribed_at" json:"unsubscribedAt,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (NewsletterSubscription) TableName() string {
	return "newsletter_subscriptions"
}
