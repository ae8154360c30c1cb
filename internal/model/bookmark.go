package model

import "time"

type Bookmark struct {
	ID            uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint64       `gorm:"column:user_id;uniqueIndex:uniq_user_publication;not null" json:"userId"`
	PublicationID uint64       `gorm:"column:publication_id;uniqueIndex:uniq_user_publication;index;not null" json:"publicationId"`
	Publication   *Publication `gorm:"foreignKey:PublicationID" json:"publication,omitempty"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"createdAt"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
