package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type BlogStatus string

const (
	BlogDraft     BlogStatus = "draft"
	BlogPublished BlogStatus = "published"
)

func (s BlogStatus) Valid() bool {
	return s == BlogDraft || s == BlogPublished
}

type BlogPost struct {
	ID              uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string                      `gorm:"size:300;not null" json:"title"`
	Slug            string                      `gorm:"size:320;uniqueIndex;not null" json:"slug"`
	Excerpt         string                      `gorm:"size:500" json:"excerpt,omitempty"`
	Content         string                      `gorm:"type:text;not null" json:"content"`
	FeaturedImage   string                      `gorm:"column:featured_image;size:512" json:"featuredImage,omitempty"`
	AuthorID        *uint64                     `gorm:"column:author_id;index" json:"authorId,omitempty"`
	Status          BlogStatus                  `gorm:"size:16;index;not null" json:"status"`
	Tags            datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Categories      datatypes.JSONSlice[string] `gorm:"column:categories" json:"categories"`
	MetaTitle       string                      `gorm:"column:meta_title;size:300" json:"metaTitle,omitempty"`
	MetaDescription string                      `gorm:"column:meta_description;size:500" json:"metaDescription,omitempty"`
	IsFeatured      bool                        `gorm:"column:is_featured;not null" json:"isFeatured"`
	AllowComments   bool                        `gorm:"column:allow_comments;not null" json:"allowComments"`
	ViewCount       int                         `gorm:"column:view_count;not null;default:0" json:"viewCount"`
	Likes           int                         `gorm:"column:likes;not null;default:0" json:"likes"`
	PublishedAt     *time.Time                  `gorm:"column:published_at;index" json:"publishedAt,omitempty"`
	CreatedAt       time.Time                   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

// ReadingTime estimates minutes at 200 words per minute, never less than one.
func (b *BlogPost) ReadingTime() int {
	words := len(strings.Fields(b.Content))
	minutes := (words + 199) / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Comment is a reader comment on a post. Replies are one level deep: a
// reply's ParentID always points at a top-level comment.
type Comment struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BlogID     uint64    `gorm:"column:blog_id;index;not null" json:"blogId"`
	ParentID   *uint64   `gorm:"column:parent_id;index" json:"parentId,omitempty"`
	UserID     *uint64   `gorm:"column:user_id;index" json:"userId,omitempty"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:255" json:"email,omitempty"`
	Text       string    `gorm:"size:1000;not null" json:"text"`
	IsApproved bool      `gorm:"column:is_approved;index;not null" json:"isApproved"`
	Replies    []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Comment) TableName() string {
	return "blog_comments"
}
