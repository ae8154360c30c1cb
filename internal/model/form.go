package model

import "time"

type HealingStatus string

const (
	HealingPending    HealingStatus = "pending"
	HealingInProgress HealingStatus = "in_progress"
	HealingCompleted  HealingStatus = "completed"
	HealingCancelled  HealingStatus = "cancelled"
)

func (s HealingStatus) Valid() bool {
	switch s {
	case HealingPending, HealingInProgress, HealingCompleted, HealingCancelled:
		return true
	}
	return false
}

// HealingRequest is a visitor's request for healing prayers.
type HealingRequest struct {
	ID             uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string        `gorm:"size:100;not null" json:"name"`
	SeekingFor     string        `gorm:"column:seeking_for;size:200;not null" json:"seekingFor"`
	Description    string        `gorm:"type:text;not null" json:"description"`
	Photo          string        `gorm:"size:512" json:"photo,omitempty"`
	UserID         *uint64       `gorm:"column:user_id;index" json:"userId,omitempty"`
	Email          string        `gorm:"size:255" json:"email,omitempty"`
	Phone          string        `gorm:"size:32" json:"phone,omitempty"`
	Status         HealingStatus `gorm:"size:16;index;not null" json:"status"`
	AdminNotes     string        `gorm:"column:admin_notes;type:text" json:"adminNotes,omitempty"`
	IsConfidential bool          `gorm:"column:is_confidential;not null" json:"isConfidential"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (HealingRequest) TableName() string {
	return "healing_requests"
}

type QuestionStatus string

const (
	QuestionPending   QuestionStatus = "pending"
	QuestionAnswered  QuestionStatus = "answered"
	QuestionPublished QuestionStatus = "published"
)

func (s QuestionStatus) Valid() bool {
	return s == QuestionPending || s == QuestionAnswered || s == QuestionPublished
}

type Question struct {
	ID            uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	Email         string         `gorm:"size:255" json:"email,omitempty"`
	Category      string         `gorm:"size:64;not null" json:"category"`
	Question      string         `gorm:"column:question;type:text;not null" json:"question"`
	UserID        *uint64        `gorm:"column:user_id;index" json:"userId,omitempty"`
	Status        QuestionStatus `gorm:"size:16;index;not null" json:"status"`
	AdminResponse string         `gorm:"column:admin_response;type:text" json:"adminResponse,omitempty"`
	IsPublic      bool           `gorm:"column:is_public;not null" json:"isPublic"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Question) TableName() string {
	return "questions"
}
