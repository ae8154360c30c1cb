package model

import (
	"time"

	"gorm.io/datatypes"
)

type SenderType string

const (
	SenderUser  SenderType = "user"
	SenderAdmin SenderType = "admin"
)

type ConversationStatus string

const (
	ConversationActive  ConversationStatus = "active"
	ConversationPending ConversationStatus = "pending"
	ConversationClosed  ConversationStatus = "closed"
)

func (s ConversationStatus) Valid() bool {
	switch s {
	case ConversationActive, ConversationPending, ConversationClosed:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// UnreadCount is stored inline as unread_user / unread_admin.
type UnreadCount struct {
	User  int `gorm:"column:user;not null;default:0" json:"user"`
	Admin int `gorm:"column:admin;not null;default:0" json:"admin"`
}

type ChatConversation struct {
	ID             uint64                      `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID string                      `gorm:"column:conversation_id;size:64;uniqueIndex;not null" json:"conversationId"`
	UserID         *uint64                     `gorm:"column:user_id;index" json:"userId,omitempty"`
	AdminID        *uint64                     `gorm:"column:admin_id;index" json:"adminId,omitempty"`
	Subject        string                      `gorm:"column:subject;size:200;not null" json:"subject"`
	Status         ConversationStatus          `gorm:"column:status;size:16;index;not null" json:"status"`
	Priority       Priority                    `gorm:"column:priority;size:16;not null" json:"priority"`
	Tags           datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Notes          string                      `gorm:"column:notes;type:text" json:"notes,omitempty"`
	LastMessageAt  time.Time                   `gorm:"column:last_message_at;index" json:"lastMessageAt"`
	LastMessageBy  SenderType                  `gorm:"column:last_message_by;size:16" json:"lastMessageBy"`
	Unread         UnreadCount                 `gorm:"embedded;embeddedPrefix:unread_" json:"unreadCount"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ChatConversation) TableName() string {
	return "chat_conversations"
}
