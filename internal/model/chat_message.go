package model

import (
	"time"

	"gorm.io/datatypes"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
)

func (t MessageType) Valid() bool {
	return t == MessageText || t == MessageImage || t == MessageFile
}

type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

type ChatMessage struct {
	ID             uint64                          `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string                          `gorm:"column:conversation_id;size:64;index;not null" json:"conversationId"`
	SenderType     SenderType                      `gorm:"column:sender_type;size:16;not null" json:"senderType"`
	SenderID       *uint64                         `gorm:"column:sender_id;index" json:"senderId,omitempty"`
	Message        string                          `gorm:"column:message;size:1000;not null" json:"message"`
	MessageType    MessageType                     `gorm:"column:message_type;size:16;not null" json:"messageType"`
	Attachments    datatypes.JSONSlice[Attachment] `gorm:"column:attachments" json:"attachments,omitempty"`
	IsRead         bool                            `gorm:"column:is_read;not null" json:"isRead"`
	ReadAt         *time.Time                      `gorm:"column:read_at" json:"readAt,omitempty"`
	IsEdited       bool                            `gorm:"column:is_edited;not null" json:"isEdited"`
	EditedAt       *time.Time                      `gorm:"column:edited_at" json:"editedAt,omitempty"`
	CreatedAt      time.Time                       `gorm:"autoCreateTime" json:"createdAt"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
