package repository

import (
	"context"
	"time"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"gorm.io/gorm"
)

type ChatRepository interface {
	CreateConversation(ctx context.Context, c *model.ChatConversation) error
	FindConversation(ctx context.Context, conversationID string) (*model.ChatConversation, error)
	CreateMessage(ctx context.Context, m *model.ChatMessage) error
	// RecordMessage bumps the conversation's last-message fields and the
	// counterpart's unread counter. A non-nil adminID claims an unassigned
	// conversation.
	RecordMessage(ctx context.Context, conversationID string, sender model.SenderType, at time.Time, adminID *uint64) error
	ListMessages(ctx context.Context, conversationID string, offset, limit int) ([]model.ChatMessage, int64, error)
	MarkRead(ctx context.Context, conversationID string, reader model.SenderType, at time.Time) error
	UpdateStatus(ctx context.Context, conversationID string, status model.ConversationStatus) error
	ListConversations(ctx context.Context, status model.ConversationStatus, offset, limit int) ([]model.ChatConversation, int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateConversation(ctx context.Context, c *model.ChatConversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *chatRepository) FindConversation(ctx context.Context, conversationID string) (*model.ChatConversation, error) {
	var c model.ChatConversation
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, m *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func unreadColumn(side model.SenderType) string {
	if side == model.SenderAdmin {
		return "unread_admin"
	}
	return "unread_user"
}

func counterpart(side model.SenderType) model.SenderType {
	if side == model.SenderAdmin {
		return model.SenderUser
	}
	return model.SenderAdmin
}

func (r *chatRepository) RecordMessage(ctx context.Context, conversationID string, sender model.SenderType, at time.Time, adminID *uint64) error {
	col := unreadColumn(counterpart(sender))
	fields := map[string]interface{}{
		"last_message_at": at,
		"last_message_by": sender,
		col:               gorm.Expr(col + " + 1"),
	}
	if adminID != nil {
		fields["admin_id"] = gorm.Expr("COALESCE(admin_id, ?)", *adminID)
	}
	return r.db.WithContext(ctx).
		Model(&model.ChatConversation{}).
		Where("conversation_id = ?", conversationID).
		Updates(fields).Error
}

func (r *chatRepository) ListMessages(ctx context.Context, conversationID string, offset, limit int) ([]model.ChatMessage, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ChatMessage{}).Where("conversation_id = ?", conversationID)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var msgs []model.ChatMessage
	if err := q.Session(&gorm.Session{}).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *chatRepository) MarkRead(ctx context.Context, conversationID string, reader model.SenderType, at time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&model.ChatConversation{}).
		Where("conversation_id = ?", conversationID).
		Update(unreadColumn(reader), 0).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Where("conversation_id = ? AND sender_type = ? AND is_read = ?", conversationID, counterpart(reader), false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

func (r *chatRepository) UpdateStatus(ctx context.Context, conversationID string, status model.ConversationStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatConversation{}).
		Where("conversation_id = ?", conversationID).
		Update("status", status).Error
}

func (r *chatRepository) ListConversations(ctx context.Context, status model.ConversationStatus, offset, limit int) ([]model.ChatConversation, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ChatConversation{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.ChatConversation
	if err := q.Session(&gorm.Session{}).
		Order("last_message_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
