package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/juhi-kothari/Pranam-app/internal/events"
	"github.com/juhi-kothari/Pranam-app/internal/logging"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"github.com/juhi-kothari/Pranam-app/internal/storage"
	"github.com/juhi-kothari/Pranam-app/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	defaultSubject    = "General Inquiry"
	maxSubjectLen     = 200
	maxMessageLen     = 1000
	MaxAttachmentSize = 10 << 20
)

type StartConversationInput struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type StartConversationResult struct {
	Conversation *model.ChatConversation
	Message      *model.ChatMessage
}

type PostMessageInput struct {
	Message     string            `json:"message"`
	MessageType model.MessageType `json:"messageType"`
}

type AttachmentInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Caption     string
}

type ChatService interface {
	StartConversation(ctx context.Context, p Participant, in StartConversationInput) (*StartConversationResult, error)
	PostMessage(ctx context.Context, p Participant, conversationID string, in PostMessageInput) (*model.ChatMessage, error)
	AttachFile(ctx context.Context, p Participant, conversationID string, in AttachmentInput) (*model.ChatMessage, error)
	ListMessages(ctx context.Context, p Participant, conversationID string, page, limit int) (*Page[model.ChatMessage], error)
	MarkRead(ctx context.Context, p Participant, conversationID string) error
	UpdateConversationStatus(ctx context.Context, conversationID string, status model.ConversationStatus) (*model.ChatConversation, error)
	ListConversations(ctx context.Context, status model.ConversationStatus, page, limit int) (*Page[model.ChatConversation], error)
}

type chatService struct {
	store    repository.Store
	uploader storage.Uploader
	pub      events.Publisher
	metrics  *telemetry.ShopMetrics
	log      *zap.Logger
	now      func() time.Time
}

// NewChatService accepts a nil uploader; attachments are then rejected with
// ErrStorageDisabled.
func NewChatService(store repository.Store, uploader storage.Uploader, pub events.Publisher, metrics *telemetry.ShopMetrics, log *zap.Logger) ChatService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &chatService{store: store, uploader: uploader, pub: pub, metrics: metrics, log: log, now: time.Now}
}

func (s *chatService) logger(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, s.log)
}

func cleanMessage(msg string) (string, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", validationf("message is required")
	}
	if utf8.RuneCountInString(msg) > maxMessageLen {
		return "", validationf("message must be at most %d characters", maxMessageLen)
	}
	return msg, nil
}

func (s *chatService) StartConversation(ctx context.Context, p Participant, in StartConversationInput) (*StartConversationResult, error) {
	msg, err := cleanMessage(in.Message)
	if err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		subject = defaultSubject
	}
	if utf8.RuneCountInString(subject) > maxSubjectLen {
		return nil, validationf("subject must be at most %d characters", maxSubjectLen)
	}

	// Conversations are opened by customers; admins only reply.
	senderType, senderID := side(p)
	if senderType == model.SenderAdmin {
		return nil, fmt.Errorf("%w: admins cannot open conversations", ErrForbidden)
	}
	now := s.now()
	conv := &model.ChatConversation{
		ConversationID: newConversationID(now),
		UserID:         senderID,
		Subject:        subject,
		Status:         model.ConversationActive,
		Priority:       model.PriorityMedium,
		Tags:           []string{},
		LastMessageAt:  now,
		LastMessageBy:  model.SenderUser,
		Unread:         model.UnreadCount{User: 0, Admin: 1},
	}
	first := &model.ChatMessage{
		ConversationID: conv.ConversationID,
		SenderType:     model.SenderUser,
		SenderID:       senderID,
		Message:        msg,
		MessageType:    model.MessageText,
	}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Chats().CreateConversation(ctx, conv); err != nil {
			return err
		}
		return tx.Chats().CreateMessage(ctx, first)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ChatMessage(ctx, string(model.SenderUser))
	s.logger(ctx).Info("chat conversation started",
		zap.String("conversation_id", conv.ConversationID),
		zap.Bool("anonymous", senderID == nil))
	if err := s.pub.Publish(ctx, events.ChatConversationStarted, conv.ConversationID, events.ConversationEvent{
		ConversationID: conv.ConversationID,
		Subject:        conv.Subject,
		Anonymous:      senderID == nil,
		OccurredAt:     now.UTC(),
	}); err != nil {
		s.logger(ctx).Warn("publish chat event", zap.String("conversation_id", conv.ConversationID), zap.Error(err))
	}
	return &StartConversationResult{Conversation: conv, Message: first}, nil
}

// loadFor fetches the conversation and checks that p may take part in it.
// Admins may join any conversation; a conversation opened by a signed-in user
// is closed to other users and to anonymous callers.
func (s *chatService) loadFor(ctx context.Context, p Participant, conversationID string) (*model.ChatConversation, error) {
	conv, err := s.store.Chats().FindConversation(ctx, conversationID)
	if err != nil {
		return nil, mapRepoErr(err, "conversation")
	}
	switch v := p.(type) {
	case Member:
		if v.Role != model.RoleAdmin && conv.UserID != nil && *conv.UserID != v.UserID {
			return nil, ErrForbidden
		}
	case Anonymous:
		if conv.UserID != nil {
			return nil, ErrForbidden
		}
	}
	return conv, nil
}

func (s *chatService) post(ctx context.Context, p Participant, conv *model.ChatConversation, m *model.ChatMessage) error {
	ctx, span := tracer.Start(ctx, "ChatService.post")
	defer span.End()

	sender, senderID := side(p)
	m.ConversationID = conv.ConversationID
	m.SenderType = sender
	m.SenderID = senderID
	span.SetAttributes(
		attribute.String("chat.conversation_id", conv.ConversationID),
		attribute.String("chat.sender", string(sender)),
	)

	var claim *uint64
	if sender == model.SenderAdmin && conv.AdminID == nil {
		claim = senderID
	}
	now := s.now()
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Chats().CreateMessage(ctx, m); err != nil {
			return err
		}
		return tx.Chats().RecordMessage(ctx, conv.ConversationID, sender, now, claim)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.metrics.ChatMessage(ctx, string(sender))
	return nil
}

func (s *chatService) PostMessage(ctx context.Context, p Participant, conversationID string, in PostMessageInput) (*model.ChatMessage, error) {
	msg, err := cleanMessage(in.Message)
	if err != nil {
		return nil, err
	}
	if in.MessageType == "" {
		in.MessageType = model.MessageText
	}
	if !in.MessageType.Valid() {
		return nil, validationf("messageType must be text, image or file")
	}
	conv, err := s.loadFor(ctx, p, conversationID)
	if err != nil {
		return nil, err
	}
	m := &model.ChatMessage{Message: msg, MessageType: in.MessageType}
	if err := s.post(ctx, p, conv, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *chatService) AttachFile(ctx context.Context, p Participant, conversationID string, in AttachmentInput) (*model.ChatMessage, error) {
	if s.uploader == nil {
		return nil, ErrStorageDisabled
	}
	if in.Body == nil || in.Filename == "" {
		return nil, validationf("file is required")
	}
	if in.Size > MaxAttachmentSize {
		return nil, validationf("file must be at most %d MB", MaxAttachmentSize>>20)
	}
	caption := strings.TrimSpace(in.Caption)
	if caption == "" {
		caption = in.Filename
	}
	caption, err := cleanMessage(caption)
	if err != nil {
		return nil, err
	}
	conv, err := s.loadFor(ctx, p, conversationID)
	if err != nil {
		return nil, err
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, size, err := s.uploader.Upload(ctx,
		storage.ObjectPath("chat", conv.ConversationID, in.Filename),
		contentType,
		io.LimitReader(in.Body, MaxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("upload attachment: %w", err)
	}
	if size > MaxAttachmentSize {
		return nil, validationf("file must be at most %d MB", MaxAttachmentSize>>20)
	}

	msgType := model.MessageFile
	if strings.HasPrefix(contentType, "image/") {
		msgType = model.MessageImage
	}
	m := &model.ChatMessage{
		Message:     caption,
		MessageType: msgType,
		Attachments: []model.Attachment{{
			URL:      url,
			Filename: in.Filename,
			FileType: contentType,
			FileSize: size,
		}},
	}
	if err := s.post(ctx, p, conv, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessages returns a page of the newest messages in chronological order.
func (s *chatService) ListMessages(ctx context.Context, p Participant, conversationID string, page, limit int) (*Page[model.ChatMessage], error) {
	if _, err := s.loadFor(ctx, p, conversationID); err != nil {
		return nil, err
	}
	page, limit, offset := normalizePage(page, limit, 50, 100)
	msgs, total, err := s.store.Chats().ListMessages(ctx, conversationID, offset, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return newPage(msgs, page, limit, total), nil
}

func (s *chatService) MarkRead(ctx context.Context, p Participant, conversationID string) error {
	conv, err := s.loadFor(ctx, p, conversationID)
	if err != nil {
		return err
	}
	reader, _ := side(p)
	return s.store.Chats().MarkRead(ctx, conv.ConversationID, reader, s.now())
}

func (s *chatService) UpdateConversationStatus(ctx context.Context, conversationID string, status model.ConversationStatus) (*model.ChatConversation, error) {
	if !status.Valid() {
		return nil, validationf("status must be one of active, closed, pending")
	}
	conv, err := s.store.Chats().FindConversation(ctx, conversationID)
	if err != nil {
		return nil, mapRepoErr(err, "conversation")
	}
	if err := s.store.Chats().UpdateStatus(ctx, conversationID, status); err != nil {
		return nil, err
	}
	conv.Status = status
	return conv, nil
}

func (s *chatService) ListConversations(ctx context.Context, status model.ConversationStatus, page, limit int) (*Page[model.ChatConversation], error) {
	if status != "" && !status.Valid() {
		return nil, validationf("status must be one of active, closed, pending")
	}
	page, limit, offset := normalizePage(page, limit, 20, 100)
	list, total, err := s.store.Chats().ListConversations(ctx, status, offset, limit)
	if err != nil {
		return nil, err
	}
	return newPage(list, page, limit, total), nil
}
