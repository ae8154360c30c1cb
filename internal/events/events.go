package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderCreated            = "order.created"
	OrderPaid               = "order.paid"
	OrderCancelled          = "order.cancelled"
	OrderStatusChanged      = "order.status_changed"
	ChatConversationStarted = "chat.conversation_started"
)

type OrderEvent struct {
	OrderID        uint64          `json:"orderId"`
	OrderNumber    string          `json:"orderNumber"`
	UserID         uint64          `json:"userId"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PaymentMethod  string          `json:"paymentMethod"`
	PaymentStatus  string          `json:"paymentStatus"`
	OrderStatus    string          `json:"orderStatus"`
	PreviousStatus string          `json:"previousStatus,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

type ConversationEvent struct {
	ConversationID string    `json:"conversationId"`
	Subject        string    `json:"subject"`
	Anonymous      bool      `json:"anonymous"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Publisher delivers domain events. Implementations are best effort from the
// caller's point of view: an error is logged, never surfaced to the client.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, event any) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
