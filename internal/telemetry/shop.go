package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/juhi-kothari/Pranam-app"

// ShopMetrics are the business counters exported alongside runtime metrics.
// A nil *ShopMetrics records nothing.
type ShopMetrics struct {
	ordersCreated    metric.Int64Counter
	paymentsVerified metric.Int64Counter
	ordersCancelled  metric.Int64Counter
	chatMessages     metric.Int64Counter
}

func NewShopMetrics() (*ShopMetrics, error) {
	meter := otel.Meter(meterName)

	ordersCreated, err := meter.Int64Counter("shop.orders.created",
		metric.WithDescription("Orders placed"),
		metric.WithUnit("{order}"))
	if err != nil {
		return nil, err
	}
	paymentsVerified, err := meter.Int64Counter("shop.payments.verified",
		metric.WithDescription("Payment confirmations by result"),
		metric.WithUnit("{payment}"))
	if err != nil {
		return nil, err
	}
	ordersCancelled, err := meter.Int64Counter("shop.orders.cancelled",
		metric.WithDescription("Orders cancelled"),
		metric.WithUnit("{order}"))
	if err != nil {
		return nil, err
	}
	chatMessages, err := meter.Int64Counter("shop.chat.messages",
		metric.WithDescription("Chat messages posted by sender type"),
		metric.WithUnit("{message}"))
	if err != nil {
		return nil, err
	}

	return &ShopMetrics{
		ordersCreated:    ordersCreated,
		paymentsVerified: paymentsVerified,
		ordersCancelled:  ordersCancelled,
		chatMessages:     chatMessages,
	}, nil
}

func (m *ShopMetrics) OrderCreated(ctx context.Context, paymentMethod string) {
	if m == nil {
		return
	}
	m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", paymentMethod)))
}

func (m *ShopMetrics) PaymentVerified(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.paymentsVerified.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *ShopMetrics) OrderCancelled(ctx context.Context) {
	if m == nil {
		return
	}
	m.ordersCancelled.Add(ctx, 1)
}

func (m *ShopMetrics) ChatMessage(ctx context.Context, sender string) {
	if m == nil {
		return
	}
	m.chatMessages.Add(ctx, 1, metric.WithAttributes(attribute.String("sender", sender)))
}
