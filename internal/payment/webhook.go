package payment

import (
	"encoding/json"
	"fmt"
)

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type PaymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Amount  int64  `json:"amount"`
	// Razorpay sends notes as an object, or as [] when empty.
	Notes json.RawMessage `json:"notes"`
}

// InternalOrderID returns notes.orderId as a string, accepting either a
// JSON string or number.
func (p PaymentEntity) InternalOrderID() string {
	var notes map[string]interface{}
	if len(p.Notes) == 0 || json.Unmarshal(p.Notes, &notes) != nil {
		return ""
	}
	switch v := notes["orderId"].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}

func ParseWebhook(body []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
