package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhookNotes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string id", `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","notes":{"orderId":"17"}}}}}`, "17"},
		{"numeric id", `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","notes":{"orderId":17}}}}}`, "17"},
		{"empty notes array", `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1","notes":[]}}}}`, ""},
		{"no notes", `{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_1"}}}}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseWebhook([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, "pay_1", ev.Payload.Payment.Entity.ID)
			assert.Equal(t, tt.want, ev.Payload.Payment.Entity.InternalOrderID())
		})
	}
}

func TestParseWebhookInvalid(t *testing.T) {
	_, err := ParseWebhook([]byte(`not json`))
	assert.Error(t, err)
}
