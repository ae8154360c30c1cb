//go:build integration

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/juhi-kothari/Pranam-app/internal/auth"
	"github.com/juhi-kothari/Pranam-app/internal/config"
	"github.com/juhi-kothari/Pranam-app/internal/events"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutOnMySQLPublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	gdb := testutil.SetupMySQL(ctx, t)
	topic := "pranam." + events.OrderCreated
	brokers := testutil.SetupKafka(ctx, t, topic)
	publisher := events.NewKafkaPublisher(brokers, "pranam")
	defer func() { _ = publisher.Close() }()

	cfg := &config.Config{
		AppEnv:        "test",
		JWTSecret:     testJWTSecret,
		JWTTTL:        time.Hour,
		ChatRateLimit: 100,
		Payment:       config.Payment{KeySecret: testKeySecret, WebhookSecret: testWebhookSecret, Currency: "INR"},
	}
	s := &testServer{
		t:      t,
		srv:    New(Deps{Config: cfg, DB: gdb, Publisher: publisher}),
		db:     gdb,
		issuer: auth.NewIssuer(testJWTSecret, time.Hour),
	}

	user := testutil.SeedUser(t, gdb, "reader@example.com", model.RoleUser)
	pub := testutil.SeedPublication(t, gdb, "Bhakti Sutra Commentary", "199.50", 10)

	rec, env := s.do(http.MethodPost, "/api/v1/payments/create-order", s.tokenFor(user), map[string]any{
		"items":           []map[string]any{{"publicationId": pub.ID, "quantity": 3}},
		"shippingAddress": address(),
		"paymentMethod":   "cod",
	})
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)
	created := decode[struct {
		Order orderSummary `json:"order"`
	}](t, env.Data)
	assert.Equal(t, "598.5", created.Order.TotalAmount)
	assert.Equal(t, 7, testutil.Stock(t, gdb, pub.ID))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
		MaxWait:     500 * time.Millisecond,
	})
	defer func() { _ = reader.Close() }()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.Order.OrderNumber, string(msg.Key))

	var ev events.OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, created.Order.OrderNumber, ev.OrderNumber)
	assert.Equal(t, user.ID, ev.UserID)
	assert.Equal(t, "cod", ev.PaymentMethod)

	for _, h := range msg.Headers {
		if h.Key == "event-type" {
			assert.Equal(t, events.OrderCreated, string(h.Value))
		}
	}
}

func TestConcurrentCheckoutForLastCopy(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	gdb := testutil.SetupMySQL(ctx, t)
	cfg := &config.Config{
		AppEnv:        "test",
		JWTSecret:     testJWTSecret,
		JWTTTL:        time.Hour,
		ChatRateLimit: 100,
		Payment:       config.Payment{KeySecret: testKeySecret, Currency: "INR"},
	}
	s := &testServer{
		t:      t,
		srv:    New(Deps{Config: cfg, DB: gdb}),
		db:     gdb,
		issuer: auth.NewIssuer(testJWTSecret, time.Hour),
	}
	pub := testutil.SeedPublication(t, gdb, "Little Krishna Tales", "120", 1)

	const buyers = 5
	tokens := make([]string, buyers)
	for i := range tokens {
		tokens[i] = s.tokenFor(testutil.SeedUser(t, gdb, fmt.Sprintf("buyer%d@example.com", i), model.RoleUser))
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = map[int]int{}
	)
	body, err := json.Marshal(map[string]any{
		"items":           []map[string]any{{"publicationId": pub.ID, "quantity": 1}},
		"shippingAddress": address(),
		"paymentMethod":   "cod",
	})
	require.NoError(t, err)
	for _, tok := range tokens {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/create-order", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+tok)
			rec := httptest.NewRecorder()
			s.srv.ServeHTTP(rec, req)
			mu.Lock()
			codes[rec.Code]++
			mu.Unlock()
		}(tok)
	}
	wg.Wait()

	assert.Equal(t, 1, codes[http.StatusCreated], "%v", codes)
	assert.Equal(t, buyers-1, codes[http.StatusBadRequest], "%v", codes)
	assert.Equal(t, 0, testutil.Stock(t, gdb, pub.ID))
}
