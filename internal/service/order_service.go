package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/juhi-kothari/Pranam-app/internal/config"
	"github.com/juhi-kothari/Pranam-app/internal/events"
	"github.com/juhi-kothari/Pranam-app/internal/logging"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/payment"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"github.com/juhi-kothari/Pranam-app/internal/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/juhi-kothari/Pranam-app/internal/service")

const (
	maxNotesLen  = 500
	maxStreetLen = 200
	maxLineQty   = 100
)

var (
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
	phonePattern   = regexp.MustCompile(`^[6-9]\d{9}$`)
)

type OrderLineInput struct {
	PublicationID uint64 `json:"publicationId"`
	Quantity      int    `json:"quantity"`
}

type CreateOrderInput struct {
	Items           []OrderLineInput      `json:"items"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   model.PaymentMethod   `json:"paymentMethod"`
	Notes           string                `json:"notes"`
}

// CheckoutResult is what the storefront needs to open the gateway checkout.
type CheckoutResult struct {
	Order           *model.Order
	RazorpayOrderID string
	RazorpayKeyID   string
	Amount          int64
	Currency        string
}

type VerifyPaymentInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
	OrderID        uint64
}

type UpdateStatusInput struct {
	Status         model.OrderStatus
	Notes          string
	TrackingNumber string
}

type WebhookOutcome string

const (
	WebhookProcessed WebhookOutcome = "processed"
	WebhookDuplicate WebhookOutcome = "duplicate"
	WebhookIgnored   WebhookOutcome = "ignored"
)

type OrderStats struct {
	TotalOrders  int64                       `json:"totalOrders"`
	ByStatus     map[model.OrderStatus]int64 `json:"byStatus"`
	TotalRevenue decimal.Decimal             `json:"totalRevenue"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (*CheckoutResult, error)
	VerifyPayment(ctx context.Context, actor Actor, in VerifyPaymentInput) (*model.Order, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) (WebhookOutcome, error)
	CancelOrder(ctx context.Context, actor Actor, orderID uint64, reason string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint64, in UpdateStatusInput) (*model.Order, error)
	RefundOrder(ctx context.Context, orderID uint64) (*model.Order, error)
	GetOrder(ctx context.Context, actor Actor, orderID uint64) (*model.Order, error)
	ListMyOrders(ctx context.Context, actor Actor, page, limit int) (*Page[model.Order], error)
	ListOrders(ctx context.Context, status model.OrderStatus, page, limit int) (*Page[model.Order], error)
	Stats(ctx context.Context) (*OrderStats, error)
}

type orderService struct {
	store   repository.Store
	gateway payment.Gateway
	secrets config.Payment
	pub     events.Publisher
	metrics *telemetry.ShopMetrics
	log     *zap.Logger
	now     func() time.Time
}

func NewOrderService(store repository.Store, gateway payment.Gateway, secrets config.Payment, pub events.Publisher, metrics *telemetry.ShopMetrics, log *zap.Logger) OrderService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &orderService{
		store:   store,
		gateway: gateway,
		secrets: secrets,
		pub:     pub,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

func (s *orderService) logger(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, s.log)
}

func validateCheckout(in *CreateOrderInput) ([]OrderLineInput, error) {
	if len(in.Items) == 0 {
		return nil, validationf("at least one item is required")
	}
	// Merge duplicate lines, keeping first-seen order.
	var lines []OrderLineInput
	idx := make(map[uint64]int, len(in.Items))
	for _, it := range in.Items {
		if it.PublicationID == 0 {
			return nil, validationf("publicationId is required")
		}
		if it.Quantity < 1 {
			return nil, validationf("quantity must be at least 1")
		}
		if i, ok := idx[it.PublicationID]; ok {
			lines[i].Quantity += it.Quantity
			continue
		}
		idx[it.PublicationID] = len(lines)
		lines = append(lines, it)
	}
	for _, l := range lines {
		if l.Quantity > maxLineQty {
			return nil, validationf("quantity for publication %d exceeds %d", l.PublicationID, maxLineQty)
		}
	}

	if in.PaymentMethod == "" {
		in.PaymentMethod = model.PaymentMethodOnline
	}
	if !in.PaymentMethod.Valid() {
		return nil, validationf("paymentMethod must be cod or online")
	}
	if utf8.RuneCountInString(in.Notes) > maxNotesLen {
		return nil, validationf("notes must be at most %d characters", maxNotesLen)
	}

	a := &in.ShippingAddress
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Pincode = strings.TrimSpace(a.Pincode)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Country = strings.TrimSpace(a.Country)
	switch {
	case a.Street == "":
		return nil, validationf("street address is required")
	case utf8.RuneCountInString(a.Street) > maxStreetLen:
		return nil, validationf("street address must be at most %d characters", maxStreetLen)
	case a.City == "":
		return nil, validationf("city is required")
	case a.State == "":
		return nil, validationf("state is required")
	case !pincodePattern.MatchString(a.Pincode):
		return nil, validationf("pincode must be 6 digits")
	case !phonePattern.MatchString(a.Phone):
		return nil, validationf("phone must be a valid 10-digit mobile number")
	}
	if a.Country == "" {
		a.Country = "India"
	}
	return lines, nil
}

func (s *orderService) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (*CheckoutResult, error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	lines, err := validateCheckout(&in)
	if err != nil {
		return nil, err
	}

	var order *model.Order
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		pubs := tx.Publications()
		items := make([]model.OrderItem, 0, len(lines))
		total := decimal.Zero
		totalItems := 0
		for _, l := range lines {
			p, err := pubs.FindByID(ctx, l.PublicationID)
			if err != nil {
				return mapRepoErr(err, fmt.Sprintf("publication %d", l.PublicationID))
			}
			if !p.IsActive {
				return fmt.Errorf("%w: %q is not available", ErrUnavailable, p.Title)
			}
			if p.Stock < l.Quantity {
				return fmt.Errorf("%w: only %d of %q left", ErrInsufficientStock, p.Stock, p.Title)
			}
			it := model.OrderItem{
				PublicationID: p.ID,
				Title:         p.Title,
				Author:        p.Author,
				Price:         p.Price,
				Image:         p.ImageURL,
				Quantity:      l.Quantity,
			}
			total = total.Add(it.LineTotal())
			totalItems += l.Quantity
			items = append(items, it)
		}

		order = &model.Order{
			OrderNumber:     newOrderNumber(s.now()),
			UserID:          actor.UserID,
			Items:           items,
			TotalAmount:     total,
			TotalItems:      totalItems,
			ShippingAddress: datatypes.NewJSONType(in.ShippingAddress),
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   model.PaymentStatusPending,
			OrderStatus:     model.OrderStatusPending,
			Notes:           in.Notes,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		if order.PaymentMethod == model.PaymentMethodCOD {
			if err := takeStock(ctx, tx, order); err != nil {
				return err
			}
			if err := tx.Orders().Update(ctx, order.ID, map[string]interface{}{"stock_committed": true}); err != nil {
				return err
			}
			order.StockCommitted = true
		}

		return tx.Carts().ClearByUser(ctx, actor.UserID)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.number", order.OrderNumber),
		attribute.String("order.payment_method", string(order.PaymentMethod)),
	)

	res := &CheckoutResult{Order: order}
	if order.PaymentMethod == model.PaymentMethodOnline {
		res.Amount = payment.MinorUnits(order.TotalAmount)
		res.Currency = s.gateway.Currency()
		res.RazorpayKeyID = s.gateway.KeyID()
		gwOrder, err := s.gateway.CreateOrder(ctx, payment.CreateOrderRequest{
			Amount:   res.Amount,
			Currency: res.Currency,
			Receipt:  order.OrderNumber,
			Notes:    map[string]string{"orderId": strconv.FormatUint(order.ID, 10)},
		})
		if err != nil {
			s.logger(ctx).Error("gateway order creation failed",
				zap.String("order_number", order.OrderNumber), zap.Error(err))
			if uerr := s.store.Orders().Update(ctx, order.ID, map[string]interface{}{"payment_status": model.PaymentStatusFailed}); uerr != nil {
				s.logger(ctx).Error("mark payment failed", zap.Uint64("order_id", order.ID), zap.Error(uerr))
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("%w: %v", ErrGateway, err)
		}
		if err := s.store.Orders().Update(ctx, order.ID, map[string]interface{}{"razorpay_order_id": gwOrder.ID}); err != nil {
			return nil, err
		}
		order.RazorpayOrderID = gwOrder.ID
		res.RazorpayOrderID = gwOrder.ID
	}

	s.metrics.OrderCreated(ctx, string(order.PaymentMethod))
	s.logger(ctx).Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.Uint64("user_id", order.UserID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.String("payment_method", string(order.PaymentMethod)))
	s.publish(ctx, events.OrderCreated, order, "", "")
	return res, nil
}

// takeStock decrements every line of o. Any shortfall aborts the caller's
// transaction.
func takeStock(ctx context.Context, tx repository.Store, o *model.Order) error {
	for _, it := range o.Items {
		if err := tx.Publications().DecrementStock(ctx, it.PublicationID, it.Quantity); err != nil {
			return mapRepoErr(err, fmt.Sprintf("%q", it.Title))
		}
	}
	return nil
}

func releaseStock(ctx context.Context, tx repository.Store, o *model.Order) error {
	for _, it := range o.Items {
		if err := tx.Publications().IncrementStock(ctx, it.PublicationID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// paysFor reports whether a gateway order id settles o. Only online orders
// that were registered with the gateway can be paid.
func paysFor(o *model.Order, gatewayOrderID string) bool {
	return o.PaymentMethod == model.PaymentMethodOnline &&
		o.RazorpayOrderID != "" &&
		o.RazorpayOrderID == gatewayOrderID
}

// confirmPayment marks o paid and confirmed, taking stock if it has not been
// taken yet. It reports false when o was already paid. Refunded orders stay
// refunded.
func (s *orderService) confirmPayment(ctx context.Context, tx repository.Store, o *model.Order, paymentID, signature string) (bool, error) {
	switch o.PaymentStatus {
	case model.PaymentStatusPaid:
		return false, nil
	case model.PaymentStatusRefunded:
		return false, validationf("order %s has been refunded", o.OrderNumber)
	}
	if o.OrderStatus == model.OrderStatusCancelled {
		return false, validationf("order %s is cancelled", o.OrderNumber)
	}
	if !o.StockCommitted {
		if err := takeStock(ctx, tx, o); err != nil {
			return false, err
		}
	}

	fields := map[string]interface{}{
		"payment_status":      model.PaymentStatusPaid,
		"razorpay_payment_id": paymentID,
		"stock_committed":     true,
	}
	if signature != "" {
		fields["razorpay_signature"] = signature
		o.RazorpaySignature = signature
	}
	if o.OrderStatus == model.OrderStatusPending {
		fields["order_status"] = model.OrderStatusConfirmed
		o.OrderStatus = model.OrderStatusConfirmed
	}
	if err := tx.Orders().Update(ctx, o.ID, fields); err != nil {
		return false, err
	}
	o.PaymentStatus = model.PaymentStatusPaid
	o.RazorpayPaymentID = paymentID
	o.StockCommitted = true
	return true, nil
}

func (s *orderService) VerifyPayment(ctx context.Context, actor Actor, in VerifyPaymentInput) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.VerifyPayment")
	defer span.End()

	if in.GatewayOrderID == "" || in.PaymentID == "" || in.Signature == "" || in.OrderID == 0 {
		return nil, validationf("razorpay_order_id, razorpay_payment_id, razorpay_signature and order_id are required")
	}
	if s.secrets.KeySecret == "" || !payment.VerifyPaymentSignature(s.secrets.KeySecret, in.GatewayOrderID, in.PaymentID, in.Signature) {
		s.metrics.PaymentVerified(ctx, "invalid_signature")
		s.logger(ctx).Warn("payment signature mismatch",
			zap.Uint64("order_id", in.OrderID), zap.String("razorpay_order_id", in.GatewayOrderID))
		return nil, ErrInvalidSignature
	}

	var (
		order   *model.Order
		changed bool
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByIDForUpdate(ctx, in.OrderID)
		if err != nil {
			return mapRepoErr(err, "order")
		}
		if !actor.canAccess(o.UserID) {
			return ErrForbidden
		}
		if !paysFor(o, in.GatewayOrderID) {
			return validationf("payment does not belong to order %s", o.OrderNumber)
		}
		changed, err = s.confirmPayment(ctx, tx, o, in.PaymentID, in.Signature)
		order = o
		return err
	})
	if err != nil {
		s.metrics.PaymentVerified(ctx, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if changed {
		s.metrics.PaymentVerified(ctx, "paid")
		s.logger(ctx).Info("payment verified",
			zap.String("order_number", order.OrderNumber),
			zap.String("razorpay_payment_id", in.PaymentID))
		s.publish(ctx, events.OrderPaid, order, string(model.OrderStatusPending), "")
	} else {
		s.metrics.PaymentVerified(ctx, "duplicate")
	}
	return order, nil
}

func (s *orderService) HandleWebhook(ctx context.Context, body []byte, signature string) (WebhookOutcome, error) {
	ctx, span := tracer.Start(ctx, "OrderService.HandleWebhook")
	defer span.End()

	if s.secrets.WebhookSecret == "" || !payment.VerifyWebhookSignature(s.secrets.WebhookSecret, body, signature) {
		s.metrics.PaymentVerified(ctx, "invalid_signature")
		return "", ErrInvalidSignature
	}
	ev, err := payment.ParseWebhook(body)
	if err != nil {
		return "", validationf("malformed webhook body")
	}
	span.SetAttributes(attribute.String("webhook.event", ev.Event))

	entity := ev.Payload.Payment.Entity
	switch ev.Event {
	case payment.EventPaymentCaptured, payment.EventPaymentFailed:
	default:
		s.logger(ctx).Info("webhook ignored", zap.String("event", ev.Event))
		return WebhookIgnored, nil
	}

	var (
		order   *model.Order
		outcome = WebhookIgnored
	)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := s.findWebhookOrder(ctx, tx, entity)
		if err != nil {
			return err
		}
		if o == nil {
			return nil
		}
		order = o
		if !paysFor(o, entity.OrderID) {
			return validationf("payment does not belong to order %s", o.OrderNumber)
		}

		if ev.Event == payment.EventPaymentFailed {
			if o.PaymentStatus != model.PaymentStatusPending {
				return nil
			}
			outcome = WebhookProcessed
			o.PaymentStatus = model.PaymentStatusFailed
			return tx.Orders().Update(ctx, o.ID, map[string]interface{}{
				"payment_status":      model.PaymentStatusFailed,
				"razorpay_payment_id": entity.ID,
			})
		}

		changed, err := s.confirmPayment(ctx, tx, o, entity.ID, "")
		if err != nil {
			return err
		}
		outcome = WebhookDuplicate
		if changed {
			outcome = WebhookProcessed
		}
		return nil
	})
	if errors.Is(err, ErrValidation) {
		s.logger(ctx).Warn("webhook not applicable", zap.String("event", ev.Event), zap.Error(err))
		return WebhookIgnored, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger(ctx).Error("webhook processing failed", zap.String("event", ev.Event), zap.Error(err))
		return "", err
	}
	if order == nil {
		s.logger(ctx).Warn("webhook references unknown order",
			zap.String("event", ev.Event),
			zap.String("razorpay_order_id", entity.OrderID),
			zap.String("notes_order_id", entity.InternalOrderID()))
		return WebhookIgnored, nil
	}

	s.logger(ctx).Info("webhook handled",
		zap.String("event", ev.Event),
		zap.String("order_number", order.OrderNumber),
		zap.String("outcome", string(outcome)))
	if outcome == WebhookProcessed && ev.Event == payment.EventPaymentCaptured {
		s.metrics.PaymentVerified(ctx, "paid")
		s.publish(ctx, events.OrderPaid, order, string(model.OrderStatusPending), "")
	}
	return outcome, nil
}

// findWebhookOrder resolves the order by notes.orderId, falling back to the
// gateway order id. It returns nil, nil when neither matches.
func (s *orderService) findWebhookOrder(ctx context.Context, tx repository.Store, entity payment.PaymentEntity) (*model.Order, error) {
	var id uint64
	if raw := entity.InternalOrderID(); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			id = v
		}
	}
	if id == 0 && entity.OrderID != "" {
		o, err := tx.Orders().FindByGatewayOrderID(ctx, entity.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		id = o.ID
	}
	if id == 0 {
		return nil, nil
	}
	o, err := tx.Orders().FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

func (s *orderService) CancelOrder(ctx context.Context, actor Actor, orderID uint64, reason string) (*model.Order, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > maxNotesLen {
		return nil, validationf("reason must be at most %d characters", maxNotesLen)
	}

	var order *model.Order
	var previous model.OrderStatus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return mapRepoErr(err, "order")
		}
		if !actor.canAccess(o.UserID) {
			return ErrForbidden
		}
		if !o.IsCancellable() {
			return fmt.Errorf("%w: order is %s", ErrNotCancellable, o.OrderStatus)
		}
		previous = o.OrderStatus
		if err := s.cancelLocked(ctx, tx, o, reason); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderCancelled(ctx)
	s.logger(ctx).Info("order cancelled",
		zap.String("order_number", order.OrderNumber),
		zap.Uint64("by_user", actor.UserID),
		zap.String("reason", reason))
	s.publish(ctx, events.OrderCancelled, order, string(previous), reason)
	return order, nil
}

// cancelLocked moves o to cancelled and puts committed stock back.
func (s *orderService) cancelLocked(ctx context.Context, tx repository.Store, o *model.Order, reason string) error {
	now := s.now()
	fields := map[string]interface{}{
		"order_status":    model.OrderStatusCancelled,
		"cancelled_at":    now,
		"stock_committed": false,
	}
	if reason != "" {
		fields["notes"] = reason
		o.Notes = reason
	}
	if o.StockCommitted {
		if err := releaseStock(ctx, tx, o); err != nil {
			return err
		}
	}
	if err := tx.Orders().Update(ctx, o.ID, fields); err != nil {
		return err
	}
	o.OrderStatus = model.OrderStatusCancelled
	o.CancelledAt = &now
	o.StockCommitted = false
	return nil
}

// UpdateOrderStatus lets an admin move an order to any status.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uint64, in UpdateStatusInput) (*model.Order, error) {
	if !in.Status.Valid() {
		return nil, validationf("status must be one of pending, confirmed, processing, shipped, delivered, cancelled")
	}
	in.Notes = strings.TrimSpace(in.Notes)
	in.TrackingNumber = strings.TrimSpace(in.TrackingNumber)
	if utf8.RuneCountInString(in.Notes) > maxNotesLen {
		return nil, validationf("notes must be at most %d characters", maxNotesLen)
	}
	target := in.Status
	if in.TrackingNumber != "" && target == model.OrderStatusProcessing {
		target = model.OrderStatusShipped
	}

	var order *model.Order
	var previous model.OrderStatus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return mapRepoErr(err, "order")
		}
		previous = o.OrderStatus
		order = o

		if target == model.OrderStatusCancelled {
			if o.OrderStatus == model.OrderStatusCancelled {
				return nil
			}
			return s.cancelLocked(ctx, tx, o, in.Notes)
		}

		now := s.now()
		fields := map[string]interface{}{"order_status": target}
		if in.Notes != "" {
			fields["notes"] = in.Notes
			o.Notes = in.Notes
		}
		if in.TrackingNumber != "" {
			fields["tracking_number"] = in.TrackingNumber
			o.TrackingNumber = in.TrackingNumber
		}
		if target == model.OrderStatusDelivered {
			fields["delivered_at"] = now
			o.DeliveredAt = &now
		}
		if err := tx.Orders().Update(ctx, o.ID, fields); err != nil {
			return err
		}
		o.OrderStatus = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != order.OrderStatus {
		s.logger(ctx).Info("order status changed",
			zap.String("order_number", order.OrderNumber),
			zap.String("from", string(previous)),
			zap.String("to", string(order.OrderStatus)))
		if order.OrderStatus == model.OrderStatusCancelled {
			s.metrics.OrderCancelled(ctx)
			s.publish(ctx, events.OrderCancelled, order, string(previous), in.Notes)
		} else {
			s.publish(ctx, events.OrderStatusChanged, order, string(previous), "")
		}
	}
	return order, nil
}

func (s *orderService) RefundOrder(ctx context.Context, orderID uint64) (*model.Order, error) {
	var order *model.Order
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return mapRepoErr(err, "order")
		}
		if o.PaymentStatus != model.PaymentStatusPaid {
			return validationf("only paid orders can be refunded (payment is %s)", o.PaymentStatus)
		}
		now := s.now()
		if err := tx.Orders().Update(ctx, o.ID, map[string]interface{}{
			"payment_status": model.PaymentStatusRefunded,
			"refunded_at":    now,
		}); err != nil {
			return err
		}
		o.PaymentStatus = model.PaymentStatusRefunded
		o.RefundedAt = &now
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger(ctx).Info("order refunded", zap.String("order_number", order.OrderNumber))
	s.publish(ctx, events.OrderStatusChanged, order, string(order.OrderStatus), "refunded")
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, actor Actor, orderID uint64) (*model.Order, error) {
	o, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, mapRepoErr(err, "order")
	}
	if !actor.canAccess(o.UserID) {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *orderService) ListMyOrders(ctx context.Context, actor Actor, page, limit int) (*Page[model.Order], error) {
	page, limit, offset := normalizePage(page, limit, 10, 50)
	list, total, err := s.store.Orders().ListByUser(ctx, actor.UserID, offset, limit)
	if err != nil {
		return nil, err
	}
	return newPage(list, page, limit, total), nil
}

func (s *orderService) ListOrders(ctx context.Context, status model.OrderStatus, page, limit int) (*Page[model.Order], error) {
	if status != "" && !status.Valid() {
		return nil, validationf("unknown order status %q", status)
	}
	page, limit, offset := normalizePage(page, limit, 20, 100)
	list, total, err := s.store.Orders().List(ctx, status, offset, limit)
	if err != nil {
		return nil, err
	}
	return newPage(list, page, limit, total), nil
}

func (s *orderService) Stats(ctx context.Context) (*OrderStats, error) {
	counts, err := s.store.Orders().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.store.Orders().Revenue(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return &OrderStats{TotalOrders: total, ByStatus: counts, TotalRevenue: revenue}, nil
}

func (s *orderService) publish(ctx context.Context, eventType string, o *model.Order, previous, reason string) {
	ev := events.OrderEvent{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		TotalAmount:    o.TotalAmount,
		PaymentMethod:  string(o.PaymentMethod),
		PaymentStatus:  string(o.PaymentStatus),
		OrderStatus:    string(o.OrderStatus),
		PreviousStatus: previous,
		Reason:         reason,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.pub.Publish(ctx, eventType, o.OrderNumber, ev); err != nil {
		s.logger(ctx).Warn("publish order event",
			zap.String("event", eventType),
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
	}
}
