package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/juhi-kothari/Pranam-app/internal/middleware"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const maxWebhookBody = 1 << 20

type OrderHandler struct {
	svc service.OrderService
}

func NewOrderHandler(svc service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type OrderSummary struct {
	ID              uint64              `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	TotalItems      int                 `json:"totalItems"`
	PaymentMethod   model.PaymentMethod `json:"paymentMethod"`
	PaymentStatus   model.PaymentStatus `json:"paymentStatus"`
	OrderStatus     model.OrderStatus   `json:"orderStatus"`
	RazorpayOrderID string              `json:"razorpayOrderId,omitempty"`
	CreatedAt       string              `json:"createdAt"`
}

func toOrderSummary(o *model.Order) OrderSummary {
	return OrderSummary{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		TotalAmount:     o.TotalAmount,
		TotalItems:      o.TotalItems,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		OrderStatus:     o.OrderStatus,
		RazorpayOrderID: o.RazorpayOrderID,
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type CheckoutResponse struct {
	Order    OrderSummary `json:"order"`
	KeyID    string       `json:"razorpayKeyId,omitempty"`
	Amount   int64        `json:"amount,omitempty"`
	Currency string       `json:"currency,omitempty"`
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	actor := middleware.CurrentActor(c)
	var body service.CreateOrderInput
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	res, err := h.svc.CreateOrder(c.Request().Context(), *actor, body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Order created", CheckoutResponse{
		Order:    toOrderSummary(res.Order),
		KeyID:    res.RazorpayKeyID,
		Amount:   res.Amount,
		Currency: res.Currency,
	})
}

type verifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderID           uint64 `json:"order_id"`
}

func (h *OrderHandler) VerifyPayment(c echo.Context) error {
	actor := middleware.CurrentActor(c)
	var body verifyRequest
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	o, err := h.svc.VerifyPayment(c.Request().Context(), *actor, service.VerifyPaymentInput{
		GatewayOrderID: body.RazorpayOrderID,
		PaymentID:      body.RazorpayPaymentID,
		Signature:      body.RazorpaySignature,
		OrderID:        body.OrderID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Payment verified", map[string]any{"order": toOrderSummary(o)})
}

// Webhook needs the raw body: the signature covers the exact bytes sent.
func (h *OrderHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil {
		return errBadBody
	}
	if len(body) > maxWebhookBody {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "webhook body too large")
	}
	outcome, err := h.svc.HandleWebhook(c.Request().Context(), body, c.Request().Header.Get("X-Razorpay-Signature"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]any{"status": outcome})
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	actor := middleware.CurrentActor(c)
	page, err := h.svc.ListMyOrders(c.Request().Context(), *actor, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.svc.GetOrder(c.Request().Context(), *middleware.CurrentActor(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]any{"order": o})
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&body); err != nil {
			return errBadBody
		}
	}
	o, err := h.svc.CancelOrder(c.Request().Context(), *middleware.CurrentActor(c), id, body.Reason)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Order cancelled", map[string]any{"order": o})
}

func (h *OrderHandler) List(c echo.Context) error {
	page, err := h.svc.ListOrders(c.Request().Context(),
		model.OrderStatus(c.QueryParam("status")), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}

func (h *OrderHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", stats)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Status         model.OrderStatus `json:"status"`
		Notes          string            `json:"notes"`
		TrackingNumber string            `json:"trackingNumber"`
	}
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	o, err := h.svc.UpdateOrderStatus(c.Request().Context(), id, service.UpdateStatusInput{
		Status:         body.Status,
		Notes:          body.Notes,
		TrackingNumber: body.TrackingNumber,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, fmt.Sprintf("Order status updated to %s", o.OrderStatus), map[string]any{"order": o})
}

func (h *OrderHandler) Refund(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.svc.RefundOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Order refunded", map[string]any{"order": o})
}
