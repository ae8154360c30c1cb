package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodOnline
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

type Order struct {
	ID              uint64                              `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string                              `gorm:"column:order_number;size:32;uniqueIndex;not null" json:"orderNumber"`
	UserID          uint64                              `gorm:"column:user_id;index;not null" json:"userId"`
	Items           []OrderItem                         `gorm:"foreignKey:OrderID" json:"items"`
	TotalAmount     decimal.Decimal                     `gorm:"column:total_amount;type:decimal(10,2);not null" json:"totalAmount"`
	TotalItems      int                                 `gorm:"column:total_items;not null" json:"totalItems"`
	ShippingAddress datatypes.JSONType[ShippingAddress] `gorm:"column:shipping_address" json:"shippingAddress"`
	PaymentMethod   PaymentMethod                       `gorm:"column:payment_method;size:16;not null" json:"paymentMethod"`
	PaymentStatus   PaymentStatus                       `gorm:"column:payment_status;size:16;index;not null" json:"paymentStatus"`
	OrderStatus     OrderStatus                         `gorm:"column:order_status;size:16;index;not null" json:"orderStatus"`

	RazorpayOrderID   string `gorm:"column:razorpay_order_id;size:64;index" json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string `gorm:"column:razorpay_payment_id;size:64" json:"razorpayPaymentId,omitempty"`
	RazorpaySignature string `gorm:"column:razorpay_signature;size:128" json:"-"`

	TrackingNumber string `gorm:"column:tracking_number;size:64" json:"trackingNumber,omitempty"`
	Notes          string `gorm:"column:notes;size:500" json:"notes,omitempty"`
	// StockCommitted is set once the order's quantities have been taken out
	// of publication stock and cleared when they are put back.
	StockCommitted bool `gorm:"column:stock_committed;not null" json:"-"`

	DeliveredAt *time.Time `gorm:"column:delivered_at" json:"deliveredAt,omitempty"`
	CancelledAt *time.Time `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
	RefundedAt  *time.Time `gorm:"column:refunded_at" json:"refundedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) IsCancellable() bool {
	return o.OrderStatus == OrderStatusPending || o.OrderStatus == OrderStatusConfirmed
}

// OrderItem snapshots the publication at checkout time.
type OrderItem struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       uint64          `gorm:"column:order_id;index;not null" json:"-"`
	PublicationID uint64          `gorm:"column:publication_id;index;not null" json:"publicationId"`
	Title         string          `gorm:"column:title;size:200;not null" json:"title"`
	Author        string          `gorm:"column:author;size:120" json:"author"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	Image         string          `gorm:"column:image;size:512" json:"image,omitempty"`
	Quantity      int             `gorm:"column:quantity;not null" json:"quantity"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
