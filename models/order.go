package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusConfirmed  OrderStatus = "Confirmed"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus accepts any casing and returns the canonical value.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusPaid      PaymentStatus = "Paid"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusCancelled PaymentStatus = "Cancelled"
)

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusCompleted,
	PaymentStatusFailed,
	PaymentStatusCancelled,
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, st := range PaymentStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

// Order owns its items. UserID is nil for guest checkout.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          *uuid.UUID      `gorm:"type:uuid;index" json:"userId"`
	CustomerName    string          `json:"customerName"`
	Phone           string          `json:"phone"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Subtotal        float64         `gorm:"not null" json:"subtotal"`
	Shipping        float64         `gorm:"not null;default:0" json:"shipping"`
	Total           float64         `gorm:"not null" json:"total"`
	PaymentMethod   string          `json:"paymentMethod"`
	TransactionID   string          `json:"transactionId"`
	PaymentStatus   PaymentStatus   `gorm:"not null;default:Pending;index" json:"paymentStatus"`
	RejectionReason string          `json:"rejectionReason"`
	Status          OrderStatus     `gorm:"not null;default:Pending;index" json:"status"`
	CreatedAt       time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderItem is a snapshot of the product at purchase time. ProductID is not a foreign key.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	Name      string    `gorm:"not null" json:"name"`
	Size      string    `json:"size"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     float64   `gorm:"not null" json:"price"`
	Image     string    `json:"image"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentStatusPending
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IsGuest reports whether the order was placed without an account.
func (o *Order) IsGuest() bool {
	return o.UserID == nil
}

// AllowedTransitions defines the admin status state machine. Cancelling a
// delivered order records a return.
var AllowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusConfirmed, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {OrderStatusCancelled},
	OrderStatusCancelled:  {},
}

// IsValidTransition checks if a status transition is allowed.
func IsValidTransition(from, to OrderStatus) bool {
	allowed, exists := AllowedTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
