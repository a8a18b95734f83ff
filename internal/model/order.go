package model

import (
	"time"

	"github.com/shopspring/decimal"
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

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether an order may move from s to next.
// Re-applying the current status is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:  {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusFailed:   {PaymentStatusPending, PaymentStatusPaid},
	PaymentStatusPaid:     {PaymentStatusRefunded},
	PaymentStatusRefunded: {},
}

func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentClaimTTL bounds how long an in-flight payment blocks other writers.
// It outlasts the provider client timeouts, so only a crashed request leaves a claim this old.
const PaymentClaimTTL = 5 * time.Minute

// PaymentInFlight reports whether a payment claim taken before now is still live.
func (o *Order) PaymentInFlight(now time.Time) bool {
	return o.PaymentClaimedAt != nil && o.PaymentClaimedAt.After(now.Add(-PaymentClaimTTL))
}

const (
	PaymentMethodCard   = "card"
	PaymentMethodPaypal = "paypal"
)

type Order struct {
	ID            uint            `gorm:"primaryKey"`
	UserID        uint            `gorm:"index;not null"`
	OrderNumber   string          `gorm:"size:64;uniqueIndex;not null"`
	Status        OrderStatus     `gorm:"size:32;index;not null;default:pending"`
	PaymentMethod string          `gorm:"size:64;not null"`
	PaymentStatus PaymentStatus   `gorm:"size:32;not null;default:pending"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Tax           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	ShippingCost  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	// shipping address, merged from the request and the user profile
	FirstName  string  `gorm:"size:100;not null"`
	LastName   string  `gorm:"size:100;not null"`
	Email      string  `gorm:"size:255;not null"`
	Street     string  `gorm:"size:255;not null"`
	City       string  `gorm:"size:100;not null"`
	PostalCode string  `gorm:"size:20;not null"`
	Country    string  `gorm:"size:100;not null"`
	Phone      *string `gorm:"size:50"`
	Notes      *string `gorm:"type:text"`

	PaymentTransactionID *string `gorm:"size:64"`

	// id of the PayPal checkout order awaiting approval or capture
	PaypalOrderID *string `gorm:"size:64;uniqueIndex"`

	// set while a charge or capture is in flight with the provider
	PaymentClaimedAt *time.Time

	User  User        `gorm:"constraint:OnDelete:CASCADE"`
	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// OrderItem is a snapshot of a cart line taken at checkout.
// It never follows later catalog edits.
type OrderItem struct {
	ID            uint            `gorm:"primaryKey"`
	OrderID       uint            `gorm:"index;not null"`
	ProductID     uint            `gorm:"index;not null"`
	ProductName   string          `gorm:"size:255;not null"`
	ProductImage  *string         `gorm:"size:255"`
	Quantity      int             `gorm:"not null"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SelectedSize  string          `gorm:"size:32;not null"`
	SelectedColor *string         `gorm:"size:64"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

type IdempotencyKey struct {
	Key       string `gorm:"primaryKey;size:128"`
	UserID    uint   `gorm:"primaryKey"`
	OrderID   uint   `gorm:"not null"`
	CreatedAt time.Time
}
