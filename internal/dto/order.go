package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=card paypal cash_on_delivery"`
	FirstName     string           `json:"first_name"`
	LastName      string           `json:"last_name"`
	Email         string           `json:"email" validate:"omitempty,email"`
	Street        string           `json:"street"`
	City          string           `json:"city"`
	PostalCode    string           `json:"postal_code"`
	Country       string           `json:"country"`
	Phone         string           `json:"phone"`
	Tax           *decimal.Decimal `json:"tax"`
	ShippingCost  *decimal.Decimal `json:"shipping_cost"`
	Notes         string           `json:"notes"`

	// set from the Idempotency-Key header, never from the body
	IdempotencyKey string `json:"-"`
}

type UpdateOrderRequest struct {
	Status        *string `json:"status" validate:"omitempty,oneof=pending confirmed processing shipped delivered cancelled"`
	PaymentStatus *string `json:"payment_status" validate:"omitempty,oneof=pending paid failed refunded"`
}

type PayOrderRequest struct {
	Nonce string `json:"nonce" validate:"required"`
}

// PaypalCheckoutResponse tells the frontend where to send the buyer for approval.
type PaypalCheckoutResponse struct {
	OrderID       uint   `json:"order_id"`
	PaypalOrderID string `json:"paypal_order_id"`
	ApproveURL    string `json:"approve_url"`
}

type OrderItemResponse struct {
	ID            uint    `json:"id"`
	ProductID     uint    `json:"product_id"`
	ProductName   string  `json:"product_name"`
	ProductImage  *string `json:"product_image"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
	SelectedSize  string  `json:"selected_size"`
	SelectedColor *string `json:"selected_color"`
	Subtotal      float64 `json:"subtotal"`
}

type OrderUserResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type OrderResponse struct {
	ID                   uint                `json:"id"`
	UserID               uint                `json:"user_id"`
	OrderNumber          string              `json:"order_number"`
	Status               string              `json:"status"`
	PaymentMethod        string              `json:"payment_method"`
	PaymentStatus        string              `json:"payment_status"`
	PaymentTransactionID *string             `json:"payment_transaction_id,omitempty"`
	TotalAmount          float64             `json:"total_amount"`
	Subtotal             float64             `json:"subtotal"`
	Tax                  float64             `json:"tax"`
	ShippingCost         float64             `json:"shipping_cost"`
	FirstName            string              `json:"first_name"`
	LastName             string              `json:"last_name"`
	Email                string              `json:"email"`
	Street               string              `json:"street"`
	City                 string              `json:"city"`
	PostalCode           string              `json:"postal_code"`
	Country              string              `json:"country"`
	Phone                *string             `json:"phone"`
	Notes                *string             `json:"notes"`
	Items                []OrderItemResponse `json:"items"`
	User                 *OrderUserResponse  `json:"user,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}
