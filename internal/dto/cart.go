package dto

import "time"

type AddToCartRequest struct {
	ProductID     uint    `json:"product_id" validate:"required"`
	Quantity      int     `json:"quantity" validate:"required,min=1"`
	SelectedSize  string  `json:"selected_size" validate:"required"`
	SelectedColor *string `json:"selected_color"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartItemResponse struct {
	ID            uint            `json:"id"`
	ProductID     uint            `json:"product_id"`
	Product       ProductResponse `json:"product"`
	SelectedSize  string          `json:"selected_size"`
	SelectedColor *string         `json:"selected_color"`
	Quantity      int             `json:"quantity"`
	MaxQuantity   int             `json:"max_quantity"`
	AddedAt       time.Time       `json:"added_at"`
}

type CartSummary struct {
	Subtotal           float64 `json:"subtotal"`
	Discount           float64 `json:"discount"`
	DiscountPercentage int64   `json:"discount_percentage"`
	DeliveryFee        float64 `json:"delivery_fee"`
	Total              float64 `json:"total"`
}

type CartResponse struct {
	Items   []CartItemResponse `json:"items"`
	Summary CartSummary        `json:"summary"`
}
