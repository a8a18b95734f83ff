package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type NameRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type BrandResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TypeResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BrandTypeRequest struct {
	BrandID uint `json:"brand_id" validate:"required"`
	TypeID  uint `json:"type_id" validate:"required"`
}

type BrandTypeResponse struct {
	ID      uint           `json:"id"`
	BrandID uint           `json:"brand_id"`
	TypeID  uint           `json:"type_id"`
	Brand   *BrandResponse `json:"brand,omitempty"`
	Type    *TypeResponse  `json:"type,omitempty"`
}

type CreateProductRequest struct {
	Name     string           `json:"name" validate:"required,max=255"`
	Price    decimal.Decimal  `json:"price"`
	Rating   *decimal.Decimal `json:"rating"`
	Img      *string          `json:"img"`
	OldPrice *decimal.Decimal `json:"old_price"`
	Discount *int             `json:"discount" validate:"omitempty,min=0,max=100"`
	TypeID   uint             `json:"type_id" validate:"required"`
	BrandID  uint             `json:"brand_id" validate:"required"`
}

type UpdateProductRequest struct {
	Name     *string          `json:"name" validate:"omitempty,max=255"`
	Price    *decimal.Decimal `json:"price"`
	Rating   *decimal.Decimal `json:"rating"`
	Img      *string          `json:"img"`
	OldPrice *decimal.Decimal `json:"old_price"`
	Discount *int             `json:"discount" validate:"omitempty,min=0,max=100"`
	TypeID   *uint            `json:"type_id"`
	BrandID  *uint            `json:"brand_id"`
}

type ProductQuery struct {
	BrandID   *uint
	TypeID    *uint
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Search    string
	Page      int
	Limit     int
	SortBy    string // name, price, rating, createdAt
	SortOrder string // ASC, DESC
}

type ProductResponse struct {
	ID        uint                  `json:"id"`
	Name      string                `json:"name"`
	Price     float64               `json:"price"`
	OldPrice  *float64              `json:"old_price"`
	Rating    float64               `json:"rating"`
	Img       *string               `json:"img"`
	Discount  *int                  `json:"discount"`
	TypeID    uint                  `json:"type_id"`
	BrandID   uint                  `json:"brand_id"`
	Brand     *BrandResponse        `json:"brand,omitempty"`
	Type      *TypeResponse         `json:"type,omitempty"`
	Info      []ProductInfoResponse `json:"info,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type ProductInfoRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
}

type UpdateProductInfoRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
}

type ProductInfoResponse struct {
	ID          uint   `json:"id"`
	ProductID   uint   `json:"product_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
