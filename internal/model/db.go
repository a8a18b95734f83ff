package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Brand{},
		&Type{},
		&BrandType{},
		&Product{},
		&ProductInfo{},
		&User{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&IdempotencyKey{},
	}
}

type Brand struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Type struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type BrandType struct {
	ID        uint  `gorm:"primaryKey"`
	BrandID   uint  `gorm:"uniqueIndex:idx_brand_type;not null"`
	TypeID    uint  `gorm:"uniqueIndex:idx_brand_type;index;not null"`
	Brand     Brand `gorm:"constraint:OnDelete:CASCADE"`
	Type      Type  `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID       uint                `gorm:"primaryKey"`
	Name     string              `gorm:"size:255;index;not null"`
	Price    decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	Rating   decimal.Decimal     `gorm:"type:decimal(3,2);not null;default:0"`
	Img      *string             `gorm:"size:255"`
	OldPrice decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Discount *int                // percent, 0..100
	TypeID   uint                `gorm:"index;not null"`
	BrandID  uint                `gorm:"index;not null"`

	Type  Type
	Brand Brand
	Info  []ProductInfo `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasOldPrice reports whether the product carries a strike-through price.
// A zero old price counts as absent.
func (p *Product) HasOldPrice() bool {
	return p.OldPrice.Valid && !p.OldPrice.Decimal.IsZero()
}

type ProductInfo struct {
	ID          uint   `gorm:"primaryKey"`
	ProductID   uint   `gorm:"index;not null"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
