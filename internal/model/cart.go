package model

import "time"

const MaxCartQuantity = 99

type CartItem struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"uniqueIndex:idx_cart_line;not null"`
	ProductID     uint      `gorm:"uniqueIndex:idx_cart_line;index;not null"`
	SelectedSize  string    `gorm:"size:32;uniqueIndex:idx_cart_line;not null"`
	SelectedColor string    `gorm:"size:64;uniqueIndex:idx_cart_line;not null;default:''"` // '' when no color was picked
	Quantity      int       `gorm:"not null;default:1"`
	AddedAt       time.Time `gorm:"not null;index"`

	Product Product `gorm:"constraint:OnDelete:CASCADE"`
}
