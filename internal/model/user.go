package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint    `gorm:"primaryKey"`
	Email        string  `gorm:"size:255;uniqueIndex;not null"`
	Password     string  `gorm:"size:255;not null"` // bcrypt hash
	FirstName    string  `gorm:"size:100;not null"`
	LastName     string  `gorm:"size:100;not null"`
	Street       string  `gorm:"size:255"`
	City         string  `gorm:"size:100"`
	PostalCode   string  `gorm:"size:20"`
	Country      string  `gorm:"size:100"`
	Phone        string  `gorm:"size:50"`
	Role         string  `gorm:"size:32;not null;default:user"`
	IsActive     bool    `gorm:"not null;default:true"`
	RefreshToken *string `gorm:"size:255"` // bcrypt hash of the current refresh token digest
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
