package domain

import "time"

// Product represents a catalog item offered in the storefront
type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `json:"price"`                  // price in main currency units (e.g., dollars)
	Image       string    `gorm:"size:1024" json:"image"` // sanitized filename of the uploaded asset
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
