package domain

import (
	"time"

	"github.com/pkg/errors"
)

// OrderStatus captures the lifecycle of an order. The domain is closed:
// anything outside the three constants is invalid, but transitions between
// them are not guarded, so any status may overwrite any other.
type OrderStatus string

const (
	OrderPending  OrderStatus = "Pending"
	OrderAccepted OrderStatus = "Accepted"
	OrderRejected OrderStatus = "Rejected"
)

// ParseOrderStatus validates untrusted status input.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderPending, OrderAccepted, OrderRejected:
		return OrderStatus(s), nil
	}
	return "", errors.Errorf("invalid order status %q", s)
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderRejected:
		return true
	}
	return false
}

// Active reports whether the order still blocks a new placement for the
// same phone and product.
func (s OrderStatus) Active() bool {
	return s != OrderRejected
}

// Order represents a purchase request keyed by the buyer's phone number.
// ProductID is not a foreign key; it may dangle after product deletion.
type Order struct {
	ID           int64       `gorm:"primaryKey" json:"id"`
	ProductID    int64       `gorm:"index" json:"product_id"`
	CustomerName string      `gorm:"size:200" json:"customer_name"`
	Phone        string      `gorm:"size:64;index" json:"phone"`
	Status       OrderStatus `gorm:"size:32;index" json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
