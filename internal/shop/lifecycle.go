// Package shop holds the order lifecycle and its storage access. The only
// business rule lives here: a (phone, product) pair may have at most one
// order in a non-Rejected state.
package shop

import (
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk/internal/domain"
	"github.com/orderdesk/orderdesk/pkg/common"
)

// TopicOrderRejected is published on the process event bus whenever an
// order transitions to Rejected. Subscribers decide what, if anything, to
// deliver to the customer; the core only provides the hook.
const TopicOrderRejected = "order:rejected"

// RejectedEvent is the payload published on TopicOrderRejected.
type RejectedEvent struct {
	OrderID int64
	Phone   string
}

// ErrInvalidInput marks placement requests rejected before any storage
// access; callers can treat it as user error rather than a failure.
var ErrInvalidInput = errors.New("invalid order input")

// Outcome of a placement attempt.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeDuplicate Outcome = "duplicate_active_order"
)

// PlaceResult reports what PlaceOrder decided. On OutcomeDuplicate, OrderID
// and Status describe the existing order so the caller can surface its
// current state to the buyer.
type PlaceResult struct {
	Outcome Outcome
	OrderID int64
	Status  domain.OrderStatus
}

// Lifecycle gatekeeps order creation and manages status transitions.
type Lifecycle struct {
	repo *Repository
	bus  EventBus.Bus
}

func NewLifecycle(repo *Repository, bus EventBus.Bus) *Lifecycle {
	return &Lifecycle{repo: repo, bus: bus}
}

// PlaceOrder applies the duplicate guard and, when the pair is clear,
// inserts a new Pending order. The productID is not checked against the
// catalog; a dangling reference is accepted.
//
// The check-then-insert is not serialized across concurrent requests: two
// simultaneous placements for the same (phone, product) pair can both pass
// the guard and both insert. This race is a documented acceptance, not a
// bug to paper over here.
func (s *Lifecycle) PlaceOrder(productID int64, customerName, phone string) (PlaceResult, error) {
	customerName = strings.TrimSpace(customerName)
	phone = strings.TrimSpace(phone)
	if customerName == "" {
		return PlaceResult{}, errors.Wrap(ErrInvalidInput, "customer name is required")
	}
	if phone == "" {
		return PlaceResult{}, errors.Wrap(ErrInvalidInput, "phone is required")
	}

	existing, err := s.repo.FindActiveOrder(phone, productID)
	if err != nil {
		return PlaceResult{}, err
	}
	if existing != nil {
		return PlaceResult{
			Outcome: OutcomeDuplicate,
			OrderID: existing.ID,
			Status:  existing.Status,
		}, nil
	}

	now := time.Now()
	order := &domain.Order{
		ID:           common.UUIDint64(),
		ProductID:    productID,
		CustomerName: customerName,
		Phone:        phone,
		Status:       domain.OrderPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertOrder(order); err != nil {
		return PlaceResult{}, err
	}

	zap.L().Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("product_id", productID),
		zap.String("phone", phone))

	return PlaceResult{
		Outcome: OutcomeCreated,
		OrderID: order.ID,
		Status:  domain.OrderPending,
	}, nil
}

// Transition overwrites the order's status unconditionally; the current
// status is not consulted. Only Accepted and Rejected are valid targets.
// A transition to Rejected publishes the customer-notification hook.
func (s *Lifecycle) Transition(orderID int64, newStatus domain.OrderStatus) error {
	if newStatus != domain.OrderAccepted && newStatus != domain.OrderRejected {
		return errors.Errorf("status %q is not a valid transition target", newStatus)
	}
	if err := s.repo.UpdateOrderStatus(orderID, newStatus); err != nil {
		return err
	}

	if newStatus == domain.OrderRejected {
		phone, err := s.repo.OrderPhoneByID(orderID)
		if err != nil {
			zap.L().Warn("rejected order phone lookup failed",
				zap.Int64("order_id", orderID), zap.Error(err))
			return nil
		}
		if s.bus != nil {
			s.bus.Publish(TopicOrderRejected, RejectedEvent{OrderID: orderID, Phone: phone})
		}
	}
	return nil
}

// LatestStatusForPhone returns the status of the newest order placed under
// the phone number. ok is false when the phone has no orders.
func (s *Lifecycle) LatestStatusForPhone(phone string) (status domain.OrderStatus, ok bool, err error) {
	order, err := s.repo.LatestOrderByPhone(phone)
	if err != nil {
		return "", false, err
	}
	if order == nil {
		return "", false, nil
	}
	return order.Status, true, nil
}
