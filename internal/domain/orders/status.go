package orders

import (
	"fmt"

	"shop/internal/domain/errs"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus normalizes and validates a status string from a request.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown order status %q: %w", s, errs.ErrValidation)
	}
}

// Terminal reports whether no further status transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition is deliberately permissive: any state can reach any state,
// except that nothing leaves a terminal state. Stricter graphs (e.g.
// forbidding shipped -> pending) are an admin-policy question, not a
// structural invariant.
func CanTransition(from, to Status) bool {
	return !from.Terminal()
}
