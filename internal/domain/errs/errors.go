package errs

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Repositories raise these at the point of violation and
// they propagate unwrapped-or-wrapped (%w) to the HTTP boundary, which owns the
// translation to status codes. Infrastructure failures are anything that does
// not match one of these.
var (
	ErrValidation        = errors.New("invalid input")
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("caller lacks rights over this resource")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("illegal order state change")
)

// InsufficientStockError names the offending line so the client can show
// which product blocked checkout.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (product %d): requested %d, available %d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}
