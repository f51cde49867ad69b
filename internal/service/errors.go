package service

import (
	"errors"
	"fmt"

	"github.com/mstolbov/market_api/internal/validation"
)

var (
	ErrNotFound        = errors.New("not found")        // 404
	ErrConflict        = errors.New("conflict")         // 409
	ErrUnauthenticated = errors.New("unauthenticated")  // 401
	ErrForbidden       = errors.New("forbidden")        // 403
	ErrEmptyCart       = errors.New("cart is empty")    // 422
)

// ValidationError carries every field violation; handlers attach the list to
// the 422 response instead of a single opaque message.
type ValidationError struct {
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func validationErr(fields []validation.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// StockError reports the first line item whose requested quantity exceeds
// current stock; the whole checkout fails with it.
type StockError struct {
	ProductID uint
	Requested uint
	Available uint
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// TransitionError reports an illegal order status move.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
