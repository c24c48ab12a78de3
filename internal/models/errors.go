package models

import (
	"errors"
	"fmt"
)

// Business errors surfaced to callers. Handlers map these onto HTTP statuses
// with errors.Is / errors.As; anything else is treated as an infrastructure
// failure.
var (
	ErrProductNotFound       = errors.New("product not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrInventoryNotFound     = errors.New("inventory record not found")
	ErrPrescriptionNotFound  = errors.New("prescription not found")
	ErrPrescriptionRequired  = errors.New("order requires a prescription before processing")
	ErrNoPrescriptionNeeded  = errors.New("order has no prescription-requiring items")
	ErrPrescriptionAttached  = errors.New("order already has a prescription attached")
	ErrForbidden             = errors.New("actor is not allowed to perform this action")
	ErrEmptyOrder            = errors.New("order must contain at least one item")
	ErrInvalidQuantity       = errors.New("item quantity must be positive")
)

// InsufficientStockError is returned when a reservation asks for more stock
// than is available. It unwraps to ErrInsufficientStock for errors.Is checks.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

var ErrInsufficientStock = errors.New("insufficient stock")

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// InvalidTransitionError is returned when an order status change is not
// allowed by the state machine.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition from %s to %s", e.From, e.To)
}
