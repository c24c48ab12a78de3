package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

// PaymentStatus tracks payment state independently of the order lifecycle.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// orderTransitions is the allowed state machine:
// PENDING -> PROCESSING -> COMPLETED, CANCELLED from PENDING/PROCESSING,
// REFUNDED from COMPLETED. COMPLETED, CANCELLED and REFUNDED are terminal
// except for the COMPLETED -> REFUNDED edge.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  {OrderStatusRefunded},
}

// ValidOrderStatus reports whether s is a known order status value.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted,
		OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// OrderItem is a single line within an order. All fields are snapshots taken
// at order-creation time (unit price and the prescription flag are copied
// from the product, never referenced live) and are immutable afterwards.
type OrderItem struct {
	ID                   string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID              string          `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID            string          `json:"product_id" gorm:"type:varchar(36)"`
	Quantity             int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice            decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2)"` // Price at the time of order
	Discount             decimal.Decimal `json:"discount" gorm:"type:decimal(12,2)"`
	Total                decimal.Decimal `json:"total" gorm:"type:decimal(12,2)"`
	BatchNumber          string          `json:"batch_number,omitempty" gorm:"type:varchar(64)"`
	RequiresPrescription bool            `json:"requires_prescription"`
	gorm.Model
}

// Order is the aggregate root for a customer order. Monetary fields are
// snapshots computed once at creation; only Status, PaymentStatus and the
// shipped/delivered timestamps change afterwards.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber     string          `json:"order_number" gorm:"uniqueIndex;type:varchar(36)"`
	CustomerID      string          `json:"customer_id" gorm:"index;type:varchar(36)"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(16)"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(16)"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2)"`
	Tax             decimal.Decimal `json:"tax" gorm:"type:decimal(12,2)"`
	ShippingCost    decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(12,2)"`
	Discount        decimal.Decimal `json:"discount" gorm:"type:decimal(12,2)"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(12,2)"`
	ShippingAddress string          `json:"shipping_address" gorm:"type:varchar(500)"`
	BillingAddress  string          `json:"billing_address" gorm:"type:varchar(500)"`
	PaymentMethod   string          `json:"payment_method" gorm:"type:varchar(32)"`
	Notes           string          `json:"notes,omitempty" gorm:"type:varchar(500)"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	Prescription    *Prescription   `json:"prescription,omitempty" gorm:"foreignKey:OrderID"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	gorm.Model
}

// RequiresPrescription reports whether any line item was flagged as
// prescription-only when the order was created.
func (o *Order) RequiresPrescription() bool {
	for _, item := range o.Items {
		if item.RequiresPrescription {
			return true
		}
	}
	return false
}

// HasPrescription reports whether a prescription record is linked to the order.
func (o *Order) HasPrescription() bool {
	return o.Prescription != nil
}

// CanTransition reports whether the state machine allows moving to target.
func (o *Order) CanTransition(target OrderStatus) bool {
	for _, allowed := range orderTransitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Transition moves the order to target, enforcing the state machine and the
// prescription gate: a prescription-requiring order cannot enter PROCESSING
// until a prescription record is attached (its verification status is tracked
// separately and does not gate this edge). Entering COMPLETED stamps
// DeliveredAt. Shipping time is NOT stamped here; callers that move an order
// into PROCESSING decide whether to call MarkShipped.
func (o *Order) Transition(target OrderStatus, now time.Time) error {
	if !ValidOrderStatus(target) {
		return &InvalidTransitionError{From: o.Status, To: target}
	}
	if !o.CanTransition(target) {
		return &InvalidTransitionError{From: o.Status, To: target}
	}
	if target == OrderStatusProcessing && o.RequiresPrescription() && !o.HasPrescription() {
		return ErrPrescriptionRequired
	}
	o.Status = target
	if target == OrderStatusCompleted {
		t := now
		o.DeliveredAt = &t
	}
	return nil
}

// MarkShipped stamps the shipped timestamp. It is an explicit action invoked
// by the orchestrator when an order enters PROCESSING; idempotent so a repeat
// call keeps the original time.
func (o *Order) MarkShipped(now time.Time) {
	if o.ShippedAt == nil {
		t := now
		o.ShippedAt = &t
	}
}
