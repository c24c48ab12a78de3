package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a sellable pharmacy item. Price is copied into order
// items at checkout time; historical orders never re-read it.
type Product struct {
	ID                   string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	SKU                  string          `json:"sku" gorm:"uniqueIndex;type:varchar(64)" validate:"required,min=3,max=64"`
	Name                 string          `json:"name" validate:"required,min=3,max=100"`
	Description          string          `json:"description" validate:"omitempty,max=500"`
	Price                decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	RequiresPrescription bool            `json:"requires_prescription"`
	Active               bool            `json:"active"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Inventory tracks stock for exactly one product.
// Invariant: TotalQuantity == AvailableQuantity + ReservedQuantity, and
// AvailableQuantity never goes negative. Quantities are mutated only through
// the inventory ledger's reserve/release/commit/restock operations.
type Inventory struct {
	ID                string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID         string `json:"product_id" gorm:"uniqueIndex;type:varchar(36)"`
	TotalQuantity     int    `json:"total_quantity" validate:"gte=0"`
	AvailableQuantity int    `json:"available_quantity" validate:"gte=0"`
	ReservedQuantity  int    `json:"reserved_quantity" validate:"gte=0"`
	ReorderLevel      int    `json:"reorder_level" validate:"gte=0"`
	gorm.Model
}

// IsLowStock reports whether available stock has fallen to the reorder level.
func (i *Inventory) IsLowStock() bool {
	return i.AvailableQuantity <= i.ReorderLevel
}

// Movement reasons recorded in the inventory ledger.
const (
	MovementReasonOrderPlaced    = "Order placed"
	MovementReasonOrderCancelled = "Order cancelled"
	MovementReasonOrderFulfilled = "Order fulfilled"
	MovementReasonRestock        = "Restock"
)

// InventoryMovement is an append-only audit record of a stock change.
// Rows are written exactly once per ledger operation and never updated or
// deleted, so there is no gorm.Model / soft delete here.
type InventoryMovement struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID     string    `json:"product_id" gorm:"index;type:varchar(36)"`
	OrderID       string    `json:"order_id,omitempty" gorm:"index;type:varchar(36)"`
	QuantityDelta int       `json:"quantity_delta"`
	Reason        string    `json:"reason" gorm:"type:varchar(64)"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}
