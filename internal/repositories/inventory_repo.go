package repositories

import (
	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
)

// InventoryRepository defines the interface for inventory data access.
// Reserve, Release, Commit and Restock are the only mutation paths for stock
// quantities; each is an atomic conditional update so two reservations
// racing for the same product cannot both succeed on the last units.
type InventoryRepository interface {
	GetByProductID(productID string) (*models.Inventory, error)
	Create(inventory *models.Inventory) error
	// Reserve moves quantity from available to reserved. Returns
	// *models.InsufficientStockError when available stock is short.
	Reserve(productID string, quantity int) error
	// Release is the inverse of Reserve, used on cancellation.
	Release(productID string, quantity int) error
	// Commit converts a reservation into a permanent deduction, decrementing
	// reserved and total together.
	Commit(productID string, quantity int) error
	// Restock adds quantity to total and available.
	Restock(productID string, quantity int) error
	CreateMovement(movement *models.InventoryMovement) error
	MovementsByOrder(orderID string) ([]models.InventoryMovement, error)
}
