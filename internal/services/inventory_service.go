package services

import (
	"fmt"

	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
	"github.com/vikingspartan/EveraPharm-sub000/internal/repositories"
)

// InventoryService is the stock ledger: every quantity change goes through
// reserve/release/commit/restock here, and each one appends exactly one
// movement record. Other code never writes inventory quantities directly.
type InventoryService struct {
	repo repositories.InventoryRepository
}

// NewInventoryService creates a new InventoryService. When used inside a unit
// of work, construct it over the transaction-scoped repository so ledger
// writes roll back with the rest of the work.
func NewInventoryService(repo repositories.InventoryRepository) *InventoryService {
	return &InventoryService{
		repo: repo,
	}
}

// Initialize creates the inventory record for a new product with its opening
// stock, recorded as a restock movement.
func (s *InventoryService) Initialize(productID string, quantity, reorderLevel int) error {
	if quantity < 0 || reorderLevel < 0 {
		return models.ErrInvalidQuantity
	}
	inventory := &models.Inventory{
		ProductID:         productID,
		TotalQuantity:     quantity,
		AvailableQuantity: quantity,
		ReorderLevel:      reorderLevel,
	}
	if err := s.repo.Create(inventory); err != nil {
		return err
	}
	if quantity == 0 {
		return nil
	}
	return s.repo.CreateMovement(&models.InventoryMovement{
		ProductID:     productID,
		QuantityDelta: quantity,
		Reason:        models.MovementReasonRestock,
	})
}

// Reserve places a hold of quantity units for the given order. Fails with
// *models.InsufficientStockError when available stock is short; on success
// the hold is recorded in the movement ledger.
func (s *InventoryService) Reserve(productID string, quantity int, orderID string) error {
	if quantity <= 0 {
		return models.ErrInvalidQuantity
	}
	if err := s.repo.Reserve(productID, quantity); err != nil {
		return err
	}
	return s.repo.CreateMovement(&models.InventoryMovement{
		ProductID:     productID,
		OrderID:       orderID,
		QuantityDelta: -quantity,
		Reason:        models.MovementReasonOrderPlaced,
	})
}

// Release reverses a reservation when an order is cancelled before
// fulfillment, with a compensating movement.
func (s *InventoryService) Release(productID string, quantity int, orderID string) error {
	if quantity <= 0 {
		return models.ErrInvalidQuantity
	}
	if err := s.repo.Release(productID, quantity); err != nil {
		return err
	}
	return s.repo.CreateMovement(&models.InventoryMovement{
		ProductID:     productID,
		OrderID:       orderID,
		QuantityDelta: quantity,
		Reason:        models.MovementReasonOrderCancelled,
	})
}

// Commit converts a reservation into a permanent deduction once an order line
// is fulfilled. Idempotent per order line: the fulfillment movement doubles
// as the committed marker, so calling Commit twice for the same product and
// order is a no-op.
func (s *InventoryService) Commit(productID string, quantity int, orderID string) error {
	if quantity <= 0 {
		return models.ErrInvalidQuantity
	}
	movements, err := s.repo.MovementsByOrder(orderID)
	if err != nil {
		return err
	}
	for _, m := range movements {
		if m.ProductID == productID && m.Reason == models.MovementReasonOrderFulfilled {
			return nil
		}
	}
	if err := s.repo.Commit(productID, quantity); err != nil {
		return err
	}
	return s.repo.CreateMovement(&models.InventoryMovement{
		ProductID:     productID,
		OrderID:       orderID,
		QuantityDelta: -quantity,
		Reason:        models.MovementReasonOrderFulfilled,
	})
}

// Restock adds quantity units of sellable stock.
func (s *InventoryService) Restock(productID string, quantity int) error {
	if quantity <= 0 {
		return models.ErrInvalidQuantity
	}
	if err := s.repo.Restock(productID, quantity); err != nil {
		return err
	}
	return s.repo.CreateMovement(&models.InventoryMovement{
		ProductID:     productID,
		QuantityDelta: quantity,
		Reason:        models.MovementReasonRestock,
	})
}

// Stock returns the current inventory record for a product.
func (s *InventoryService) Stock(productID string) (*models.Inventory, error) {
	return s.repo.GetByProductID(productID)
}

// IsLowStock reports whether available stock is at or below the reorder level.
func (s *InventoryService) IsLowStock(productID string) (bool, error) {
	inventory, err := s.repo.GetByProductID(productID)
	if err != nil {
		return false, fmt.Errorf("failed to check stock level: %w", err)
	}
	return inventory.IsLowStock(), nil
}
