package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
)

// GORMInventoryRepository is a GORM implementation of InventoryRepository.
// Stock mutations are expressed as conditional UPDATEs with RowsAffected
// checks, so the database serializes competing reservations per product
// without an explicit row lock.
type GORMInventoryRepository struct {
	db *gorm.DB
}

// NewGORMInventoryRepository creates a new instance of GORMInventoryRepository.
func NewGORMInventoryRepository(db *gorm.DB) *GORMInventoryRepository {
	return &GORMInventoryRepository{
		db: db,
	}
}

// GetByProductID retrieves the inventory record for a product.
func (r *GORMInventoryRepository) GetByProductID(productID string) (*models.Inventory, error) {
	var inventory models.Inventory
	if err := r.db.First(&inventory, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("inventory for product %s: %w", productID, models.ErrInventoryNotFound)
		}
		return nil, fmt.Errorf("failed to get inventory for product %s: %w", productID, err)
	}
	return &inventory, nil
}

// Create creates a new inventory record.
func (r *GORMInventoryRepository) Create(inventory *models.Inventory) error {
	if inventory.ID == "" {
		inventory.ID = uuid.New().String()
	}
	if err := r.db.Create(inventory).Error; err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}
	return nil
}

// Reserve atomically moves quantity from available to reserved. The WHERE
// clause guards against both a missing record and insufficient stock; when
// nothing was updated we re-read the row to tell the two apart.
func (r *GORMInventoryRepository) Reserve(productID string, quantity int) error {
	res := r.db.Model(&models.Inventory{}).
		Where("product_id = ? AND available_quantity >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity - ?", quantity),
			"reserved_quantity":  gorm.Expr("reserved_quantity + ?", quantity),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to reserve stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		inventory, err := r.GetByProductID(productID)
		if err != nil {
			return err
		}
		return &models.InsufficientStockError{
			ProductID: productID,
			Requested: quantity,
			Available: inventory.AvailableQuantity,
		}
	}
	return nil
}

// Release moves quantity back from reserved to available.
func (r *GORMInventoryRepository) Release(productID string, quantity int) error {
	res := r.db.Model(&models.Inventory{}).
		Where("product_id = ? AND reserved_quantity >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity + ?", quantity),
			"reserved_quantity":  gorm.Expr("reserved_quantity - ?", quantity),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to release stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no reservation of %d units to release for product %s: %w",
			quantity, productID, models.ErrInventoryNotFound)
	}
	return nil
}

// Commit converts a reservation into a permanent deduction by decrementing
// reserved and total together.
func (r *GORMInventoryRepository) Commit(productID string, quantity int) error {
	res := r.db.Model(&models.Inventory{}).
		Where("product_id = ? AND reserved_quantity >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", quantity),
			"total_quantity":    gorm.Expr("total_quantity - ?", quantity),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to commit stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no reservation of %d units to commit for product %s: %w",
			quantity, productID, models.ErrInventoryNotFound)
	}
	return nil
}

// Restock adds quantity to total and available.
func (r *GORMInventoryRepository) Restock(productID string, quantity int) error {
	res := r.db.Model(&models.Inventory{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity + ?", quantity),
			"total_quantity":     gorm.Expr("total_quantity + ?", quantity),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to restock product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("inventory for product %s: %w", productID, models.ErrInventoryNotFound)
	}
	return nil
}

// CreateMovement appends one audit record to the movement ledger.
func (r *GORMInventoryRepository) CreateMovement(movement *models.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if err := r.db.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to record inventory movement: %w", err)
	}
	return nil
}

// MovementsByOrder lists the ledger entries created on behalf of an order.
func (r *GORMInventoryRepository) MovementsByOrder(orderID string) ([]models.InventoryMovement, error) {
	var movements []models.InventoryMovement
	if err := r.db.Where("order_id = ?", orderID).Order("created_at").Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to list movements for order %s: %w", orderID, err)
	}
	return movements, nil
}
