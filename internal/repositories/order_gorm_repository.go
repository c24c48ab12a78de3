package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// List retrieves orders matching the filter, newest first, along with the
// total match count for pagination.
func (r *GORMOrderRepository) List(filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var orders []models.Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// GetByID retrieves a single order with its items and prescription.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").
		Preload("Prescription").
		Preload("Prescription.Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, models.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create persists the order together with its items.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus writes the order's lifecycle fields, guarded by the expected
// prior status. Zero rows affected means the order is gone or another update
// got there first; both are surfaced as errors instead of silently losing a
// transition.
func (r *GORMOrderRepository) UpdateStatus(order *models.Order, from models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, from).
		Updates(map[string]interface{}{
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"shipped_at":     order.ShippedAt,
			"delivered_at":   order.DeliveredAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update status for order %s: %w", order.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s changed concurrently: %w", order.ID,
			&models.InvalidTransitionError{From: from, To: order.Status})
	}
	return nil
}
