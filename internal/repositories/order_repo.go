package repositories

import (
	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
)

// OrderFilter narrows and pages order listings.
type OrderFilter struct {
	CustomerID string
	Status     models.OrderStatus
	Page       int
	PageSize   int
}

// OrderRepository defines the interface for order data access.
// Orders are created whole (with their items) and only status, payment
// status and the shipped/delivered timestamps change afterwards.
type OrderRepository interface {
	List(filter OrderFilter) ([]models.Order, int64, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	// UpdateStatus persists a status change only if the stored row is still
	// in the expected prior state, so concurrent admin updates on the same
	// order cannot interleave.
	UpdateStatus(order *models.Order, from models.OrderStatus) error
}
