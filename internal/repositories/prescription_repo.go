package repositories

import (
	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
)

// PrescriptionRepository defines the interface for prescription data access.
type PrescriptionRepository interface {
	Create(prescription *models.Prescription) error
	GetByOrderID(orderID string) (*models.Prescription, error)
	Update(prescription *models.Prescription) error
}
