package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
)

// GORMPrescriptionRepository is a GORM implementation of PrescriptionRepository.
type GORMPrescriptionRepository struct {
	db *gorm.DB
}

// NewGORMPrescriptionRepository creates a new instance of GORMPrescriptionRepository.
func NewGORMPrescriptionRepository(db *gorm.DB) *GORMPrescriptionRepository {
	return &GORMPrescriptionRepository{
		db: db,
	}
}

// Create persists the prescription with its items.
func (r *GORMPrescriptionRepository) Create(prescription *models.Prescription) error {
	if prescription.ID == "" {
		prescription.ID = uuid.New().String()
	}
	for i := range prescription.Items {
		if prescription.Items[i].ID == "" {
			prescription.Items[i].ID = uuid.New().String()
		}
		prescription.Items[i].PrescriptionID = prescription.ID
	}
	if err := r.db.Create(prescription).Error; err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

// GetByOrderID retrieves the prescription attached to an order, if any.
func (r *GORMPrescriptionRepository) GetByOrderID(orderID string) (*models.Prescription, error) {
	var prescription models.Prescription
	err := r.db.Preload("Items").First(&prescription, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("prescription for order %s: %w", orderID, models.ErrPrescriptionNotFound)
		}
		return nil, fmt.Errorf("failed to get prescription for order %s: %w", orderID, err)
	}
	return &prescription, nil
}

// Update saves prescription changes (verification status updates).
func (r *GORMPrescriptionRepository) Update(prescription *models.Prescription) error {
	if err := r.db.Save(prescription).Error; err != nil {
		return fmt.Errorf("failed to update prescription: %w", err)
	}
	return nil
}
