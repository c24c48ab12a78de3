package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
	"github.com/vikingspartan/EveraPharm-sub000/internal/repositories"
	"github.com/vikingspartan/EveraPharm-sub000/pkg/rabbitmq"
)

// PrescriptionItemInput optionally overrides dosage and duration for one
// product on the prescription.
type PrescriptionItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Dosage    string `json:"dosage,omitempty"`
	Duration  string `json:"duration,omitempty"`
}

// AttachPrescriptionInput carries the prescription details uploaded by the
// customer. DocumentURL is the reference returned by document storage.
type AttachPrescriptionInput struct {
	PatientID      string                  `json:"patient_id"`
	DoctorName     string                  `json:"doctor_name" validate:"required,min=3,max=100"`
	DoctorLicense  string                  `json:"doctor_license" validate:"required"`
	PrescribedDate time.Time               `json:"prescribed_date"`
	ValidUntil     time.Time               `json:"valid_until"`
	DocumentURL    string                  `json:"document_url,omitempty"`
	Items          []PrescriptionItemInput `json:"items,omitempty"`
}

// PrescriptionService is the prescription requirement gate: it decides
// whether an order needs a prescription and attaches one when it does.
type PrescriptionService struct {
	uow      repositories.UnitOfWork
	mqClient *rabbitmq.Client
	now      func() time.Time
}

// NewPrescriptionService creates a new PrescriptionService.
func NewPrescriptionService(uow repositories.UnitOfWork, mqClient *rabbitmq.Client) *PrescriptionService {
	return &PrescriptionService{
		uow:      uow,
		mqClient: mqClient,
		now:      time.Now,
	}
}

// WithClock overrides the time source; test hook.
func (s *PrescriptionService) WithClock(now func() time.Time) *PrescriptionService {
	s.now = now
	return s
}

// Attach creates the single prescription for an order. It fails when no
// order line requires one, or when one is already attached. One prescription
// item is created per prescription-requiring order line, defaulting dosage
// and duration when the caller leaves them blank. A PENDING order advances
// to PROCESSING once the prescription exists.
func (s *PrescriptionService) Attach(orderID string, input AttachPrescriptionInput) (*models.Prescription, error) {
	var created *models.Prescription
	err := s.uow.Do(func(r repositories.RepositorySet) error {
		order, err := r.Orders.GetByID(orderID)
		if err != nil {
			return err
		}
		if !order.RequiresPrescription() {
			return models.ErrNoPrescriptionNeeded
		}
		if _, err := r.Prescriptions.GetByOrderID(orderID); err == nil {
			return models.ErrPrescriptionAttached
		} else if !errors.Is(err, models.ErrPrescriptionNotFound) {
			return err
		}

		overrides := make(map[string]PrescriptionItemInput, len(input.Items))
		for _, item := range input.Items {
			overrides[item.ProductID] = item
		}

		var items []models.PrescriptionItem
		for _, line := range order.Items {
			if !line.RequiresPrescription {
				continue
			}
			dosage := models.DefaultDosage
			duration := models.DefaultDuration
			if override, ok := overrides[line.ProductID]; ok {
				if override.Dosage != "" {
					dosage = override.Dosage
				}
				if override.Duration != "" {
					duration = override.Duration
				}
			}
			items = append(items, models.PrescriptionItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Dosage:    dosage,
				Duration:  duration,
			})
		}

		patientID := input.PatientID
		if patientID == "" {
			patientID = order.CustomerID
		}
		prescribedDate := input.PrescribedDate
		if prescribedDate.IsZero() {
			prescribedDate = s.now()
		}

		prescription := &models.Prescription{
			OrderID:        orderID,
			PatientID:      patientID,
			DoctorName:     input.DoctorName,
			DoctorLicense:  input.DoctorLicense,
			PrescribedDate: prescribedDate,
			ValidUntil:     input.ValidUntil,
			Status:         models.PrescriptionStatusPending,
			DocumentURL:    input.DocumentURL,
			Items:          items,
		}
		if err := r.Prescriptions.Create(prescription); err != nil {
			return err
		}

		// The prescription now exists, which is what gates PROCESSING.
		if order.Status == models.OrderStatusPending {
			from := order.Status
			order.Prescription = prescription
			if err := order.Transition(models.OrderStatusProcessing, s.now()); err != nil {
				return err
			}
			order.MarkShipped(s.now())
			if err := r.Orders.UpdateStatus(order, from); err != nil {
				return err
			}
		}

		created = prescription
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishPrescriptionEvent(created)
	return created, nil
}

// UpdateStatus changes a prescription's verification state; restricted to
// pharmacy staff.
func (s *PrescriptionService) UpdateStatus(orderID string, status models.PrescriptionStatus, actorRole string) (*models.Prescription, error) {
	if actorRole != models.RoleAdmin && actorRole != models.RolePharmacist {
		return nil, models.ErrForbidden
	}

	var updated *models.Prescription
	err := s.uow.Do(func(r repositories.RepositorySet) error {
		prescription, err := r.Prescriptions.GetByOrderID(orderID)
		if err != nil {
			return err
		}
		prescription.Status = status
		if err := r.Prescriptions.Update(prescription); err != nil {
			return err
		}
		updated = prescription
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// publishPrescriptionEvent emits a prescription.attached event, best effort.
func (s *PrescriptionService) publishPrescriptionEvent(prescription *models.Prescription) {
	if s.mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}

	event := map[string]interface{}{
		"prescriptionID": prescription.ID,
		"orderID":        prescription.OrderID,
		"status":         prescription.Status,
	}
	messageBody, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal prescription event to JSON: %v", err)
		return
	}
	if err := s.mqClient.Publish("orders", "prescription.attached", messageBody); err != nil {
		log.Printf("Warning: Failed to publish prescription event for order %s: %v", prescription.OrderID, err)
	}
}
