package models

import (
	"time"

	"gorm.io/gorm"
)

// PrescriptionStatus is the verification state of a prescription. Only the
// record's existence gates order processing; this status is managed by
// pharmacy staff independently.
type PrescriptionStatus string

const (
	PrescriptionStatusPending   PrescriptionStatus = "PENDING"
	PrescriptionStatusVerified  PrescriptionStatus = "VERIFIED"
	PrescriptionStatusDispensed PrescriptionStatus = "DISPENSED"
	PrescriptionStatusExpired   PrescriptionStatus = "EXPIRED"
	PrescriptionStatusCancelled PrescriptionStatus = "CANCELLED"
)

// Defaults applied to prescription items when the caller leaves them blank.
const (
	DefaultDosage   = "As directed"
	DefaultDuration = "As prescribed"
)

// Prescription is attached to at most one order and carries one item per
// prescription-requiring order line. DocumentURL is a reference into external
// document storage; file bytes are never stored here.
type Prescription struct {
	ID             string             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID        string             `json:"order_id" gorm:"uniqueIndex;type:varchar(36)"`
	PatientID      string             `json:"patient_id" gorm:"type:varchar(36)" validate:"required"`
	DoctorName     string             `json:"doctor_name" validate:"required,min=3,max=100"`
	DoctorLicense  string             `json:"doctor_license" gorm:"type:varchar(64)" validate:"required"`
	PrescribedDate time.Time          `json:"prescribed_date"`
	ValidUntil     time.Time          `json:"valid_until"`
	Status         PrescriptionStatus `json:"status" gorm:"type:varchar(16)"`
	DocumentURL    string             `json:"document_url,omitempty" gorm:"type:varchar(500)"`
	Items          []PrescriptionItem `json:"items" gorm:"foreignKey:PrescriptionID"`
	gorm.Model
}

// PrescriptionItem records what was prescribed for one product on the order.
type PrescriptionItem struct {
	ID             string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PrescriptionID string `json:"prescription_id" gorm:"index;type:varchar(36)"`
	ProductID      string `json:"product_id" gorm:"type:varchar(36)"`
	Quantity       int    `json:"quantity"`
	Dosage         string `json:"dosage" gorm:"type:varchar(100)"`
	Duration       string `json:"duration" gorm:"type:varchar(100)"`
	gorm.Model
}
