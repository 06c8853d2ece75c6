package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a patient's rating of a completed appointment. One review per
// appointment, enforced by the unique index on AppointmentID.
type Review struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"appointment_id"`
	DoctorID      uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`

	Rating  int    `gorm:"not null" json:"rating"` // 1..5
	Comment string `gorm:"type:text" json:"comment,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}

// RatingSummary holds review aggregates for one doctor.
type RatingSummary struct {
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}
