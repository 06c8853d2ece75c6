package models

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Cancelled slots become bookable again; the partial
// unique index on (doctor, date, time) excludes cancelled rows.
const (
	AppointmentBooked    = "booked"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
	AppointmentNoShow    = "no_show"
)

// Appointment is a patient's claim on one of a doctor's slots.
//
// Date and time are kept as plain strings ("2006-01-02", "HH:MM") rather than
// timestamps so the slot-uniqueness key compares exactly, with no timezone
// drift between writers.
type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DoctorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`

	AppointmentDate string `gorm:"type:varchar(10);not null;index" json:"appointment_date"`
	AppointmentTime string `gorm:"type:varchar(5);not null" json:"appointment_time"`

	Status string `gorm:"type:varchar(20);not null;default:'booked';index" json:"status"`

	// Fee is copied from the doctor's consultation fee at booking time, in
	// minor currency units.
	Fee      int    `gorm:"not null" json:"fee"`
	Currency string `gorm:"type:varchar(10);not null;default:'usd'" json:"currency"`

	Notes        string `gorm:"type:text" json:"notes,omitempty"`
	ReminderSent bool   `gorm:"default:false;index" json:"reminder_sent"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Doctor  Doctor `gorm:"foreignKey:DoctorID" json:"-"`
	Patient User   `gorm:"foreignKey:PatientID" json:"-"`
}

// Terminal reports whether the appointment can no longer change state.
func (a *Appointment) Terminal() bool {
	switch a.Status {
	case AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    string
	DateFrom  string
	DateTo    string
	Page      int
	PageSize  int
}

// AppointmentExportRow is one line of the admin CSV export, with names
// joined in so the export is readable without further lookups.
type AppointmentExportRow struct {
	ID              uuid.UUID
	AppointmentDate string
	AppointmentTime string
	Status          string
	Fee             int
	Currency        string
	DoctorName      string
	Specialty       string
	PatientName     string
	PatientEmail    string
	CreatedAt       time.Time
}
