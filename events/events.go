package events

import (
	"time"

	"github.com/google/uuid"
)

// Event names published by the domain services.
const (
	UserRegistered       = "user.registered"
	AppointmentBooked    = "appointment.booked"
	AppointmentConfirmed = "appointment.confirmed"
	AppointmentCancelled = "appointment.cancelled"
	AppointmentCompleted = "appointment.completed"
	ReviewPosted         = "review.posted"
	PaymentReceived      = "payment.received"
	PaymentFailed        = "payment.failed"
)

// Event is the payload handed to subscribers. Not every field is set for
// every event; Name decides which entity IDs are meaningful.
type Event struct {
	Name         string
	UserID       uuid.UUID // primary recipient-side user (the patient)
	DoctorUserID uuid.UUID // user account behind the doctor profile
	DoctorID     uuid.UUID // doctor profile row, for slot-cache invalidation
	EntityID     uuid.UUID // appointment/review/payment row
	Amount       int       // minor units, payment events only
	Currency     string
	Rating       int    // review events only
	Date         string // "2006-01-02", appointment events
	Time         string // "HH:MM", appointment events
	Extra        string // free-form detail (doctor name, failure reason, ...)
	Timestamp    time.Time
}
