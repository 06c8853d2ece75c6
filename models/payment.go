package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses mirror the Stripe intent lifecycle we care about.
const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Payment records one Stripe PaymentIntent for an appointment.
type Payment struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Amount   int    `gorm:"not null" json:"amount"` // minor units
	Currency string `gorm:"type:varchar(10);not null" json:"currency"`
	Status   string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	StripePaymentIntentID string  `gorm:"uniqueIndex;not null" json:"stripe_payment_intent_id"`
	StripeRefundID        *string `json:"stripe_refund_id,omitempty"`
	FailureReason         string  `gorm:"size:500" json:"failure_reason,omitempty"`

	// Last webhook event payload kept verbatim for audit and debugging.
	StripeEventPayload *string `gorm:"type:jsonb" json:"-"`

	SucceededAt *time.Time `json:"succeeded_at,omitempty"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Terminal reports whether the payment reached a final state. Webhook
// redelivery must not move a terminal payment.
func (p *Payment) Terminal() bool {
	switch p.Status {
	case PaymentSucceeded, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	UserID   uuid.UUID
	Status   string
	Page     int
	PageSize int
}
