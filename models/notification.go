package models

import (
	"time"

	"github.com/google/uuid"
)

// Delivery channels.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelPush  = "push"
)

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification types.
const (
	TypeWelcome              = "welcome"
	TypeAppointmentBooked    = "appointment_booked"
	TypeAppointmentConfirmed = "appointment_confirmed"
	TypeAppointmentCancelled = "appointment_cancelled"
	TypeAppointmentCompleted = "appointment_completed"
	TypeAppointmentReminder  = "appointment_reminder"
	TypeReviewPosted         = "review_posted"
	TypePaymentReceived      = "payment_received"
	TypePaymentFailed        = "payment_failed"
)

// DefaultMaxAttempts is how many delivery rounds a queue entry gets before
// it is abandoned.
const DefaultMaxAttempts = 3

// Notification is one message addressed to a user. Rows are created by
// domain events, mutated by the queue processor, and never deleted.
type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Type     string `gorm:"type:varchar(40);not null;index" json:"type"`
	Priority string `gorm:"type:varchar(10);not null;default:'normal'" json:"priority"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Message  string `gorm:"type:text;not null" json:"message"`

	// Requested: which channels delivery was asked on, resolved from the
	// user's preferences at enqueue time. Sent: which of those succeeded.
	EmailRequested bool `gorm:"default:false" json:"email_requested"`
	SMSRequested   bool `gorm:"default:false" json:"sms_requested"`
	PushRequested  bool `gorm:"default:false" json:"push_requested"`
	EmailSent      bool `gorm:"default:false" json:"email_sent"`
	SMSSent        bool `gorm:"default:false" json:"sms_sent"`
	PushSent       bool `gorm:"default:false" json:"push_sent"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
	SentAt *time.Time `json:"sent_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// RequestedChannels lists the channels delivery was asked on.
func (n *Notification) RequestedChannels() []string {
	var chans []string
	if n.EmailRequested {
		chans = append(chans, ChannelEmail)
	}
	if n.SMSRequested {
		chans = append(chans, ChannelSMS)
	}
	if n.PushRequested {
		chans = append(chans, ChannelPush)
	}
	return chans
}

// PendingChannels lists requested channels that have not succeeded yet, so
// retries skip channels already delivered.
func (n *Notification) PendingChannels() []string {
	var chans []string
	if n.EmailRequested && !n.EmailSent {
		chans = append(chans, ChannelEmail)
	}
	if n.SMSRequested && !n.SMSSent {
		chans = append(chans, ChannelSMS)
	}
	if n.PushRequested && !n.PushSent {
		chans = append(chans, ChannelPush)
	}
	return chans
}

// MarkChannelSent flips the sent flag for one channel.
func (n *Notification) MarkChannelSent(channel string) {
	switch channel {
	case ChannelEmail:
		n.EmailSent = true
	case ChannelSMS:
		n.SMSSent = true
	case ChannelPush:
		n.PushSent = true
	}
}

// Delivered reports whether every requested channel has been sent.
func (n *Notification) Delivered() bool {
	return len(n.PendingChannels()) == 0
}

// QueueEntry is one notification awaiting dispatch. A row is terminal once
// Processed is true: either every requested channel succeeded or the
// attempt budget ran out.
type QueueEntry struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	NotificationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"notification_id"`

	Attempts      int       `gorm:"default:0" json:"attempts"`
	MaxAttempts   int       `gorm:"not null;default:3" json:"max_attempts"`
	NextAttemptAt time.Time `gorm:"not null;index" json:"next_attempt_at"`
	LastError     string    `gorm:"size:500" json:"last_error,omitempty"`
	Processed     bool      `gorm:"default:false;index" json:"processed"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Notification Notification `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"-"`
}

// RetryBackoff is the delay before retry n (1-based): 5·3^(n-1) minutes,
// i.e. 5m, 15m, 45m, ...
func RetryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := 5 * time.Minute
	for i := 1; i < attempt; i++ {
		d *= 3
	}
	return d
}

// IncrementAttempts records a failed delivery round: it reschedules with
// exponential backoff, or marks the entry processed once the budget is
// exhausted.
func (q *QueueEntry) IncrementAttempts(now time.Time, lastErr string) {
	q.Attempts++
	q.LastError = lastErr
	if q.Attempts >= q.MaxAttempts {
		q.Processed = true
		return
	}
	q.NextAttemptAt = now.Add(RetryBackoff(q.Attempts))
}

// MarkDelivered closes the entry after every requested channel succeeded.
func (q *QueueEntry) MarkDelivered() {
	q.Processed = true
	q.LastError = ""
}

// Exhausted reports whether the entry was closed without full delivery. The
// processor clears LastError on success, so a processed entry with an error
// left on it ran out of attempts.
func (q *QueueEntry) Exhausted() bool {
	return q.Processed && q.LastError != ""
}

// DeliveryLog is the audit trail: one row per channel attempt.
type DeliveryLog struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	NotificationID uuid.UUID `gorm:"type:uuid;not null;index" json:"notification_id"`

	Channel    string `gorm:"type:varchar(10);not null;index" json:"channel"`
	Recipient  string `gorm:"size:255" json:"recipient"`
	Success    bool   `gorm:"not null;index" json:"success"`
	Error      string `gorm:"size:500" json:"error,omitempty"`
	ProviderID string `gorm:"size:255" json:"provider_id,omitempty"`
	Attempt    int    `gorm:"not null" json:"attempt"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// NotificationFilter narrows notification listings.
type NotificationFilter struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Page       int
	PageSize   int
}

// DeliveryLogFilter narrows the admin delivery-log listing.
type DeliveryLogFilter struct {
	UserID   uuid.UUID
	Channel  string
	Success  *bool
	Page     int
	PageSize int
}

// Queue inspection states.
const (
	QueueStatePending   = "pending"
	QueueStateDue       = "due"
	QueueStateProcessed = "processed"
	QueueStateExhausted = "exhausted"
)

// QueueEntryFilter narrows the admin queue inspection listing.
type QueueEntryFilter struct {
	State    string
	Page     int
	PageSize int
}
