package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// User is an account on the platform. Patients self-register; doctor and
// admin accounts are created by admins.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Role      string    `gorm:"type:varchar(20);not null;default:'patient';index" json:"role"`

	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      string     `gorm:"size:10" json:"gender,omitempty"`
	City        string     `gorm:"size:100" json:"city,omitempty"`

	// Per-channel delivery preferences. A channel is only attempted when the
	// user opted in and has the matching contact detail.
	NotifyEmail bool   `gorm:"default:true" json:"notify_email"`
	NotifySMS   bool   `gorm:"default:false" json:"notify_sms"`
	NotifyPush  bool   `gorm:"default:false" json:"notify_push"`
	PushToken   string `gorm:"size:255" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FullName joins first and last name for display and exports.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// RefreshToken stores issued refresh tokens for rotation and revocation.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TokenID   string    `gorm:"uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Revoked   bool      `gorm:"default:false"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Migrate runs auto-migration for all platform models plus the raw-SQL
// constraints AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Doctor{},
		&Appointment{},
		&Review{},
		&Payment{},
		&Notification{},
		&QueueEntry{},
		&DeliveryLog{},
	); err != nil {
		return err
	}

	// Slot uniqueness among non-cancelled appointments. This partial index is
	// the actual correctness guard under concurrent bookings; the service
	// layer's pre-check only exists to return a friendly 409 early.
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_slot
		ON appointments (doctor_id, appointment_date, appointment_time)
		WHERE status <> 'cancelled'
	`).Error
}
