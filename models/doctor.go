package models

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is the public profile attached to a doctor-role user.
type Doctor struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	Specialty       string `gorm:"size:100;not null;index" json:"specialty"`
	Qualification   string `gorm:"size:255" json:"qualification"`
	Bio             string `gorm:"type:text" json:"bio"`
	ExperienceYears int    `gorm:"default:0" json:"experience_years"`

	// ConsultationFee is in minor currency units (cents/paise).
	ConsultationFee int    `gorm:"not null" json:"consultation_fee"`
	Currency        string `gorm:"type:varchar(10);not null;default:'usd'" json:"currency"`

	City string `gorm:"size:100;index" json:"city"`

	// Daily working window and slot granularity used to generate bookable
	// slots. Times are "HH:MM" in the clinic's local day.
	WorkdayStart        string `gorm:"type:varchar(5);not null;default:'09:00'" json:"workday_start"`
	WorkdayEnd          string `gorm:"type:varchar(5);not null;default:'17:00'" json:"workday_end"`
	SlotDurationMinutes int    `gorm:"not null;default:30" json:"slot_duration_minutes"`

	IsActive bool `gorm:"default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// DoctorWithRating is a Doctor plus review aggregates for list/detail views.
type DoctorWithRating struct {
	Doctor
	DoctorName    string  `json:"doctor_name"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// Slot is one bookable interval in a doctor's day.
type Slot struct {
	Time      string `json:"time"` // "HH:MM"
	Available bool   `json:"available"`
}

// DoctorFilter narrows doctor listings.
type DoctorFilter struct {
	Specialty string
	City      string
	Search    string
	Page      int
	PageSize  int
}
