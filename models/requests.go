package models

import "github.com/google/uuid"

// Request payloads bound by the API controllers.

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Gender      string `json:"gender" binding:"omitempty,oneof=male female other"`
	City        string `json:"city"`
	DateOfBirth string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest carries a partial profile update; nil fields are left
// untouched.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Phone       *string `json:"phone"`
	Gender      *string `json:"gender" binding:"omitempty,oneof=male female other"`
	City        *string `json:"city"`
	NotifyEmail *bool   `json:"notify_email"`
	NotifySMS   *bool   `json:"notify_sms"`
	NotifyPush  *bool   `json:"notify_push"`
	PushToken   *string `json:"push_token"`
}

// CreateDoctorRequest creates the doctor user account and profile together.
type CreateDoctorRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`

	Specialty           string `json:"specialty" binding:"required"`
	Qualification       string `json:"qualification"`
	Bio                 string `json:"bio"`
	ExperienceYears     int    `json:"experience_years" binding:"omitempty,min=0"`
	ConsultationFee     int    `json:"consultation_fee" binding:"required,min=0"`
	Currency            string `json:"currency"`
	City                string `json:"city"`
	WorkdayStart        string `json:"workday_start" binding:"omitempty,datetime=15:04"`
	WorkdayEnd          string `json:"workday_end" binding:"omitempty,datetime=15:04"`
	SlotDurationMinutes int    `json:"slot_duration_minutes" binding:"omitempty,min=5,max=240"`
}

type UpdateDoctorRequest struct {
	Specialty           *string `json:"specialty"`
	Qualification       *string `json:"qualification"`
	Bio                 *string `json:"bio"`
	ExperienceYears     *int    `json:"experience_years" binding:"omitempty,min=0"`
	ConsultationFee     *int    `json:"consultation_fee" binding:"omitempty,min=0"`
	Currency            *string `json:"currency"`
	City                *string `json:"city"`
	WorkdayStart        *string `json:"workday_start" binding:"omitempty,datetime=15:04"`
	WorkdayEnd          *string `json:"workday_end" binding:"omitempty,datetime=15:04"`
	SlotDurationMinutes *int    `json:"slot_duration_minutes" binding:"omitempty,min=5,max=240"`
	IsActive            *bool   `json:"is_active"`
}

type BookAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	AppointmentDate string    `json:"appointment_date" binding:"required,datetime=2006-01-02"`
	AppointmentTime string    `json:"appointment_time" binding:"required,datetime=15:04"`
	Notes           string    `json:"notes"`
}

type CreateReviewRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" binding:"required"`
	Rating        int       `json:"rating" binding:"required,min=1,max=5"`
	Comment       string    `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment"`
}

type CreatePaymentIntentRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" binding:"required"`
}

type RefundRequest struct {
	Reason string `json:"reason"`
}
