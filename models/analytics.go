package models

import "github.com/google/uuid"

// OverviewStats is the admin dashboard headline block.
type OverviewStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalPatients     int64 `json:"total_patients"`
	TotalDoctors      int64 `json:"total_doctors"`
	TotalAppointments int64 `json:"total_appointments"`
	TotalReviews      int64 `json:"total_reviews"`

	// Revenue is the sum of succeeded payments in minor units. Refunded
	// payments are excluded.
	Revenue int64 `json:"revenue"`

	PendingQueue int64 `json:"pending_queue"`
}

// StatusCount is one slice of the appointments-by-status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DailyCount is one day of the appointments-per-day series.
type DailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// TopDoctor is one row of the top-doctors board.
type TopDoctor struct {
	DoctorID         uuid.UUID `json:"doctor_id"`
	DoctorName       string    `json:"doctor_name"`
	Specialty        string    `json:"specialty"`
	AppointmentCount int64     `json:"appointment_count"`
	AverageRating    float64   `json:"average_rating"`
	Revenue          int64     `json:"revenue"`
}

// ChannelStats aggregates the delivery log per channel.
type ChannelStats struct {
	Channel   string `json:"channel"`
	Attempts  int64  `json:"attempts"`
	Successes int64  `json:"successes"`
	Failures  int64  `json:"failures"`
}

// QueueStats is the queue-health block of the notifications dashboard.
type QueueStats struct {
	Pending   int64 `json:"pending"`
	Due       int64 `json:"due"`
	Processed int64 `json:"processed"`
	Exhausted int64 `json:"exhausted"`
}
