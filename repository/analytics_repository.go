package repository

import (
	"context"
	"time"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"gorm.io/gorm"
)

// AnalyticsRepository holds the admin-only aggregate queries.
type AnalyticsRepository interface {
	Overview(ctx context.Context) (*models.OverviewStats, error)
	AppointmentsByStatus(ctx context.Context, dateFrom, dateTo string) ([]models.StatusCount, error)
	AppointmentsPerDay(ctx context.Context, dateFrom, dateTo string) ([]models.DailyCount, error)
	TopDoctors(ctx context.Context, limit int) ([]models.TopDoctor, error)
	ChannelStats(ctx context.Context) ([]models.ChannelStats, error)
	QueueStats(ctx context.Context, now time.Time) (*models.QueueStats, error)
	ExportAppointments(ctx context.Context, dateFrom, dateTo string) ([]models.AppointmentExportRow, error)
}

type gormAnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &gormAnalyticsRepository{db: db}
}

func (r *gormAnalyticsRepository) Overview(ctx context.Context) (*models.OverviewStats, error) {
	db := r.db.WithContext(ctx)
	var stats models.OverviewStats

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, db.Model(&models.User{})},
		{&stats.TotalPatients, db.Model(&models.User{}).Where("role = ?", models.RolePatient)},
		{&stats.TotalDoctors, db.Model(&models.Doctor{}).Where("is_active = ?", true)},
		{&stats.TotalAppointments, db.Model(&models.Appointment{})},
		{&stats.TotalReviews, db.Model(&models.Review{})},
		{&stats.PendingQueue, db.Model(&models.QueueEntry{}).Where("processed = ?", false)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	err := db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentSucceeded).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.Revenue).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *gormAnalyticsRepository) AppointmentsByStatus(ctx context.Context, dateFrom, dateTo string) ([]models.StatusCount, error) {
	query := r.db.WithContext(ctx).Model(&models.Appointment{})
	if dateFrom != "" {
		query = query.Where("appointment_date >= ?", dateFrom)
	}
	if dateTo != "" {
		query = query.Where("appointment_date <= ?", dateTo)
	}

	var rows []models.StatusCount
	err := query.
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gormAnalyticsRepository) AppointmentsPerDay(ctx context.Context, dateFrom, dateTo string) ([]models.DailyCount, error) {
	query := r.db.WithContext(ctx).Model(&models.Appointment{})
	if dateFrom != "" {
		query = query.Where("appointment_date >= ?", dateFrom)
	}
	if dateTo != "" {
		query = query.Where("appointment_date <= ?", dateTo)
	}

	var rows []models.DailyCount
	err := query.
		Select("appointment_date AS day, COUNT(*) AS count").
		Group("appointment_date").
		Order("appointment_date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gormAnalyticsRepository) TopDoctors(ctx context.Context, limit int) ([]models.TopDoctor, error) {
	var rows []models.TopDoctor
	err := r.db.WithContext(ctx).
		Model(&models.Doctor{}).
		Joins("JOIN users ON users.id = doctors.user_id").
		Select(`doctors.id AS doctor_id,
			users.first_name || ' ' || users.last_name AS doctor_name,
			doctors.specialty,
			(SELECT COUNT(*) FROM appointments
				WHERE appointments.doctor_id = doctors.id
				AND appointments.status = ?) AS appointment_count,
			COALESCE((SELECT AVG(rating) FROM reviews
				WHERE reviews.doctor_id = doctors.id), 0) AS average_rating,
			COALESCE((SELECT SUM(appointments.fee) FROM appointments
				WHERE appointments.doctor_id = doctors.id
				AND appointments.status = ?), 0) AS revenue`,
			models.AppointmentCompleted, models.AppointmentCompleted).
		Where("doctors.is_active = ?", true).
		Order("appointment_count DESC, average_rating DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gormAnalyticsRepository) ChannelStats(ctx context.Context) ([]models.ChannelStats, error) {
	var rows []models.ChannelStats
	err := r.db.WithContext(ctx).
		Model(&models.DeliveryLog{}).
		Select(`channel,
			COUNT(*) AS attempts,
			COUNT(*) FILTER (WHERE success) AS successes,
			COUNT(*) FILTER (WHERE NOT success) AS failures`).
		Group("channel").
		Order("channel").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gormAnalyticsRepository) QueueStats(ctx context.Context, now time.Time) (*models.QueueStats, error) {
	db := r.db.WithContext(ctx).Model(&models.QueueEntry{})
	var stats models.QueueStats

	if err := db.Session(&gorm.Session{}).Where("processed = ?", false).Count(&stats.Pending).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Where("processed = ? AND next_attempt_at <= ?", false, now).Count(&stats.Due).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Where("processed = ?", true).Count(&stats.Processed).Error; err != nil {
		return nil, err
	}
	if err := db.Session(&gorm.Session{}).Where("processed = ? AND last_error <> ''", true).Count(&stats.Exhausted).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// ExportAppointments returns rows for the admin CSV export, names joined in.
func (r *gormAnalyticsRepository) ExportAppointments(ctx context.Context, dateFrom, dateTo string) ([]models.AppointmentExportRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Joins("JOIN doctors ON doctors.id = appointments.doctor_id").
		Joins("JOIN users doctor_users ON doctor_users.id = doctors.user_id").
		Joins("JOIN users patients ON patients.id = appointments.patient_id")
	if dateFrom != "" {
		query = query.Where("appointments.appointment_date >= ?", dateFrom)
	}
	if dateTo != "" {
		query = query.Where("appointments.appointment_date <= ?", dateTo)
	}

	var rows []models.AppointmentExportRow
	err := query.
		Select(`appointments.id,
			appointments.appointment_date,
			appointments.appointment_time,
			appointments.status,
			appointments.fee,
			appointments.currency,
			doctor_users.first_name || ' ' || doctor_users.last_name AS doctor_name,
			doctors.specialty,
			patients.first_name || ' ' || patients.last_name AS patient_name,
			patients.email AS patient_email,
			appointments.created_at`).
		Order("appointments.appointment_date, appointments.appointment_time").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
