package repository

import (
	"context"
	"errors"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSlotTaken is returned when a booking collides with an existing
// non-cancelled appointment for the same doctor, date and time.
var ErrSlotTaken = errors.New("appointment slot already booked")

type AppointmentRepository interface {
	CreateInSlot(ctx context.Context, appt *models.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	FindAll(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int64, error)
	Update(ctx context.Context, appt *models.Appointment) error
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)
	FindDueReminders(ctx context.Context, date string) ([]models.Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

type gormAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &gormAppointmentRepository{db: db}
}

// CreateInSlot inserts the appointment inside a transaction that first takes
// a row lock on the doctor, serializing concurrent bookings for the same
// doctor. The conflict check runs under that lock; the partial unique index
// on (doctor_id, appointment_date, appointment_time) remains the final
// arbiter, and a duplicate-key error from it is mapped to ErrSlotTaken.
func (r *gormAppointmentRepository) CreateInSlot(ctx context.Context, appt *models.Appointment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doctor models.Doctor
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&doctor, "id = ?", appt.DoctorID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Appointment{}).
			Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status <> ?",
				appt.DoctorID, appt.AppointmentDate, appt.AppointmentTime, models.AppointmentCancelled).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSlotTaken
		}

		return tx.Create(appt).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlotTaken
	}
	return err
}

func (r *gormAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Doctor.User").
		Preload("Patient").
		First(&appt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *gormAppointmentRepository) FindAll(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Appointment{})

	if filter.PatientID != uuid.Nil {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.DoctorID != uuid.Nil {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != "" {
		query = query.Where("appointment_date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("appointment_date <= ?", filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := models.PageBounds(filter.Page, filter.PageSize)
	var appts []models.Appointment
	err := query.
		Preload("Doctor").
		Preload("Doctor.User").
		Preload("Patient").
		Order("appointment_date DESC, appointment_time DESC").
		Limit(limit).
		Offset(offset).
		Find(&appts).Error
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (r *gormAppointmentRepository) Update(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(appt).Error
}

// BookedTimes lists occupied slot times for one doctor-day. Cancelled
// appointments free their slot.
func (r *gormAppointmentRepository) BookedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	var times []string
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND status <> ?",
			doctorID, date, models.AppointmentCancelled).
		Pluck("appointment_time", &times).Error
	return times, err
}

// FindDueReminders returns confirmed appointments on the given date that
// have not yet had a reminder sent.
func (r *gormAppointmentRepository) FindDueReminders(ctx context.Context, date string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Doctor.User").
		Preload("Patient").
		Where("appointment_date = ? AND status = ? AND reminder_sent = ?",
			date, models.AppointmentConfirmed, false).
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *gormAppointmentRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("reminder_sent", true).Error
}
