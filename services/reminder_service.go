package services

import (
	"context"
	"fmt"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/repository"
	"go.uber.org/zap"
)

// ReminderService enqueues appointment reminders. It runs from the remind
// binary, typically on a daily schedule.
type ReminderService struct {
	appts         repository.AppointmentRepository
	notifications NotificationService
	logger        *zap.Logger
}

func NewReminderService(
	appts repository.AppointmentRepository,
	notifications NotificationService,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		appts:         appts,
		notifications: notifications,
		logger:        logger,
	}
}

// SendReminders enqueues one reminder per confirmed, not-yet-reminded
// appointment on the given date and marks each row so reruns are no-ops.
// It keeps going past individual failures and reports how many went out.
func (r *ReminderService) SendReminders(ctx context.Context, date string) (int, error) {
	appts, err := r.appts.FindDueReminders(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("load due reminders: %w", err)
	}

	sent := 0
	for i := range appts {
		appt := &appts[i]
		msg := fmt.Sprintf("Reminder: your appointment with %s is on %s at %s.",
			appt.Doctor.User.FullName(), appt.AppointmentDate, appt.AppointmentTime)

		err := r.notifications.EnqueueForUser(ctx, appt.PatientID,
			models.TypeAppointmentReminder, models.PriorityHigh, "Appointment reminder", msg)
		if err != nil {
			r.logger.Error("Reminder enqueue failed",
				zap.String("appointment_id", appt.ID.String()), zap.Error(err))
			continue
		}

		if err := r.appts.MarkReminderSent(ctx, appt.ID); err != nil {
			r.logger.Error("Reminder flag update failed",
				zap.String("appointment_id", appt.ID.String()), zap.Error(err))
			continue
		}
		sent++
	}

	r.logger.Info("Reminders enqueued",
		zap.String("date", date),
		zap.Int("count", sent),
		zap.Int("candidates", len(appts)),
	)
	return sent, nil
}
