package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/events"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// notificationRule maps one domain event to the notification rows it
// produces. patientMsg addresses the event's primary user; doctorMsg, when
// set, produces a second row for the doctor-side account.
type notificationRule struct {
	notifType  string
	priority   string
	title      string
	patientMsg func(ev events.Event) string

	doctorTitle string
	doctorMsg   func(ev events.Event) string
}

var notificationRules = map[string]notificationRule{
	events.UserRegistered: {
		notifType: models.TypeWelcome,
		priority:  models.PriorityLow,
		title:     "Welcome to WellCarePlusCure",
		patientMsg: func(ev events.Event) string {
			return fmt.Sprintf("Hi %s, your account is ready. You can browse doctors and book appointments right away.", ev.Extra)
		},
	},
	events.AppointmentBooked: {
		notifType: models.TypeAppointmentBooked,
		priority:  models.PriorityNormal,
		title:     "Appointment booked",
		patientMsg: func(ev events.Event) string {
			return fmt.Sprintf("Your appointment with %s on %s at %s is booked.", ev.Extra, ev.Date, ev.Time)
		},
		doctorTitle: "New appointment",
		doctorMsg: func(ev events.Event) string {
			return fmt.Sprintf("A patient booked %s at %s.", ev.Date, ev.Time)
		},
	},
	events.AppointmentConfirmed: {
		notifType: models.TypeAppointmentConfirmed,
		priority:  models.PriorityNormal,
		title:     "Appointment confirmed",
		patientMsg: func(ev events.Event) string {
			return fmt.Sprintf("Your appointment with %s on %s at %s is confirmed.", ev.Extra, ev.Date, ev.Time)
		},
	},
	events.AppointmentCancelled: {
		notifType: models.TypeAppointmentCancelled,
		priority:  models.PriorityHigh,
		title:     "Appointment cancelled",
		patientMsg: func(ev events.Event) string {
			return fmt.Sprintf("Your appointment with %s on %s at %s was cancelled.", ev.Extra, ev.Date, ev.Time)
		},
		doctorTitle: "Appointment cancelled",
		doctorMsg: func(ev events.Event) string {
			return fmt.Sprintf("The appointment on %s at %s was cancelled.", ev.Date, ev.Time)
		},
	},
	events.AppointmentCompleted: {
		notifType: models.TypeAppointmentCompleted,
		priority:  models.PriorityNormal,
		title:     "Appointment completed",
		patientMsg: func(ev events.Event) string {
			return fmt.Sprintf("Your appointment with %s is complete. You can now leave a review.", ev.Extra)
		},
	},
	events.ReviewPosted: {
		notifType:   models.TypeReviewPosted,
		priority:    models.PriorityNormal,
		doctorTitle: "New review",
		doctorMsg: func(ev events.Event) string {
			return fmt.Sprintf("You received a new %d-star review.", ev.Rating)
		},
	},
	events.PaymentReceived: {
		notifType: models.TypePaymentReceived,
		priority:  models.PriorityNormal,
		title:     "Payment received",
		patientMsg: func(ev events.Event) string {
			return fmt.Sprintf("Your payment of %s was received. Thank you.", formatAmount(ev.Amount, ev.Currency))
		},
	},
	events.PaymentFailed: {
		notifType: models.TypePaymentFailed,
		priority:  models.PriorityUrgent,
		title:     "Payment failed",
		patientMsg: func(ev events.Event) string {
			if ev.Extra != "" {
				return fmt.Sprintf("Your payment of %s failed: %s. Please try again.", formatAmount(ev.Amount, ev.Currency), ev.Extra)
			}
			return fmt.Sprintf("Your payment of %s failed. Please try again.", formatAmount(ev.Amount, ev.Currency))
		},
	},
}

type NotificationService interface {
	RegisterHandlers(bus *events.Bus)
	EnqueueForUser(ctx context.Context, userID uuid.UUID, notifType, priority, title, message string) error

	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, *ServiceError)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, *ServiceError)
	MarkRead(ctx context.Context, id, userID uuid.UUID) *ServiceError
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, *ServiceError)
	Logs(ctx context.Context, filter models.DeliveryLogFilter) ([]models.DeliveryLog, int64, *ServiceError)
	QueueEntries(ctx context.Context, filter models.QueueEntryFilter) ([]models.QueueEntry, int64, *ServiceError)
}

type notificationServiceImpl struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	logger        *zap.Logger
}

func NewNotificationService(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	logger *zap.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notifications: notifications,
		users:         users,
		logger:        logger,
	}
}

// RegisterHandlers subscribes one handler per rule. Handlers run on the
// publishing request's goroutine and only write rows; delivery happens in
// the queue processor.
func (s *notificationServiceImpl) RegisterHandlers(bus *events.Bus) {
	for name := range notificationRules {
		rule := notificationRules[name]
		bus.Subscribe(name, func(ctx context.Context, ev events.Event) {
			s.applyRule(ctx, rule, ev)
		})
	}
}

func (s *notificationServiceImpl) applyRule(ctx context.Context, rule notificationRule, ev events.Event) {
	if rule.patientMsg != nil && ev.UserID != uuid.Nil {
		if err := s.EnqueueForUser(ctx, ev.UserID, rule.notifType, rule.priority, rule.title, rule.patientMsg(ev)); err != nil {
			s.logger.Error("Failed to enqueue notification",
				zap.String("event", ev.Name),
				zap.String("user_id", ev.UserID.String()),
				zap.Error(err),
			)
		}
	}
	if rule.doctorMsg != nil && ev.DoctorUserID != uuid.Nil {
		if err := s.EnqueueForUser(ctx, ev.DoctorUserID, rule.notifType, rule.priority, rule.doctorTitle, rule.doctorMsg(ev)); err != nil {
			s.logger.Error("Failed to enqueue notification",
				zap.String("event", ev.Name),
				zap.String("user_id", ev.DoctorUserID.String()),
				zap.Error(err),
			)
		}
	}
}

// EnqueueForUser writes the notification plus its queue entry. Channels are
// resolved from the user's preferences at enqueue time: a channel is
// requested only when opted in and the contact detail exists.
func (s *notificationServiceImpl) EnqueueForUser(ctx context.Context, userID uuid.UUID, notifType, priority, title, message string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("recipient lookup: %w", err)
	}

	n := &models.Notification{
		UserID:   user.ID,
		Type:     notifType,
		Priority: priority,
		Title:    title,
		Message:  message,

		EmailRequested: user.NotifyEmail && user.Email != "",
		SMSRequested:   user.NotifySMS && user.Phone != "",
		PushRequested:  user.NotifyPush && user.PushToken != "",
	}
	entry := &models.QueueEntry{
		MaxAttempts:   models.DefaultMaxAttempts,
		NextAttemptAt: time.Now().UTC(),
	}

	if err := s.notifications.CreateWithEntry(ctx, n, entry); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	s.logger.Info("Notification enqueued",
		zap.String("notification_id", n.ID.String()),
		zap.String("type", notifType),
		zap.Strings("channels", n.RequestedChannels()),
	)
	return nil
}

func (s *notificationServiceImpl) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, *ServiceError) {
	notifications, total, err := s.notifications.FindByUser(ctx, filter)
	if err != nil {
		s.logger.Error("Notification list failed", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to list notifications"}
	}
	return notifications, total, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, *ServiceError) {
	count, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		s.logger.Error("Unread count failed", zap.Error(err))
		return 0, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to count notifications"}
	}
	return count, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, id, userID uuid.UUID) *ServiceError {
	affected, err := s.notifications.MarkRead(ctx, id, userID)
	if err != nil {
		s.logger.Error("Mark read failed", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update notification"}
	}
	if affected == 0 {
		return &ServiceError{StatusCode: http.StatusNotFound, Message: "Notification not found"}
	}
	return nil
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, *ServiceError) {
	affected, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		s.logger.Error("Mark all read failed", zap.Error(err))
		return 0, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update notifications"}
	}
	return affected, nil
}

func (s *notificationServiceImpl) Logs(ctx context.Context, filter models.DeliveryLogFilter) ([]models.DeliveryLog, int64, *ServiceError) {
	logs, total, err := s.notifications.FindLogs(ctx, filter)
	if err != nil {
		s.logger.Error("Delivery log list failed", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to list delivery logs"}
	}
	return logs, total, nil
}

func (s *notificationServiceImpl) QueueEntries(ctx context.Context, filter models.QueueEntryFilter) ([]models.QueueEntry, int64, *ServiceError) {
	entries, total, err := s.notifications.ListEntries(ctx, time.Now().UTC(), filter)
	if err != nil {
		s.logger.Error("Queue listing failed", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to list queue entries"}
	}
	return entries, total, nil
}

// formatAmount renders minor units for notification text, e.g. 2500 usd
// becomes "25.00 USD".
func formatAmount(minor int, currency string) string {
	cur := currency
	if cur == "" {
		cur = "usd"
	}
	return fmt.Sprintf("%d.%02d %s", minor/100, minor%100, strings.ToUpper(cur))
}
