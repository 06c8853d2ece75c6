package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/events"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/repository"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentIntentResponse is what the client needs to confirm the payment.
type PaymentIntentResponse struct {
	PaymentID       uuid.UUID `json:"payment_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	ClientSecret    string    `json:"client_secret"`
	Amount          int       `json:"amount"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
}

type PaymentService interface {
	CreateIntent(ctx context.Context, patientID uuid.UUID, req *models.CreatePaymentIntentRequest) (*PaymentIntentResponse, *ServiceError)
	Get(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Payment, *ServiceError)
	List(ctx context.Context, actorID uuid.UUID, actorRole string, filter models.PaymentFilter) ([]models.Payment, int64, *ServiceError)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) *ServiceError
	Refund(ctx context.Context, paymentID uuid.UUID, note string) (*models.Payment, *ServiceError)
	RefundForAppointment(ctx context.Context, appointmentID uuid.UUID) error
}

type paymentServiceImpl struct {
	payments repository.PaymentRepository
	appts    repository.AppointmentRepository
	stripe   StripeClient
	bus      *events.Bus
	logger   *zap.Logger
}

func NewPaymentService(
	payments repository.PaymentRepository,
	appts repository.AppointmentRepository,
	stripeClient StripeClient,
	bus *events.Bus,
	logger *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		payments: payments,
		appts:    appts,
		stripe:   stripeClient,
		bus:      bus,
		logger:   logger,
	}
}

// CreateIntent creates (or re-serves) the Stripe PaymentIntent for an
// appointment. One payment row per appointment: a pending intent is reused,
// a failed one is replaced, a succeeded one rejects with 409.
func (s *paymentServiceImpl) CreateIntent(ctx context.Context, patientID uuid.UUID, req *models.CreatePaymentIntentRequest) (*PaymentIntentResponse, *ServiceError) {
	appt, err := s.appts.FindByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Appointment not found"}
		}
		s.logger.Error("CreateIntent appointment lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create payment"}
	}
	if appt.PatientID != patientID {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "You can only pay for your own appointments"}
	}
	if appt.Status != models.AppointmentBooked && appt.Status != models.AppointmentConfirmed {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Appointment is not payable in its current state"}
	}

	existing, err := s.payments.FindByAppointmentID(ctx, req.AppointmentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("CreateIntent payment lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create payment"}
	}

	if existing != nil {
		switch existing.Status {
		case models.PaymentSucceeded, models.PaymentRefunded:
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Appointment already paid"}
		case models.PaymentPending:
			pi, gerr := s.stripe.GetIntent(existing.StripePaymentIntentID)
			if gerr != nil {
				s.logger.Error("CreateIntent stripe fetch failed", zap.Error(gerr))
				return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: "Failed to reach payment provider"}
			}
			return intentResponse(existing, pi), nil
		}
		// Failed: fall through and attach a fresh intent to the same row.
	}

	pi, serr := s.stripe.CreateIntent(int64(appt.Fee), appt.Currency, map[string]string{
		"appointment_id": appt.ID.String(),
		"user_id":        patientID.String(),
	})
	if serr != nil {
		s.logger.Error("CreateIntent stripe create failed", zap.Error(serr))
		return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: "Failed to reach payment provider"}
	}

	if existing != nil {
		existing.StripePaymentIntentID = pi.ID
		existing.Status = models.PaymentPending
		existing.FailureReason = ""
		if err := s.payments.Update(ctx, existing); err != nil {
			s.logger.Error("CreateIntent payment update failed", zap.Error(err))
			return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to save payment"}
		}
		return intentResponse(existing, pi), nil
	}

	payment := &models.Payment{
		AppointmentID:         appt.ID,
		UserID:                patientID,
		Amount:                appt.Fee,
		Currency:              appt.Currency,
		Status:                models.PaymentPending,
		StripePaymentIntentID: pi.ID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		s.logger.Error("CreateIntent payment create failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to save payment"}
	}
	return intentResponse(payment, pi), nil
}

func (s *paymentServiceImpl) Get(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Payment, *ServiceError) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Payment not found"}
		}
		s.logger.Error("Payment lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load payment"}
	}
	if actorRole != models.RoleAdmin && payment.UserID != actorID {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Not allowed to view this payment"}
	}
	return payment, nil
}

func (s *paymentServiceImpl) List(ctx context.Context, actorID uuid.UUID, actorRole string, filter models.PaymentFilter) ([]models.Payment, int64, *ServiceError) {
	if actorRole != models.RoleAdmin {
		filter.UserID = actorID
	}
	payments, total, err := s.payments.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Payment list failed", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to list payments"}
	}
	return payments, total, nil
}

// HandleWebhook applies Stripe's delivery to the local payment row. Terminal
// rows are never moved again, so redelivered events are no-ops.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) *ServiceError {
	event, err := s.stripe.VerifyWebhook(payload, sigHeader)
	if err != nil {
		s.logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid webhook"}
	}

	s.logger.Info("Processing Stripe webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	switch event.Type {
	case "payment_intent.succeeded":
		s.applyIntentStatus(ctx, event, models.PaymentSucceeded)
	case "payment_intent.payment_failed":
		s.applyIntentStatus(ctx, event, models.PaymentFailed)
	case "charge.refunded":
		s.applyChargeRefund(ctx, event)
	default:
		s.logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
	}

	return nil
}

func (s *paymentServiceImpl) applyIntentStatus(ctx context.Context, event stripe.Event, status string) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		s.logger.Error("Failed to unmarshal payment intent", zap.Error(err))
		return
	}

	payment, err := s.payments.FindByIntentID(ctx, pi.ID)
	if err != nil {
		s.logger.Error("Payment not found for PaymentIntent",
			zap.String("payment_intent_id", pi.ID), zap.Error(err))
		return
	}

	if payment.Terminal() {
		s.logger.Info("Skipping duplicate payment webhook",
			zap.String("payment_id", payment.ID.String()),
			zap.String("status", payment.Status),
		)
		return
	}

	now := time.Now().UTC()
	rawPayload, _ := json.Marshal(event)
	raw := string(rawPayload)

	payment.Status = status
	payment.StripeEventPayload = &raw
	switch status {
	case models.PaymentSucceeded:
		payment.SucceededAt = &now
	case models.PaymentFailed:
		if pi.LastPaymentError != nil {
			payment.FailureReason = pi.LastPaymentError.Msg
		}
	}

	if err := s.payments.Update(ctx, payment); err != nil {
		s.logger.Error("Failed to update payment status",
			zap.String("payment_id", payment.ID.String()), zap.Error(err))
		return
	}

	eventName := events.PaymentReceived
	if status == models.PaymentFailed {
		eventName = events.PaymentFailed
	}
	s.bus.Publish(ctx, events.Event{
		Name:      eventName,
		UserID:    payment.UserID,
		EntityID:  payment.ID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Extra:     payment.FailureReason,
		Timestamp: now,
	})
}

func (s *paymentServiceImpl) applyChargeRefund(ctx context.Context, event stripe.Event) {
	var ch stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
		s.logger.Error("Failed to unmarshal charge", zap.Error(err))
		return
	}
	if ch.PaymentIntent == nil {
		return
	}

	payment, err := s.payments.FindByIntentID(ctx, ch.PaymentIntent.ID)
	if err != nil {
		s.logger.Error("Payment not found for refunded charge",
			zap.String("payment_intent_id", ch.PaymentIntent.ID), zap.Error(err))
		return
	}
	if payment.Status == models.PaymentRefunded {
		return
	}

	now := time.Now().UTC()
	rawPayload, _ := json.Marshal(event)
	raw := string(rawPayload)

	payment.Status = models.PaymentRefunded
	payment.RefundedAt = &now
	payment.StripeEventPayload = &raw
	if err := s.payments.Update(ctx, payment); err != nil {
		s.logger.Error("Failed to record refund",
			zap.String("payment_id", payment.ID.String()), zap.Error(err))
	}
}

// Refund pushes a full refund through Stripe and closes the payment row.
// Admin-only; cancellation auto-refunds go through RefundForAppointment.
func (s *paymentServiceImpl) Refund(ctx context.Context, paymentID uuid.UUID, note string) (*models.Payment, *ServiceError) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Payment not found"}
		}
		s.logger.Error("Refund lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to refund payment"}
	}
	if payment.Status != models.PaymentSucceeded {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Only succeeded payments can be refunded"}
	}

	re, err := s.stripe.CreateRefund(payment.StripePaymentIntentID, note)
	if err != nil {
		s.logger.Error("Stripe refund failed",
			zap.String("payment_id", payment.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: "Failed to refund via payment provider"}
	}

	now := time.Now().UTC()
	payment.Status = models.PaymentRefunded
	payment.RefundedAt = &now
	payment.StripeRefundID = &re.ID
	if err := s.payments.Update(ctx, payment); err != nil {
		s.logger.Error("Refund persist failed",
			zap.String("payment_id", payment.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Refund issued but not recorded"}
	}

	s.logger.Info("Payment refunded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("refund_id", re.ID),
	)
	return payment, nil
}

// RefundForAppointment refunds the appointment's payment if one succeeded.
// Wired to the cancellation event; missing or unpaid payments are fine.
func (s *paymentServiceImpl) RefundForAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	payment, err := s.payments.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if payment.Status != models.PaymentSucceeded {
		return nil
	}
	_, svcErr := s.Refund(ctx, payment.ID, "appointment cancelled")
	if svcErr != nil {
		return svcErr
	}
	return nil
}

func intentResponse(p *models.Payment, pi *stripe.PaymentIntent) *PaymentIntentResponse {
	resp := &PaymentIntentResponse{
		PaymentID:       p.ID,
		PaymentIntentID: p.StripePaymentIntentID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Status:          p.Status,
	}
	if pi != nil {
		resp.ClientSecret = pi.ClientSecret
	}
	return resp
}
