package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/events"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AppointmentService interface {
	Book(ctx context.Context, patientID uuid.UUID, req *models.BookAppointmentRequest) (*models.Appointment, *ServiceError)
	Get(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Appointment, *ServiceError)
	List(ctx context.Context, actorID uuid.UUID, actorRole string, filter models.AppointmentFilter) ([]models.Appointment, int64, *ServiceError)
	Cancel(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Appointment, *ServiceError)
	Confirm(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Appointment, *ServiceError)
	Complete(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Appointment, *ServiceError)
	MarkNoShow(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Appointment, *ServiceError)
}

type appointmentServiceImpl struct {
	appts   repository.AppointmentRepository
	doctors repository.DoctorRepository
	bus     *events.Bus
	logger  *zap.Logger
}

func NewAppointmentService(
	appts repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	bus *events.Bus,
	logger *zap.Logger,
) AppointmentService {
	return &appointmentServiceImpl{
		appts:   appts,
		doctors: doctors,
		bus:     bus,
		logger:  logger,
	}
}

// Book places a patient into a doctor's slot. The conflict answer comes from
// the repository's locked insert; a lost race surfaces as 409, never as a
// raw constraint error.
func (s *appointmentServiceImpl) Book(ctx context.Context, patientID uuid.UUID, req *models.BookAppointmentRequest) (*models.Appointment, *ServiceError) {
	doctor, err := s.doctors.FindByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Doctor not found"}
		}
		s.logger.Error("Book doctor lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to book appointment"}
	}
	if !doctor.IsActive {
		return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Doctor not found"}
	}

	when, perr := time.Parse("2006-01-02 15:04", req.AppointmentDate+" "+req.AppointmentTime)
	if perr != nil {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid appointment date or time"}
	}
	if !when.After(time.Now().UTC()) {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Appointment must be in the future"}
	}
	if !slotOnGrid(doctor, req.AppointmentTime) {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Time does not match the doctor's slot schedule"}
	}

	appt := &models.Appointment{
		DoctorID:        doctor.ID,
		PatientID:       patientID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Status:          models.AppointmentBooked,
		Fee:             doctor.ConsultationFee,
		Currency:        doctor.Currency,
		Notes:           req.Notes,
	}

	if err := s.appts.CreateInSlot(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Slot already booked"}
		}
		s.logger.Error("Book insert failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to book appointment"}
	}

	s.publish(ctx, events.AppointmentBooked, appt, doctor)
	return appt, nil
}

func (s *appointmentServiceImpl) Get(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Appointment, *ServiceError) {
	appt, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !canSee(appt, actorID, actorRole) {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Not allowed to view this appointment"}
	}
	return appt, nil
}

// List scopes results to the caller: patients see their own bookings,
// doctors their own schedule, admins everything.
func (s *appointmentServiceImpl) List(ctx context.Context, actorID uuid.UUID, actorRole string, filter models.AppointmentFilter) ([]models.Appointment, int64, *ServiceError) {
	switch actorRole {
	case models.RoleAdmin:
		// filter passes through untouched
	case models.RoleDoctor:
		doctor, err := s.doctors.FindByUserID(ctx, actorID)
		if err != nil {
			return nil, 0, &ServiceError{StatusCode: http.StatusForbidden, Message: "No doctor profile for this account"}
		}
		filter.DoctorID = doctor.ID
		filter.PatientID = uuid.Nil
	default:
		filter.PatientID = actorID
		filter.DoctorID = uuid.Nil
	}

	appts, total, err := s.appts.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Appointment list failed", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to list appointments"}
	}
	return appts, total, nil
}

func (s *appointmentServiceImpl) Cancel(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Appointment, *ServiceError) {
	appt, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !canMutate(appt, actorID, actorRole, false) {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Not allowed to cancel this appointment"}
	}
	if appt.Terminal() {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Appointment is already " + appt.Status}
	}

	now := time.Now().UTC()
	appt.Status = models.AppointmentCancelled
	appt.CancelledAt = &now
	if err := s.appts.Update(ctx, appt); err != nil {
		s.logger.Error("Cancel update failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to cancel appointment"}
	}

	s.publish(ctx, events.AppointmentCancelled, appt, &appt.Doctor)
	return appt, nil
}

// Confirm moves booked → confirmed. Doctor-side or admin only.
func (s *appointmentServiceImpl) Confirm(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Appointment, *ServiceError) {
	return s.transition(ctx, id, actorID, actorRole, events.AppointmentConfirmed,
		models.AppointmentConfirmed, "confirm", []string{models.AppointmentBooked})
}

// Complete moves booked/confirmed → completed and stamps CompletedAt.
func (s *appointmentServiceImpl) Complete(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Appointment, *ServiceError) {
	return s.transition(ctx, id, actorID, actorRole, events.AppointmentCompleted,
		models.AppointmentCompleted, "complete", []string{models.AppointmentBooked, models.AppointmentConfirmed})
}

// MarkNoShow records that the patient never arrived. No notification goes
// out for this one.
func (s *appointmentServiceImpl) MarkNoShow(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Appointment, *ServiceError) {
	return s.transition(ctx, id, actorID, actorRole, "",
		models.AppointmentNoShow, "mark no-show on", []string{models.AppointmentBooked, models.AppointmentConfirmed})
}

func (s *appointmentServiceImpl) transition(
	ctx context.Context,
	id, actorID uuid.UUID,
	actorRole, eventName, toStatus, verb string,
	fromStatuses []string,
) (*models.Appointment, *ServiceError) {
	appt, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !canMutate(appt, actorID, actorRole, true) {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Not allowed to " + verb + " this appointment"}
	}

	allowed := false
	for _, from := range fromStatuses {
		if appt.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Cannot " + verb + " a " + appt.Status + " appointment"}
	}

	appt.Status = toStatus
	if toStatus == models.AppointmentCompleted {
		now := time.Now().UTC()
		appt.CompletedAt = &now
	}
	if err := s.appts.Update(ctx, appt); err != nil {
		s.logger.Error("Appointment transition failed",
			zap.String("to", toStatus), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update appointment"}
	}

	if eventName != "" {
		s.publish(ctx, eventName, appt, &appt.Doctor)
	}
	return appt, nil
}

func (s *appointmentServiceImpl) load(ctx context.Context, id uuid.UUID) (*models.Appointment, *ServiceError) {
	appt, err := s.appts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Appointment not found"}
		}
		s.logger.Error("Appointment lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load appointment"}
	}
	return appt, nil
}

func (s *appointmentServiceImpl) publish(ctx context.Context, name string, appt *models.Appointment, doctor *models.Doctor) {
	s.bus.Publish(ctx, events.Event{
		Name:         name,
		UserID:       appt.PatientID,
		DoctorUserID: doctor.UserID,
		DoctorID:     appt.DoctorID,
		EntityID:     appt.ID,
		Amount:       appt.Fee,
		Currency:     appt.Currency,
		Date:         appt.AppointmentDate,
		Time:         appt.AppointmentTime,
		Extra:        doctor.User.FullName(),
		Timestamp:    time.Now().UTC(),
	})
}

// canSee: patients and doctors see their own appointments, admins all.
func canSee(appt *models.Appointment, actorID uuid.UUID, actorRole string) bool {
	if actorRole == models.RoleAdmin {
		return true
	}
	if appt.PatientID == actorID {
		return true
	}
	return appt.Doctor.UserID == actorID
}

// canMutate gates state changes. Patients may cancel their own appointment
// but never confirm/complete it; those are doctor-side transitions.
func canMutate(appt *models.Appointment, actorID uuid.UUID, actorRole string, doctorSide bool) bool {
	if actorRole == models.RoleAdmin {
		return true
	}
	if doctorSide {
		return actorRole == models.RoleDoctor && appt.Doctor.UserID == actorID
	}
	if appt.PatientID == actorID {
		return true
	}
	return actorRole == models.RoleDoctor && appt.Doctor.UserID == actorID
}

// slotOnGrid checks the requested time against the doctor's slot schedule:
// inside the workday window and aligned to the slot duration.
func slotOnGrid(doctor *models.Doctor, hm string) bool {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return false
	}
	start, err := time.Parse("15:04", doctor.WorkdayStart)
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", doctor.WorkdayEnd)
	if err != nil {
		return false
	}
	if doctor.SlotDurationMinutes <= 0 {
		return false
	}

	step := time.Duration(doctor.SlotDurationMinutes) * time.Minute
	if t.Before(start) || t.Add(step).After(end) {
		return false
	}
	offset := t.Sub(start)
	return offset%step == 0
}
