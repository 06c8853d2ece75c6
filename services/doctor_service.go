package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type DoctorService interface {
	Create(ctx context.Context, req *models.CreateDoctorRequest) (*models.Doctor, *ServiceError)
	List(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorWithRating, int64, *ServiceError)
	Get(ctx context.Context, id uuid.UUID) (*models.DoctorWithRating, *ServiceError)
	Update(ctx context.Context, id, actorID uuid.UUID, actorRole string, req *models.UpdateDoctorRequest) (*models.Doctor, *ServiceError)
	Slots(ctx context.Context, doctorID uuid.UUID, date string) ([]models.Slot, *ServiceError)
	InvalidateSlots(ctx context.Context, doctorID uuid.UUID, date string)
}

type doctorServiceImpl struct {
	db        *gorm.DB
	doctors   repository.DoctorRepository
	appts     repository.AppointmentRepository
	passwords *PasswordValidator
	cache     *Cache
	logger    *zap.Logger
}

func NewDoctorService(
	db *gorm.DB,
	doctors repository.DoctorRepository,
	appts repository.AppointmentRepository,
	cache *Cache,
	logger *zap.Logger,
) DoctorService {
	return &doctorServiceImpl{
		db:        db,
		doctors:   doctors,
		appts:     appts,
		passwords: NewPasswordValidator(),
		cache:     cache,
		logger:    logger,
	}
}

// Create provisions the doctor's user account and profile in one
// transaction. Admin-only; the route gate enforces the role.
func (s *doctorServiceImpl) Create(ctx context.Context, req *models.CreateDoctorRequest) (*models.Doctor, *ServiceError) {
	if err := s.passwords.ValidatePassword(req.Password); err != nil {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}

	var doctor *models.Doctor
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txUsers := repository.NewUserRepository(tx)
		txDoctors := repository.NewDoctorRepository(tx)

		_, err := txUsers.FindByEmail(ctx, req.Email)
		if err == nil {
			return &ServiceError{StatusCode: http.StatusConflict, Message: "Email already registered"}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := &models.User{
			Email:       req.Email,
			Password:    string(hashed),
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Phone:       req.Phone,
			Role:        models.RoleDoctor,
			City:        req.City,
			NotifyEmail: true,
		}
		if err := txUsers.Create(ctx, user); err != nil {
			return err
		}

		doctor = &models.Doctor{
			UserID:          user.ID,
			Specialty:       req.Specialty,
			Qualification:   req.Qualification,
			Bio:             req.Bio,
			ExperienceYears: req.ExperienceYears,
			ConsultationFee: req.ConsultationFee,
			City:            req.City,
			IsActive:        true,
		}
		if req.Currency != "" {
			doctor.Currency = req.Currency
		} else {
			doctor.Currency = "usd"
		}
		if req.WorkdayStart != "" {
			doctor.WorkdayStart = req.WorkdayStart
		} else {
			doctor.WorkdayStart = "09:00"
		}
		if req.WorkdayEnd != "" {
			doctor.WorkdayEnd = req.WorkdayEnd
		} else {
			doctor.WorkdayEnd = "17:00"
		}
		if req.SlotDurationMinutes > 0 {
			doctor.SlotDurationMinutes = req.SlotDurationMinutes
		} else {
			doctor.SlotDurationMinutes = 30
		}

		return txDoctors.Create(ctx, doctor)
	})
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		s.logger.Error("Doctor create failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create doctor"}
	}
	return doctor, nil
}

func (s *doctorServiceImpl) List(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorWithRating, int64, *ServiceError) {
	doctors, total, err := s.doctors.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Doctor list failed", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to list doctors"}
	}
	return doctors, total, nil
}

func (s *doctorServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.DoctorWithRating, *ServiceError) {
	doctor, err := s.doctors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Doctor not found"}
		}
		s.logger.Error("Doctor get failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load doctor"}
	}

	summary, err := s.doctors.RatingSummary(ctx, id)
	if err != nil {
		s.logger.Error("Doctor rating summary failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load doctor"}
	}

	return &models.DoctorWithRating{
		Doctor:        *doctor,
		DoctorName:    doctor.User.FullName(),
		AverageRating: summary.AverageRating,
		ReviewCount:   summary.ReviewCount,
	}, nil
}

// Update applies a partial profile update. Admins may edit any profile,
// doctors only their own.
func (s *doctorServiceImpl) Update(ctx context.Context, id, actorID uuid.UUID, actorRole string, req *models.UpdateDoctorRequest) (*models.Doctor, *ServiceError) {
	doctor, err := s.doctors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Doctor not found"}
		}
		s.logger.Error("Doctor update lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update doctor"}
	}

	if actorRole != models.RoleAdmin && doctor.UserID != actorID {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Not allowed to edit this profile"}
	}

	if req.Specialty != nil {
		doctor.Specialty = *req.Specialty
	}
	if req.Qualification != nil {
		doctor.Qualification = *req.Qualification
	}
	if req.Bio != nil {
		doctor.Bio = *req.Bio
	}
	if req.ExperienceYears != nil {
		doctor.ExperienceYears = *req.ExperienceYears
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = *req.ConsultationFee
	}
	if req.Currency != nil {
		doctor.Currency = *req.Currency
	}
	if req.City != nil {
		doctor.City = *req.City
	}
	if req.WorkdayStart != nil {
		doctor.WorkdayStart = *req.WorkdayStart
	}
	if req.WorkdayEnd != nil {
		doctor.WorkdayEnd = *req.WorkdayEnd
	}
	if req.SlotDurationMinutes != nil {
		doctor.SlotDurationMinutes = *req.SlotDurationMinutes
	}
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}

	if err := s.doctors.Update(ctx, doctor); err != nil {
		s.logger.Error("Doctor update failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update doctor"}
	}

	// Schedule knobs changed, cached slot sets may be stale for any date.
	// Dropping today's entry covers the common lookup; older entries expire
	// by TTL.
	s.InvalidateSlots(ctx, doctor.ID, time.Now().UTC().Format("2006-01-02"))

	return doctor, nil
}

// Slots returns a doctor's bookable intervals for one day, read through the
// cache.
func (s *doctorServiceImpl) Slots(ctx context.Context, doctorID uuid.UUID, date string) ([]models.Slot, *ServiceError) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid date, expected YYYY-MM-DD"}
	}

	key := slotsCacheKey(doctorID.String(), date)
	var cached []models.Slot
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	doctor, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Doctor not found"}
		}
		s.logger.Error("Slots doctor lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load slots"}
	}
	if !doctor.IsActive {
		return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Doctor not found"}
	}

	bookedTimes, err := s.appts.BookedTimes(ctx, doctorID, date)
	if err != nil {
		s.logger.Error("Slots booked lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load slots"}
	}
	booked := make(map[string]bool, len(bookedTimes))
	for _, t := range bookedTimes {
		booked[t] = true
	}

	slots := buildSlots(doctor.WorkdayStart, doctor.WorkdayEnd, doctor.SlotDurationMinutes, booked)
	s.cache.Set(ctx, key, slots)
	return slots, nil
}

func (s *doctorServiceImpl) InvalidateSlots(ctx context.Context, doctorID uuid.UUID, date string) {
	s.cache.Delete(ctx, slotsCacheKey(doctorID.String(), date))
}

// buildSlots walks the workday window in slot-sized steps. A malformed
// window yields no slots rather than an error; the profile fields are
// format-validated on write.
func buildSlots(start, end string, stepMinutes int, booked map[string]bool) []models.Slot {
	slots := []models.Slot{}
	st, err1 := time.Parse("15:04", start)
	en, err2 := time.Parse("15:04", end)
	if err1 != nil || err2 != nil || stepMinutes <= 0 {
		return slots
	}
	step := time.Duration(stepMinutes) * time.Minute
	for t := st; t.Add(step).Before(en) || t.Add(step).Equal(en); t = t.Add(step) {
		hm := t.Format("15:04")
		slots = append(slots, models.Slot{Time: hm, Available: !booked[hm]})
	}
	return slots
}
