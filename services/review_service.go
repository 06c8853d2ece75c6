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

type ReviewService interface {
	Create(ctx context.Context, patientID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, *ServiceError)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, page, pageSize int) ([]models.Review, int64, *ServiceError)
	Update(ctx context.Context, id, actorID uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, *ServiceError)
	Delete(ctx context.Context, id, actorID uuid.UUID, actorRole string) *ServiceError
}

type reviewServiceImpl struct {
	reviews repository.ReviewRepository
	appts   repository.AppointmentRepository
	bus     *events.Bus
	logger  *zap.Logger
}

func NewReviewService(
	reviews repository.ReviewRepository,
	appts repository.AppointmentRepository,
	bus *events.Bus,
	logger *zap.Logger,
) ReviewService {
	return &reviewServiceImpl{
		reviews: reviews,
		appts:   appts,
		bus:     bus,
		logger:  logger,
	}
}

// Create posts a review for a completed appointment. One review per
// appointment; the unique index backs the pre-check under races.
func (s *reviewServiceImpl) Create(ctx context.Context, patientID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, *ServiceError) {
	appt, err := s.appts.FindByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Appointment not found"}
		}
		s.logger.Error("Review appointment lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create review"}
	}

	if appt.PatientID != patientID {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "You can only review your own appointments"}
	}
	if appt.Status != models.AppointmentCompleted {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "You can only review completed appointments"}
	}

	if _, err := s.reviews.FindByAppointmentID(ctx, req.AppointmentID); err == nil {
		return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Appointment already reviewed"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Review duplicate check failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create review"}
	}

	review := &models.Review{
		AppointmentID: req.AppointmentID,
		DoctorID:      appt.DoctorID,
		PatientID:     patientID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Appointment already reviewed"}
		}
		s.logger.Error("Review create failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create review"}
	}

	s.bus.Publish(ctx, events.Event{
		Name:         events.ReviewPosted,
		UserID:       patientID,
		DoctorUserID: appt.Doctor.UserID,
		DoctorID:     appt.DoctorID,
		EntityID:     review.ID,
		Rating:       review.Rating,
		Timestamp:    time.Now().UTC(),
	})

	return review, nil
}

func (s *reviewServiceImpl) ListForDoctor(ctx context.Context, doctorID uuid.UUID, page, pageSize int) ([]models.Review, int64, *ServiceError) {
	limit, offset := models.PageBounds(page, pageSize)
	reviews, total, err := s.reviews.FindByDoctorID(ctx, doctorID, limit, offset)
	if err != nil {
		s.logger.Error("Review list failed", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to list reviews"}
	}
	return reviews, total, nil
}

// Update lets the author revise rating or comment.
func (s *reviewServiceImpl) Update(ctx context.Context, id, actorID uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, *ServiceError) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Review not found"}
		}
		s.logger.Error("Review lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update review"}
	}
	if review.PatientID != actorID {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Not allowed to edit this review"}
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		s.logger.Error("Review update failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update review"}
	}
	return review, nil
}

// Delete removes a review. Author or admin.
func (s *reviewServiceImpl) Delete(ctx context.Context, id, actorID uuid.UUID, actorRole string) *ServiceError {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: http.StatusNotFound, Message: "Review not found"}
		}
		s.logger.Error("Review lookup failed", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to delete review"}
	}
	if actorRole != models.RoleAdmin && review.PatientID != actorID {
		return &ServiceError{StatusCode: http.StatusForbidden, Message: "Not allowed to delete this review"}
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		s.logger.Error("Review delete failed", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to delete review"}
	}
	return nil
}
