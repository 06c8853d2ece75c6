package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
)

// DoctorRepository defines data access for doctor profiles.
type DoctorRepository interface {
	Create(ctx context.Context, doctor *models.Doctor) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Doctor, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Doctor, error)
	FindAll(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorWithRating, int64, error)
	Update(ctx context.Context, doctor *models.Doctor) error
	RatingSummary(ctx context.Context, doctorID uuid.UUID) (*models.RatingSummary, error)
}

type gormDoctorRepository struct {
	db *gorm.DB
}

// NewDoctorRepository creates a gorm-backed DoctorRepository.
func NewDoctorRepository(db *gorm.DB) DoctorRepository {
	return &gormDoctorRepository{db: db}
}

func (r *gormDoctorRepository) Create(ctx context.Context, doctor *models.Doctor) error {
	return r.db.WithContext(ctx).Create(doctor).Error
}

func (r *gormDoctorRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.db.WithContext(ctx).Preload("User").First(&doctor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *gormDoctorRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

// FindAll lists active doctors with review aggregates joined in, so listing
// pages don't need one rating query per row.
func (r *gormDoctorRepository) FindAll(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorWithRating, int64, error) {
	var total int64

	base := r.db.WithContext(ctx).
		Model(&models.Doctor{}).
		Joins("JOIN users ON users.id = doctors.user_id").
		Where("doctors.is_active = true")

	if filter.Specialty != "" {
		base = base.Where("doctors.specialty = ?", filter.Specialty)
	}
	if filter.City != "" {
		base = base.Where("doctors.city = ?", filter.City)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		base = base.Where(
			"users.first_name ILIKE ? OR users.last_name ILIKE ? OR doctors.specialty ILIKE ?",
			like, like, like,
		)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DoctorWithRating
	limit, offset := models.PageBounds(filter.Page, filter.PageSize)
	err := base.
		Select(`doctors.*,
			users.first_name || ' ' || users.last_name AS doctor_name,
			COALESCE((SELECT AVG(rating) FROM reviews WHERE reviews.doctor_id = doctors.id), 0) AS average_rating,
			(SELECT COUNT(*) FROM reviews WHERE reviews.doctor_id = doctors.id) AS review_count`).
		Order("doctors.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *gormDoctorRepository) Update(ctx context.Context, doctor *models.Doctor) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(doctor).Error
}

func (r *gormDoctorRepository) RatingSummary(ctx context.Context, doctorID uuid.UUID) (*models.RatingSummary, error) {
	var summary models.RatingSummary
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS review_count").
		Where("doctor_id = ?", doctorID).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
