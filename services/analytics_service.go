package services

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/repository"
	"go.uber.org/zap"
)

// AppointmentStats bundles the two appointment breakdowns the dashboard
// shows side by side.
type AppointmentStats struct {
	ByStatus []models.StatusCount `json:"by_status"`
	PerDay   []models.DailyCount  `json:"per_day"`
}

// NotificationStats bundles queue health with per-channel outcomes.
type NotificationStats struct {
	Queue    models.QueueStats     `json:"queue"`
	Channels []models.ChannelStats `json:"channels"`
}

type AnalyticsService interface {
	Overview(ctx context.Context, refresh bool) (*models.OverviewStats, *ServiceError)
	Appointments(ctx context.Context, dateFrom, dateTo string) (*AppointmentStats, *ServiceError)
	TopDoctors(ctx context.Context, limit int, refresh bool) ([]models.TopDoctor, *ServiceError)
	Notifications(ctx context.Context) (*NotificationStats, *ServiceError)
	ExportAppointmentsCSV(ctx context.Context, dateFrom, dateTo string, w io.Writer) *ServiceError
}

type analyticsServiceImpl struct {
	analytics repository.AnalyticsRepository
	cache     *Cache
	logger    *zap.Logger
}

func NewAnalyticsService(
	analytics repository.AnalyticsRepository,
	cache *Cache,
	logger *zap.Logger,
) AnalyticsService {
	return &analyticsServiceImpl{
		analytics: analytics,
		cache:     cache,
		logger:    logger,
	}
}

// Overview serves the headline block, cached briefly since every admin page
// load asks for it. refresh skips the cache read but still repopulates it.
func (s *analyticsServiceImpl) Overview(ctx context.Context, refresh bool) (*models.OverviewStats, *ServiceError) {
	var cached models.OverviewStats
	if !refresh && s.cache.Get(ctx, statsCacheKey, &cached) {
		return &cached, nil
	}

	stats, err := s.analytics.Overview(ctx)
	if err != nil {
		s.logger.Error("Stats overview failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load stats"}
	}

	s.cache.Set(ctx, statsCacheKey, stats)
	return stats, nil
}

func (s *analyticsServiceImpl) Appointments(ctx context.Context, dateFrom, dateTo string) (*AppointmentStats, *ServiceError) {
	if svcErr := validDateRange(dateFrom, dateTo); svcErr != nil {
		return nil, svcErr
	}

	byStatus, err := s.analytics.AppointmentsByStatus(ctx, dateFrom, dateTo)
	if err != nil {
		s.logger.Error("Stats by-status failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load stats"}
	}
	perDay, err := s.analytics.AppointmentsPerDay(ctx, dateFrom, dateTo)
	if err != nil {
		s.logger.Error("Stats per-day failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load stats"}
	}

	return &AppointmentStats{ByStatus: byStatus, PerDay: perDay}, nil
}

func (s *analyticsServiceImpl) TopDoctors(ctx context.Context, limit int, refresh bool) ([]models.TopDoctor, *ServiceError) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	key := topDoctorsCacheKey(limit)
	var cached []models.TopDoctor
	if !refresh && s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	doctors, err := s.analytics.TopDoctors(ctx, limit)
	if err != nil {
		s.logger.Error("Top doctors failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load stats"}
	}

	s.cache.Set(ctx, key, doctors)
	return doctors, nil
}

func (s *analyticsServiceImpl) Notifications(ctx context.Context) (*NotificationStats, *ServiceError) {
	queue, err := s.analytics.QueueStats(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("Queue stats failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load stats"}
	}
	channels, err := s.analytics.ChannelStats(ctx)
	if err != nil {
		s.logger.Error("Channel stats failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load stats"}
	}
	return &NotificationStats{Queue: *queue, Channels: channels}, nil
}

// ExportAppointmentsCSV streams the appointment export. Fees stay in minor
// units; the currency column disambiguates.
func (s *analyticsServiceImpl) ExportAppointmentsCSV(ctx context.Context, dateFrom, dateTo string, w io.Writer) *ServiceError {
	if svcErr := validDateRange(dateFrom, dateTo); svcErr != nil {
		return svcErr
	}

	rows, err := s.analytics.ExportAppointments(ctx, dateFrom, dateTo)
	if err != nil {
		s.logger.Error("Appointment export failed", zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to export appointments"}
	}

	cw := csv.NewWriter(w)
	header := []string{"id", "date", "time", "status", "fee_minor_units", "currency",
		"doctor", "specialty", "patient", "patient_email", "created_at"}
	if err := cw.Write(header); err != nil {
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to write export"}
	}
	for _, row := range rows {
		record := []string{
			row.ID.String(),
			row.AppointmentDate,
			row.AppointmentTime,
			row.Status,
			strconv.Itoa(row.Fee),
			row.Currency,
			row.DoctorName,
			row.Specialty,
			row.PatientName,
			row.PatientEmail,
			row.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to write export"}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to write export"}
	}
	return nil
}

func validDateRange(dateFrom, dateTo string) *ServiceError {
	for _, d := range []string{dateFrom, dateTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Invalid date, expected YYYY-MM-DD"}
		}
	}
	return nil
}
