package services_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

func newAnalyticsService(analytics *mockAnalyticsRepo) services.AnalyticsService {
	cache := services.NewCache(nil, time.Minute, testLogger())
	return services.NewAnalyticsService(analytics, cache, testLogger())
}

func TestOverview_ReturnsStats(t *testing.T) {
	stats := &models.OverviewStats{TotalUsers: 10, TotalDoctors: 3, Revenue: 125000}

	svc := newAnalyticsService(&mockAnalyticsRepo{overview: stats})
	out, svcErr := svc.Overview(context.Background(), false)
	assert.Nil(t, svcErr)
	assert.Equal(t, stats, out)
}

func TestAppointments_BadDateRange(t *testing.T) {
	svc := newAnalyticsService(&mockAnalyticsRepo{})
	_, svcErr := svc.Appointments(context.Background(), "01/02/2030", "")
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
}

func TestAppointments_EmptyRangeAllowed(t *testing.T) {
	analytics := &mockAnalyticsRepo{
		byStatus: []models.StatusCount{{Status: models.AppointmentBooked, Count: 4}},
		perDay:   []models.DailyCount{{Day: "2030-01-02", Count: 4}},
	}

	svc := newAnalyticsService(analytics)
	out, svcErr := svc.Appointments(context.Background(), "", "")
	assert.Nil(t, svcErr)
	assert.Len(t, out.ByStatus, 1)
	assert.Len(t, out.PerDay, 1)
}

func TestTopDoctors_ClampsLimit(t *testing.T) {
	analytics := &mockAnalyticsRepo{top: []models.TopDoctor{}}

	svc := newAnalyticsService(analytics)
	_, svcErr := svc.TopDoctors(context.Background(), 500, false)
	assert.Nil(t, svcErr)
	_, svcErr = svc.TopDoctors(context.Background(), -1, false)
	assert.Nil(t, svcErr)
}

func TestNotifications_CombinesQueueAndChannels(t *testing.T) {
	analytics := &mockAnalyticsRepo{
		queue:    &models.QueueStats{Pending: 5, Due: 2, Processed: 100, Exhausted: 1},
		channels: []models.ChannelStats{{Channel: "email", Attempts: 90, Successes: 88, Failures: 2}},
	}

	svc := newAnalyticsService(analytics)
	out, svcErr := svc.Notifications(context.Background())
	assert.Nil(t, svcErr)
	assert.Equal(t, int64(5), out.Queue.Pending)
	if assert.Len(t, out.Channels, 1) {
		assert.Equal(t, "email", out.Channels[0].Channel)
	}
}

func TestExportAppointmentsCSV_WritesHeaderAndRows(t *testing.T) {
	row := models.AppointmentExportRow{
		ID:              uuid.New(),
		AppointmentDate: "2030-01-02",
		AppointmentTime: "10:00",
		Status:          models.AppointmentCompleted,
		Fee:             15000,
		Currency:        "usd",
		DoctorName:      "Asha Verma",
		Specialty:       "Cardiology",
		PatientName:     "Priya Nair",
		PatientEmail:    "pat@example.com",
		CreatedAt:       time.Date(2030, 1, 1, 9, 30, 0, 0, time.UTC),
	}

	svc := newAnalyticsService(&mockAnalyticsRepo{export: []models.AppointmentExportRow{row}})
	var buf bytes.Buffer
	svcErr := svc.ExportAppointmentsCSV(context.Background(), "2030-01-01", "2030-01-31", &buf)
	assert.Nil(t, svcErr)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if assert.Len(t, lines, 2) {
		assert.Equal(t, "id,date,time,status,fee_minor_units,currency,doctor,specialty,patient,patient_email,created_at", lines[0])
		assert.Contains(t, lines[1], row.ID.String())
		assert.Contains(t, lines[1], "15000")
		assert.Contains(t, lines[1], "2030-01-01T09:30:00Z")
	}
}

func TestExportAppointmentsCSV_BadDateRange(t *testing.T) {
	svc := newAnalyticsService(&mockAnalyticsRepo{})
	var buf bytes.Buffer
	svcErr := svc.ExportAppointmentsCSV(context.Background(), "yesterday", "", &buf)
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Zero(t, buf.Len(), "nothing is written on a rejected range")
}
