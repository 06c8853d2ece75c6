package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

// AdminController serves the platform analytics and export endpoints.
type AdminController struct {
	analyticsService    services.AnalyticsService
	notificationService services.NotificationService
}

func NewAdminController(analytics services.AnalyticsService, notifications services.NotificationService) *AdminController {
	return &AdminController{
		analyticsService:    analytics,
		notificationService: notifications,
	}
}

// Overview handles GET /api/v1/admin/stats. ?refresh=1 bypasses the cache.
func (ac *AdminController) Overview(ctx *gin.Context) {
	stats, svcErr := ac.analyticsService.Overview(ctx.Request.Context(), ctx.Query("refresh") == "1")
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// Appointments handles GET /api/v1/admin/stats/appointments
func (ac *AdminController) Appointments(ctx *gin.Context) {
	stats, svcErr := ac.analyticsService.Appointments(ctx.Request.Context(), ctx.Query("date_from"), ctx.Query("date_to"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// TopDoctors handles GET /api/v1/admin/stats/top-doctors?limit=10
func (ac *AdminController) TopDoctors(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	doctors, svcErr := ac.analyticsService.TopDoctors(ctx.Request.Context(), limit, ctx.Query("refresh") == "1")
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	if doctors == nil {
		doctors = []models.TopDoctor{}
	}

	ctx.JSON(http.StatusOK, gin.H{"doctors": doctors})
}

// Notifications handles GET /api/v1/admin/stats/notifications
func (ac *AdminController) Notifications(ctx *gin.Context) {
	stats, svcErr := ac.analyticsService.Notifications(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// ExportAppointments handles GET /api/v1/admin/export/appointments. The CSV
// is built in memory first so a mid-export failure never leaks a truncated
// download with a 200 status.
func (ac *AdminController) ExportAppointments(ctx *gin.Context) {
	var buf bytes.Buffer
	svcErr := ac.analyticsService.ExportAppointmentsCSV(ctx.Request.Context(), ctx.Query("date_from"), ctx.Query("date_to"), &buf)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	filename := fmt.Sprintf("appointments-%s.csv", time.Now().UTC().Format("2006-01-02"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// Queue handles GET /api/v1/admin/queue?state=pending|due|processed|exhausted
func (ac *AdminController) Queue(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	filter := models.QueueEntryFilter{
		State:    ctx.Query("state"),
		Page:     page,
		PageSize: pageSize,
	}

	entries, total, svcErr := ac.notificationService.QueueEntries(ctx.Request.Context(), filter)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, paginated(ctx, total, page, pageSize, entries))
}

// DeliveryLogs handles GET /api/v1/admin/delivery-logs
func (ac *AdminController) DeliveryLogs(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	filter := models.DeliveryLogFilter{
		Channel:  ctx.Query("channel"),
		Page:     page,
		PageSize: pageSize,
	}
	if v := ctx.Query("user_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.UserID = id
		}
	}
	if v := ctx.Query("success"); v != "" {
		success := v == "true"
		filter.Success = &success
	}

	logs, total, svcErr := ac.notificationService.Logs(ctx.Request.Context(), filter)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, paginated(ctx, total, page, pageSize, logs))
}
