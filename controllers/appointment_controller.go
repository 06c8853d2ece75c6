package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/middleware"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

// AppointmentController handles booking and the appointment lifecycle.
type AppointmentController struct {
	appointmentService services.AppointmentService
}

func NewAppointmentController(svc services.AppointmentService) *AppointmentController {
	return &AppointmentController{appointmentService: svc}
}

// Book handles POST /api/v1/appointments
func (ac *AppointmentController) Book(ctx *gin.Context) {
	var req models.BookAppointmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	appt, svcErr := ac.appointmentService.Book(ctx.Request.Context(), middleware.UserID(ctx), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"appointment": appt})
}

// List handles GET /api/v1/appointments. Patients and doctors see their own
// appointments; admins see everything and may filter by doctor_id and
// patient_id.
func (ac *AppointmentController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	filter := models.AppointmentFilter{
		Status:   ctx.Query("status"),
		DateFrom: ctx.Query("date_from"),
		DateTo:   ctx.Query("date_to"),
		Page:     page,
		PageSize: pageSize,
	}
	if v := ctx.Query("doctor_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.DoctorID = id
		}
	}
	if v := ctx.Query("patient_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.PatientID = id
		}
	}

	appts, total, svcErr := ac.appointmentService.List(ctx.Request.Context(), middleware.UserID(ctx), middleware.Role(ctx), filter)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, paginated(ctx, total, page, pageSize, appts))
}

// Get handles GET /api/v1/appointments/:id
func (ac *AppointmentController) Get(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	appt, svcErr := ac.appointmentService.Get(ctx.Request.Context(), id, middleware.UserID(ctx), middleware.Role(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// Cancel handles POST /api/v1/appointments/:id/cancel
func (ac *AppointmentController) Cancel(ctx *gin.Context) {
	ac.mutate(ctx, ac.appointmentService.Cancel)
}

// Confirm handles POST /api/v1/appointments/:id/confirm
func (ac *AppointmentController) Confirm(ctx *gin.Context) {
	ac.mutate(ctx, ac.appointmentService.Confirm)
}

// Complete handles POST /api/v1/appointments/:id/complete
func (ac *AppointmentController) Complete(ctx *gin.Context) {
	ac.mutate(ctx, ac.appointmentService.Complete)
}

// MarkNoShow handles POST /api/v1/appointments/:id/no-show
func (ac *AppointmentController) MarkNoShow(ctx *gin.Context) {
	ac.mutate(ctx, ac.appointmentService.MarkNoShow)
}

type transitionFunc func(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Appointment, *services.ServiceError)

func (ac *AppointmentController) mutate(ctx *gin.Context, fn transitionFunc) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}

	appt, svcErr := fn(ctx.Request.Context(), id, middleware.UserID(ctx), middleware.Role(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"appointment": appt})
}
