package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/middleware"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

// DoctorController handles the doctor directory and slot endpoints.
type DoctorController struct {
	doctorService services.DoctorService
	reviewService services.ReviewService
}

func NewDoctorController(doctors services.DoctorService, reviews services.ReviewService) *DoctorController {
	return &DoctorController{doctorService: doctors, reviewService: reviews}
}

// List handles GET /api/v1/doctors
func (dc *DoctorController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	filter := models.DoctorFilter{
		Specialty: ctx.Query("specialty"),
		City:      ctx.Query("city"),
		Search:    ctx.Query("search"),
		Page:      page,
		PageSize:  pageSize,
	}

	doctors, total, svcErr := dc.doctorService.List(ctx.Request.Context(), filter)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, paginated(ctx, total, page, pageSize, doctors))
}

// Get handles GET /api/v1/doctors/:id
func (dc *DoctorController) Get(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
		return
	}

	doctor, svcErr := dc.doctorService.Get(ctx.Request.Context(), id)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"doctor": doctor})
}

// Slots handles GET /api/v1/doctors/:id/slots?date=YYYY-MM-DD
func (dc *DoctorController) Slots(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
		return
	}

	slots, svcErr := dc.doctorService.Slots(ctx.Request.Context(), id, ctx.Query("date"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"date": ctx.Query("date"), "slots": slots})
}

// Reviews handles GET /api/v1/doctors/:id/reviews
func (dc *DoctorController) Reviews(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
		return
	}

	page, pageSize := parsePagination(ctx)
	reviews, total, svcErr := dc.reviewService.ListForDoctor(ctx.Request.Context(), id, page, pageSize)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, paginated(ctx, total, page, pageSize, reviews))
}

// Create handles POST /api/v1/doctors (admin only)
func (dc *DoctorController) Create(ctx *gin.Context) {
	var req models.CreateDoctorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	doctor, svcErr := dc.doctorService.Create(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"doctor": doctor})
}

// Update handles PATCH /api/v1/doctors/:id (admin or the doctor themselves)
func (dc *DoctorController) Update(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
		return
	}

	var req models.UpdateDoctorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	doctor, svcErr := dc.doctorService.Update(ctx.Request.Context(), id, middleware.UserID(ctx), middleware.Role(ctx), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"doctor": doctor})
}
