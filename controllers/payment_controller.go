package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/middleware"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

// PaymentController handles payment intents, refunds and the Stripe webhook.
type PaymentController struct {
	paymentService services.PaymentService
}

func NewPaymentController(svc services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: svc}
}

// CreateIntent handles POST /api/v1/payments/intent
func (pc *PaymentController) CreateIntent(ctx *gin.Context) {
	var req models.CreatePaymentIntentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	intent, svcErr := pc.paymentService.CreateIntent(ctx.Request.Context(), middleware.UserID(ctx), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, intent)
}

// Get handles GET /api/v1/payments/:id
func (pc *PaymentController) Get(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	payment, svcErr := pc.paymentService.Get(ctx.Request.Context(), id, middleware.UserID(ctx), middleware.Role(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"payment": payment})
}

// List handles GET /api/v1/payments. Patients see their own payments; admins
// see everything and may filter by user_id and status.
func (pc *PaymentController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	filter := models.PaymentFilter{
		Status:   ctx.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}
	if v := ctx.Query("user_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.UserID = id
		}
	}

	payments, total, svcErr := pc.paymentService.List(ctx.Request.Context(), middleware.UserID(ctx), middleware.Role(ctx), filter)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, paginated(ctx, total, page, pageSize, payments))
}

// Refund handles POST /api/v1/payments/:id/refund (admin only)
func (pc *PaymentController) Refund(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	var req models.RefundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	payment, svcErr := pc.paymentService.Refund(ctx.Request.Context(), id, req.Reason)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"payment": payment})
}

// Webhook handles POST /webhooks/stripe. The raw body is needed for
// signature verification, so this route must not go through any middleware
// that consumes it.
func (pc *PaymentController) Webhook(ctx *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, 1<<16))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	sigHeader := ctx.GetHeader("Stripe-Signature")
	if svcErr := pc.paymentService.HandleWebhook(ctx.Request.Context(), payload, sigHeader); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"received": true})
}
