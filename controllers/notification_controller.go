package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/middleware"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

// NotificationController serves a user's own notification feed.
type NotificationController struct {
	notificationService services.NotificationService
}

func NewNotificationController(svc services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: svc}
}

// List handles GET /api/v1/notifications?unread=true
func (nc *NotificationController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	filter := models.NotificationFilter{
		UserID:     middleware.UserID(ctx),
		UnreadOnly: ctx.Query("unread") == "true",
		Page:       page,
		PageSize:   pageSize,
	}

	notifications, total, svcErr := nc.notificationService.List(ctx.Request.Context(), filter)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, paginated(ctx, total, page, pageSize, notifications))
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (nc *NotificationController) UnreadCount(ctx *gin.Context) {
	count, svcErr := nc.notificationService.UnreadCount(ctx.Request.Context(), middleware.UserID(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead handles POST /api/v1/notifications/:id/read
func (nc *NotificationController) MarkRead(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if svcErr := nc.notificationService.MarkRead(ctx.Request.Context(), id, middleware.UserID(ctx)); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (nc *NotificationController) MarkAllRead(ctx *gin.Context) {
	updated, svcErr := nc.notificationService.MarkAllRead(ctx.Request.Context(), middleware.UserID(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"updated": updated})
}
