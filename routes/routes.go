package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/controllers"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/middleware"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

// Controllers bundles everything RegisterRoutes wires up.
type Controllers struct {
	Auth          *controllers.AuthController
	Doctors       *controllers.DoctorController
	Appointments  *controllers.AppointmentController
	Reviews       *controllers.ReviewController
	Payments      *controllers.PaymentController
	Notifications *controllers.NotificationController
	Admin         *controllers.AdminController
}

// RegisterRoutes sets up all API routes with their auth and role gates.
func RegisterRoutes(router *gin.Engine, tokens *services.TokenService, c Controllers) {
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "OK", "service": "wellcare-api"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Stripe calls this directly; signature verification is the auth.
	router.POST("/webhooks/stripe", c.Payments.Webhook)

	api := router.Group("/api/v1")

	// Credential endpoints are rate limited per client IP.
	auth := api.Group("/auth", middleware.RateLimit(rate.Every(time.Minute/60), 20))
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.Refresh)
		auth.POST("/logout", c.Auth.Logout)
	}

	// Public doctor directory
	api.GET("/doctors", c.Doctors.List)
	api.GET("/doctors/:id", c.Doctors.Get)
	api.GET("/doctors/:id/slots", c.Doctors.Slots)
	api.GET("/doctors/:id/reviews", c.Doctors.Reviews)

	authed := api.Group("", middleware.Auth(tokens))
	{
		authed.GET("/users/me", c.Auth.Profile)
		authed.PATCH("/users/me", c.Auth.UpdateProfile)

		authed.POST("/doctors", middleware.RequireRole(models.RoleAdmin), c.Doctors.Create)
		authed.PATCH("/doctors/:id", middleware.RequireRole(models.RoleDoctor, models.RoleAdmin), c.Doctors.Update)

		authed.POST("/appointments", middleware.RequireRole(models.RolePatient), c.Appointments.Book)
		authed.GET("/appointments", c.Appointments.List)
		authed.GET("/appointments/:id", c.Appointments.Get)
		authed.POST("/appointments/:id/cancel", c.Appointments.Cancel)
		authed.POST("/appointments/:id/confirm", middleware.RequireRole(models.RoleDoctor, models.RoleAdmin), c.Appointments.Confirm)
		authed.POST("/appointments/:id/complete", middleware.RequireRole(models.RoleDoctor, models.RoleAdmin), c.Appointments.Complete)
		authed.POST("/appointments/:id/no-show", middleware.RequireRole(models.RoleDoctor, models.RoleAdmin), c.Appointments.MarkNoShow)

		authed.POST("/reviews", middleware.RequireRole(models.RolePatient), c.Reviews.Create)
		authed.PATCH("/reviews/:id", c.Reviews.Update)
		authed.DELETE("/reviews/:id", c.Reviews.Delete)

		authed.POST("/payments/intent", middleware.RequireRole(models.RolePatient), c.Payments.CreateIntent)
		authed.GET("/payments", c.Payments.List)
		authed.GET("/payments/:id", c.Payments.Get)
		authed.POST("/payments/:id/refund", middleware.RequireRole(models.RoleAdmin), c.Payments.Refund)

		authed.GET("/notifications", c.Notifications.List)
		authed.GET("/notifications/unread-count", c.Notifications.UnreadCount)
		authed.POST("/notifications/:id/read", c.Notifications.MarkRead)
		authed.POST("/notifications/read-all", c.Notifications.MarkAllRead)

		admin := authed.Group("/admin", middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/stats", c.Admin.Overview)
			admin.GET("/stats/appointments", c.Admin.Appointments)
			admin.GET("/stats/top-doctors", c.Admin.TopDoctors)
			admin.GET("/stats/notifications", c.Admin.Notifications)
			admin.GET("/export/appointments", c.Admin.ExportAppointments)
			admin.GET("/queue", c.Admin.Queue)
			admin.GET("/delivery-logs", c.Admin.DeliveryLogs)
		}
	}
}
