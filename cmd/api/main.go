package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/config"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/controllers"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/database"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/events"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/metrics"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/middleware"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/pkg/logger"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/repository"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/routes"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	db, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	rdb := database.ConnectRedis(cfg, zlog)
	cache := services.NewCache(rdb, cfg.CacheTTL, zlog)

	metrics.InitAPIMetrics()

	bus := events.NewBus(zlog)

	userRepo := repository.NewUserRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	tokens := services.NewTokenService(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, tokens, bus, zlog)
	doctorService := services.NewDoctorService(db, doctorRepo, apptRepo, cache, zlog)
	appointmentService := services.NewAppointmentService(apptRepo, doctorRepo, bus, zlog)
	reviewService := services.NewReviewService(reviewRepo, apptRepo, bus, zlog)
	stripeClient := services.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookKey)
	paymentService := services.NewPaymentService(paymentRepo, apptRepo, stripeClient, bus, zlog)
	notificationService := services.NewNotificationService(notifRepo, userRepo, zlog)
	analyticsService := services.NewAnalyticsService(analyticsRepo, cache, zlog)

	// Event wiring. Notifications subscribe to every domain event, bookings
	// and cancellations invalidate the day's cached slot grid, and a
	// cancelled appointment refunds its succeeded payment.
	notificationService.RegisterHandlers(bus)
	invalidateSlots := func(ctx context.Context, ev events.Event) {
		doctorService.InvalidateSlots(ctx, ev.DoctorID, ev.Date)
	}
	bus.Subscribe(events.AppointmentBooked, invalidateSlots)
	bus.Subscribe(events.AppointmentCancelled, invalidateSlots)
	bus.Subscribe(events.AppointmentCancelled, func(ctx context.Context, ev events.Event) {
		if err := paymentService.RefundForAppointment(ctx, ev.EntityID); err != nil {
			zlog.Error("automatic refund failed",
				zap.String("appointment_id", ev.EntityID.String()),
				zap.Error(err))
		}
	})

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(zlog))
	router.Use(middleware.Metrics())

	routes.RegisterRoutes(router, tokens, routes.Controllers{
		Auth:          controllers.NewAuthController(authService),
		Doctors:       controllers.NewDoctorController(doctorService, reviewService),
		Appointments:  controllers.NewAppointmentController(appointmentService),
		Reviews:       controllers.NewReviewController(reviewService),
		Payments:      controllers.NewPaymentController(paymentService),
		Notifications: controllers.NewNotificationController(notificationService),
		Admin:         controllers.NewAdminController(analyticsService, notificationService),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	zlog.Info("API server started", zap.String("port", cfg.Port))
	<-quit
	zlog.Info("Shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("Server forced to shutdown", zap.Error(err))
	}
	zlog.Info("Server exited cleanly")
}
