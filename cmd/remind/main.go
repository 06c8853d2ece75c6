package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/config"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/database"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/pkg/logger"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/repository"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

// Queues reminder notifications for confirmed appointments on the target
// date. Meant to run once a day from cron; the queue worker handles the
// actual sending.
func main() {
	date := flag.String("date", "", "appointment date to remind for (YYYY-MM-DD, default tomorrow)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	target := *date
	if target == "" {
		target = time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", target); err != nil {
		zlog.Fatal("Invalid date, want YYYY-MM-DD", zap.String("date", target))
	}

	db, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	apptRepo := repository.NewAppointmentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	notifications := services.NewNotificationService(notifRepo, userRepo, zlog)
	reminders := services.NewReminderService(apptRepo, notifications, zlog)

	queued, err := reminders.SendReminders(context.Background(), target)
	if err != nil {
		zlog.Fatal("Reminder run failed", zap.Error(err))
	}
	zlog.Info("Reminder run complete", zap.String("date", target), zap.Int("queued", queued))
}
