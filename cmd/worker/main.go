package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/config"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/database"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/metrics"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/pkg/logger"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/repository"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/sender"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/worker"
)

func main() {
	once := flag.Bool("once", false, "process one batch of due entries and exit")
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

	db, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	notifRepo := repository.NewNotificationRepository(db)

	email, err := sender.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	if err != nil {
		zlog.Fatal("Failed to init SMTP sender", zap.Error(err))
	}
	sms, err := sender.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	if err != nil {
		zlog.Fatal("Failed to init Twilio sender", zap.Error(err))
	}
	push, err := sender.NewHTTPPushSender(cfg.PushEndpoint, cfg.PushServerKey)
	if err != nil {
		zlog.Fatal("Failed to init push sender", zap.Error(err))
	}

	proc := worker.NewProcessor(notifRepo, email, sms, push, cfg.WorkerBatchSize, zlog)

	metrics.InitWorkerMetrics()

	if *once {
		n, err := proc.ProcessDue(context.Background())
		if err != nil {
			zlog.Fatal("Queue pass failed", zap.Error(err))
		}
		zlog.Info("Queue pass complete", zap.Int("entries", n))
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Metrics server failed", zap.Error(err))
		}
	}()
	zlog.Info("Worker metrics listening", zap.String("port", cfg.Port))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		zlog.Info("Shutting down worker...")
		cancel()
	}()

	proc.Run(ctx, cfg.WorkerInterval)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("Metrics server shutdown failed", zap.Error(err))
	}
	zlog.Info("Worker exited cleanly")
}
