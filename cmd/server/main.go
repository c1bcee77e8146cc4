package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parish_lms/internal/app"
	"parish_lms/internal/domain/delivery"
	"parish_lms/internal/infra/config"
	idb "parish_lms/internal/infra/database"
	"parish_lms/internal/infra/email"
	"parish_lms/internal/infra/httpapi"
	"parish_lms/internal/infra/logger"
	"parish_lms/internal/infra/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. Environment: %s", cfg.Environment)

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established.")

	quizRepo := idb.NewPostgresQuizRepository(db)
	engagementRepo := idb.NewPostgresEngagementRepository(db)
	deliveryRepo := idb.NewPostgresDeliveryRepository(db)

	// Transports are registered explicitly at bootstrap; an empty registry
	// disables the delivery processor entirely.
	registry := delivery.NewRegistry()
	for _, name := range cfg.DeliveryProviders {
		switch name {
		case "mock":
			registry.Register("mock", email.NewMockProvider())
		case "sendgrid":
			registry.Register("sendgrid", email.NewSendgridProvider(
				cfg.SendgridAPIKey, cfg.EmailFromName, cfg.EmailFromAddress, log))
		default:
			log.Fatalf("Unknown delivery provider in DELIVERY_ENABLED_PROVIDERS: %s", name)
		}
	}
	if registry.Empty() {
		log.Warn("No delivery transports enabled; delivery processing is disabled.")
	}

	quizService := app.NewQuizService(quizRepo, log)
	reportService := app.NewReportService(engagementRepo, log)
	deliveryService := app.NewDeliveryService(deliveryRepo, registry, log)

	deliveryScheduler := scheduler.NewDeliveryScheduler(
		deliveryService,
		log,
		cfg.CronSpecDelivery,
		cfg.CronSpecStaleReclaim,
		cfg.DeliveryBatchLimit,
		cfg.DeliveryStaleAfter,
	)
	deliveryScheduler.Start()

	router := httpapi.NewRouter(
		httpapi.NewQuizHandlers(quizService),
		httpapi.NewReportHandlers(reportService),
		httpapi.NewDeliveryHandlers(deliveryService),
		cfg.DeliveryTriggerToken,
		log,
	)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received.")

	deliveryScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP server shutdown: %v", err)
	}
	log.Info("Server stopped.")
}
