package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fasting_tracker_backend/internal/app"
	"fasting_tracker_backend/internal/infra/config"
	idb "fasting_tracker_backend/internal/infra/database"
	"fasting_tracker_backend/internal/infra/httpapi"
	"fasting_tracker_backend/internal/infra/logger"
	"fasting_tracker_backend/internal/infra/mailer"
	"fasting_tracker_backend/internal/infra/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLog := logger.Component("main")
	mainLog.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL, idb.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		mainLog.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	mainLog.Info("Database connection established successfully.")

	// Initialize Repositories
	fastRepo := idb.NewPostgresFastRepository(db)
	reportRepo := idb.NewPostgresReportRepository(db)
	mainLog.Info("Repositories initialized.")

	// Initialize Mailer
	smtpClient := mailer.NewSMTPClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	mainLog.Infof("SMTP mailer initialized for %s:%d.", cfg.SMTPHost, cfg.SMTPPort)

	// Initialize Services
	scheduleSvc := app.NewScheduleService(reportRepo, cfg.DefaultIntervalHours, logger.Component("schedule_service"))
	reportSvc := app.NewReportService(fastRepo, scheduleSvc, smtpClient, logger.Component("report_service"))
	fastSvc := app.NewFastService(fastRepo, scheduleSvc, logger.Component("fast_service"))
	mainLog.Info("Services initialized.")

	// Initialize Report Dispatcher
	dispatcher := scheduler.NewReportDispatcher(reportRepo, reportSvc, scheduler.Config{
		CronSpec:        cfg.CronSpecDispatch,
		BatchLimit:      cfg.DispatchBatchLimit,
		ClaimStaleAfter: cfg.ClaimStaleAfter,
		MaxSendAttempts: cfg.MaxSendAttempts,
		SendTimeout:     cfg.SendTimeout,
	}, logger.Component("dispatcher"))
	if err := dispatcher.Start(); err != nil {
		mainLog.Fatalf("FATAL: Could not start report dispatcher: %v", err)
	}

	// Initialize HTTP server
	router := httpapi.NewRouter(fastSvc, scheduleSvc, reportSvc)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		mainLog.Infof("HTTP server listening on %s.", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			mainLog.Fatalf("FATAL: HTTP server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLog.Info("Shutting down application...")
	dispatcher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLog.Errorf("HTTP server shutdown error: %v", err)
	}
	mainLog.Info("Application shut down gracefully.")
}
