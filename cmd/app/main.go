package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/clock"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/config"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/db"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/deduction"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/logger"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/membership"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/notifier"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/schedule"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/server"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/user"
)

// @title Gym Membership API
// @version 1.0
// @description Day-metered gym memberships with capacity-bounded slot scheduling.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting gym membership service")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	clk := clock.New(cfg.Timezone)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduleRepo := schedule.NewRepository(database)
	if err := scheduleRepo.Bootstrap(ctx); err != nil {
		logger.Fatalf("Failed to bootstrap day schedules: %v", err)
	}
	logger.Info("Day schedules bootstrapped")

	gateway := notifier.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer gateway.Close()
	go gateway.Start(ctx)
	logger.Info("Notification worker started")

	runner := deduction.NewRunner(
		membership.NewRepository(database),
		user.NewRepository(database),
		gateway,
		clk,
		cfg.AdminEmail,
	)
	scheduler := deduction.NewScheduler(deduction.SchedulerConfig{
		Hour:          cfg.DeductionHour,
		Minute:        cfg.DeductionMinute,
		CheckInterval: time.Minute,
	}, runner, clk)
	go scheduler.Start(ctx)
	logger.Infof("Deduction scheduler armed for %02d:%02d %s", cfg.DeductionHour, cfg.DeductionMinute, cfg.Timezone)

	srv := server.New(database, cfg, gateway, scheduler, clk)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	scheduler.Stop()
	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
