package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukerupert/dayline/internal/backup"
	"github.com/dukerupert/dayline/internal/database"
	"github.com/dukerupert/dayline/internal/logging"
	"github.com/dukerupert/dayline/internal/server"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logger := logging.Setup(env("DAYLINE_LOG_LEVEL", "info"))

	port := env("DAYLINE_PORT", "8080")
	dbPath := env("DAYLINE_DB_PATH", "dayline.db")

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("DAYLINE_S3_ENDPOINT"),
				Bucket:    os.Getenv("DAYLINE_S3_BUCKET"),
				Region:    env("DAYLINE_S3_REGION", "us-east-1"),
				AccessKey: os.Getenv("DAYLINE_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("DAYLINE_S3_SECRET_KEY"),
			},
			DBPath:        dbPath,
			Passphrase:    os.Getenv("DAYLINE_BACKUP_PASSPHRASE"),
			ScheduleHour:  envInt("DAYLINE_BACKUP_HOUR", 3),
			RetentionDays: envInt("DAYLINE_BACKUP_RETENTION_DAYS", 30),
		},
		VAPIDPublic:  os.Getenv("DAYLINE_VAPID_PUBLIC_KEY"),
		VAPIDPrivate: os.Getenv("DAYLINE_VAPID_PRIVATE_KEY"),
		ReminderHour: envInt("DAYLINE_REMINDER_HOUR", 8),
	}

	srv := server.New(db, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.BackupManager().Start(ctx)
	defer srv.BackupManager().Stop()
	srv.PushReminder().Start(ctx)
	defer srv.PushReminder().Stop()

	// Hourly sweep of expired sessions and stale rate-limit entries
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("delete expired sessions", "error", err)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("dayline listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
