package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/habit-grid/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/habit-grid/internal/adapters/handler/http"
	"github.com/comitanigiacomo/habit-grid/internal/adapters/repository"
	"github.com/comitanigiacomo/habit-grid/internal/core/domain"
	"github.com/comitanigiacomo/habit-grid/internal/core/services"
	"github.com/comitanigiacomo/habit-grid/internal/core/workers"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	_ = godotenv.Load()

	serverPort := getEnv("PORT", "8080")

	var db *sqlx.DB
	var habitRepo domain.HabitRepository
	var trackingRepo domain.TrackingRepository

	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			dbUser,
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			os.Getenv("DB_NAME"),
		)

		log.Println("Connecting to database...")

		var err error
		db, err = sqlx.Connect("pgx", dsn)
		if err != nil {
			log.Fatalf("Critical: Failed to connect to database: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		log.Println("Database connected successfully.")

		habitRepo = repository.NewPostgresHabitRepository(db)
		trackingRepo = repository.NewPostgresTrackingRepository(db)
	} else {
		log.Println("DB_USER not set: running with in-memory storage (data is lost on restart)")
		habitRepo = repository.NewInMemoryHabitRepository()
		trackingRepo = repository.NewInMemoryTrackingRepository()
	}

	var rdb *redis.Client
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		var err error
		rdb, err = cache.NewRedisClient(cache.Config{
			Host:     redisHost,
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err != nil {
			log.Printf("Redis unavailable, continuing without cache and rate limiting: %v", err)
			rdb = nil
		} else {
			habitRepo = repository.NewCachedHabitRepository(habitRepo, rdb)
		}
	}

	habitService := services.NewHabitService(habitRepo)
	trackingService := services.NewTrackingService(trackingRepo, habitRepo)
	dashboardService := services.NewDashboardService(habitRepo, trackingRepo)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	now := time.Now().UTC()
	if err := habitService.SeedDefaults(ctx, int(now.Month()), now.Year()); err != nil {
		log.Printf("Default habit seeding skipped: %v", err)
	}

	var notifier services.Notifier = &services.LogNotifier{}
	if getEnv("EMAIL_NOTIFICATIONS_ENABLED", "false") == "true" {
		notifier = services.NewSMTPNotifier(services.SMTPConfig{
			Host:      getEnv("SMTP_SERVER", "smtp.gmail.com"),
			Port:      getEnv("SMTP_PORT", "587"),
			Username:  os.Getenv("SMTP_USERNAME"),
			Password:  os.Getenv("SMTP_PASSWORD"),
			From:      getEnv("SMTP_FROM", os.Getenv("SMTP_USERNAME")),
			Recipient: os.Getenv("NOTIFICATION_EMAIL"),
		})
	}

	if getEnv("SWEEP_DISABLED", "false") != "true" {
		sweep := workers.NewFailureSweep(habitRepo, trackingRepo, notifier)
		if err := sweep.Start(ctx); err != nil {
			log.Fatalf("Critical: Failed to start failure sweep: %v", err)
		}
	} else {
		log.Println("Failure sweep disabled via SWEEP_DISABLED")
	}

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler:     adapterHTTP.NewHabitHandler(habitService),
		TrackingHandler:  adapterHTTP.NewTrackingHandler(trackingService),
		DashboardHandler: adapterHTTP.NewDashboardHandler(dashboardService),
		DB:               db,
		Redis:            rdb,
		StartTime:        startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Habit Grid running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
