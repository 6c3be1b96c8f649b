package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fireDragonAPI/handlers"
	"fireDragonAPI/internal/telegram"
	"fireDragonAPI/internal/workers"
	"fireDragonAPI/middleware"
	"fireDragonAPI/services"
)

var (
	dbPool        *pgxpool.Pool
	botClient     *telegram.Client
	userService   *services.UserService
	streakService *services.StreakService
	sweepService  *services.SweepService
	botService    *services.BotService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal("BOT_TOKEN environment variable is not set")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	botClient = telegram.NewClient(botToken)

	me, err := botClient.GetMe(ctx)
	if err != nil {
		log.Fatal("Failed to reach the Telegram Bot API:", err)
	}
	log.Printf("Bot authorized as @%s", me.Username)

	webAppURL := os.Getenv("FRONTEND_URL")
	if webAppURL == "" {
		webAppURL = "https://example.com"
		log.Println("FRONTEND_URL not set, web-app button will point at a placeholder")
	}

	userService = services.NewUserService(dbPool)
	streakService = services.NewStreakService(dbPool, botClient)
	sweepService = services.NewSweepService(dbPool, botClient)
	botService = services.NewBotService(userService, streakService, botClient, me.Username, webAppURL)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	webhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	webhookSecret := os.Getenv("TELEGRAM_WEBHOOK_SECRET")
	if webhookURL != "" && webhookSecret == "" {
		log.Fatal("TELEGRAM_WEBHOOK_SECRET must be set when TELEGRAM_WEBHOOK_URL is set")
	}
	if webhookURL == "" {
		// keep the handler dark in polling mode
		webhookSecret = ""
	}

	// Initialize handlers
	streakHandler := handlers.NewStreakHandler(streakService)
	webhookHandler := handlers.NewWebhookHandler(botService, webhookSecret)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		pingCtx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(pingCtx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "fireDragon-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/telegram", webhookHandler.HandleTelegramWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/leaderboard", streakHandler.GetLeaderboard).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE VERIFIED INIT-DATA HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.TelegramAuthMiddleware)

	protected.HandleFunc("/streaks/{userID}", streakHandler.GetStreaks).Methods("GET")
	protected.HandleFunc("/checkin", streakHandler.CheckIn).Methods("POST")
	protected.HandleFunc("/rename-pet", streakHandler.RenamePet).Methods("POST")
	protected.HandleFunc("/use-freeze", streakHandler.UseFreeze).Methods("POST")

	// Hourly decay sweep
	workers.StartDecayWorker(ctx, sweepService)

	// Inbound updates: webhook when configured, long polling otherwise.
	// The two modes are mutually exclusive on the Bot API side, so each
	// mode clears the other's registration first.
	if webhookURL != "" {
		if err := botClient.SetWebhook(ctx, webhookURL, webhookSecret); err != nil {
			log.Fatal("Failed to register webhook:", err)
		}
		log.Printf("Webhook mode: updates delivered to %s", webhookURL)
	} else {
		if err := botClient.DeleteWebhook(ctx); err != nil {
			log.Fatal("Failed to clear stale webhook before polling:", err)
		}
		botClient.StartPolling(ctx, botService)
	}

	// CORS configuration
	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "X-Tg-Data"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
