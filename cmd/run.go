package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"ohtopup/api"
	"ohtopup/config"
	"ohtopup/database"
	"ohtopup/events"
	"ohtopup/notify"
	"ohtopup/repository"
	"ohtopup/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting ohtopup server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize redis connection
	log.Println("Connecting to redis...")
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Println("Redis connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	riskLimiter := service.NewRiskLimiter(redisClient)
	userService := service.NewUserService(uowFactory)
	gameService := service.NewGameService(uowFactory, riskLimiter)
	settingsService := service.NewSettingsService(uowFactory)
	statsService := service.NewStatsService(uowFactory)
	log.Println("Services initialized successfully")

	// Initialize Discord large-win alerts when configured
	var notifier *notify.DiscordNotifier
	if cfg.DiscordToken != "" && cfg.DiscordAlertChannelID != "" {
		log.Println("Initializing Discord notifier...")
		notifier, err = notify.NewDiscordNotifier(cfg.DiscordToken, cfg.DiscordAlertChannelID)
		if err != nil {
			return fmt.Errorf("failed to initialize Discord notifier: %w", err)
		}
		notifier.Subscribe(eventBus)
		log.Println("Discord notifier initialized successfully")
	}

	// Initialize HTTP server
	jwtService := api.NewJWTService(cfg.JWTSecret)
	server := api.NewServer(jwtService, userService, gameService, statsService, settingsService)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Handler(),
	}

	go func() {
		log.Printf("HTTP server listening on :%s in %s mode...", cfg.Port, cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if notifier != nil {
		if err := notifier.Close(); err != nil {
			log.Printf("Error closing Discord notifier: %v", err)
		}
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing redis connection: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
