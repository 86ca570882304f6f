package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"questionbank/config"
	"questionbank/handlers"
	"questionbank/middleware"
	"questionbank/models"
	"questionbank/routes"
	"questionbank/services"

	"github.com/gin-gonic/gin"
)

// @title           Question Bank API
// @version         1.0
// @description     CRUD API for quiz questions and their choices
// @host            localhost:8080
// @BasePath        /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Change feed: local hub, relayed through redis when configured
	hub := services.NewHub()
	go hub.Run(ctx)

	var events services.EventPublisher = hub
	if redisClient := config.InitRedis(cfg); redisClient != nil {
		defer redisClient.Close()
		broker := services.NewRedisBroker(redisClient, cfg.RedisChannel, hub)
		go broker.Run(ctx)
		events = broker
	} else {
		log.Println("REDIS_HOST not set, change events stay on this instance")
	}

	questionService := services.NewQuestionService(db, events)
	questionHandler := handlers.NewQuestionHandler(questionService)

	router := gin.Default()
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	routes.SetupRoutes(router, questionHandler, hub)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
