package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"thalia/internal/cache"
	"thalia/internal/config"
	"thalia/internal/oracle"
	"thalia/internal/prompt"
	"thalia/internal/repository"
	"thalia/internal/service"
	"thalia/internal/transport/rest"
	"thalia/internal/transport/ws"
)

// @title Thalia Menopause Support API
// @version 1.0
// @description Conversational menopause support with MRS symptom assessment
// @host localhost:8080
// @BasePath /v1
func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// Load AI config and log model settings
	aiConfig := config.DefaultAIConfig()
	log.Printf("AI Config:")
	log.Printf("  Intent:     %s", aiConfig.Models.Intent)
	log.Printf("  Assessment: %s", aiConfig.Models.Assessment)
	log.Printf("  Knowledge:  %s", aiConfig.Models.Knowledge)
	log.Printf("  Support:    %s", aiConfig.Models.Support)
	if aiConfig.IsEnabled() {
		log.Println("  API Key:    configured ✓")
	} else {
		log.Println("  API Key:    NOT SET (chat endpoints will return errors)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	redisAddr := cfg.RedisAddr
	// Remove redis:// prefix if present
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	userRepo := repository.NewUserRepo(db)
	conversationRepo := repository.NewConversationRepo(db)
	assessmentRepo := repository.NewAssessmentRepo(db)

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb)

	// Prompt templates (embedded)
	templates := prompt.NewStore()

	// One Gemini client per task; the assessment and intent clients ask for
	// JSON output, the open-ended modes stream plain text.
	intentOracle := oracle.NewGemini(aiConfig, aiConfig.Models.Intent, false)
	assessmentOracle := oracle.NewGemini(aiConfig, aiConfig.Models.Assessment, true)
	knowledgeOracle := oracle.NewGemini(aiConfig, aiConfig.Models.Knowledge, false)
	supportOracle := oracle.NewGemini(aiConfig, aiConfig.Models.Support, false)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	intents := service.NewIntentClassifier(intentOracle, templates)
	routerSvc := service.NewRouterService(
		intents,
		templates,
		assessmentOracle,
		knowledgeOracle,
		supportOracle,
		conversationRepo,
		assessmentRepo,
		sessionCache,
	)

	// Create router with container
	container := &rest.Container{
		AuthService:   authSvc,
		RouterService: routerSvc,
		WSHub:         wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/register")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/chat")
		log.Println("  GET  /v1/assessments")
		log.Println("  GET  /v1/sessions/{sessionId}/progress")
		log.Println("  GET  /v1/sessions/{sessionId}/history")
		log.Println("  WS   /v1/ws/chat")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
