package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plantmatch/internal/cache"
	"plantmatch/internal/config"
	"plantmatch/internal/form"
	"plantmatch/internal/repository"
	"plantmatch/internal/service"
	"plantmatch/internal/transport/rest"
	"plantmatch/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// Quiz configuration: validated once, fatal on failure
	quizCfg, err := config.LoadQuizConfig(cfg.QuizConfigPath)
	if err != nil {
		log.Fatal("Quiz config: ", err)
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisURI, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepo(db)
	leadRepo := repository.NewLeadRepo(db)

	// Initialize caches
	resultCache := cache.NewResultCache(rdb)
	analyticsCache := cache.NewAnalyticsCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService()
	scorer := form.NewScorer(rand.NewSource(time.Now().UnixNano()))
	quizSvc := service.NewQuizService(quizCfg, catalogRepo, resultCache, scorer)
	leadSvc := service.NewLeadService(leadRepo, quizCfg.LeadFormConfig)
	analyticsSvc := service.NewAnalyticsService(analyticsCache)

	quizSvc.SetAnalyticsService(analyticsSvc)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	quizSvc.SetBroadcaster(wsHub)
	leadSvc.SetBroadcaster(wsHub)

	if err := quizSvc.LoadCatalog(ctx); err != nil {
		log.Fatal("Catalog: ", err)
	}

	// Create router with container
	container := &rest.Container{
		AuthService:      authSvc,
		QuizService:      quizSvc,
		LeadService:      leadSvc,
		AnalyticsService: analyticsSvc,
		WSHub:            wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  GET  /v1/quiz/config")
		log.Println("  POST /v1/quiz/sessions")
		log.Println("  POST /v1/quiz/sessions/responses")
		log.Println("  POST /v1/quiz/sessions/advance")
		log.Println("  POST /v1/quiz/sessions/restart")
		log.Println("  POST /v1/leads")
		log.Println("  GET  /v1/leads")
		log.Println("  GET  /v1/analytics")
		log.Println("  WS   /v1/ws/sessions/watch")
		log.Println("  WS   /v1/ws/host")

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
