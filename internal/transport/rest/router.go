package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"plantmatch/internal/service"
	"plantmatch/internal/transport/rest/handler"
	"plantmatch/internal/transport/rest/middleware"
	"plantmatch/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	QuizService      *service.QuizService
	LeadService      *service.LeadService
	AnalyticsService *service.AnalyticsService
	WSHub            *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	quizHandler := handler.NewQuizHandler(c.QuizService, c.AuthService)
	leadHandler := handler.NewLeadHandler(c.LeadService)
	analyticsHandler := handler.NewAnalyticsHandler(c.AnalyticsService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/quiz/config", quizHandler.Config).Methods("GET", "OPTIONS")
	v1.HandleFunc("/quiz/sessions", quizHandler.Start).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/sessions/watch", wsHandler.SessionWS).Methods("GET")
	v1.HandleFunc("/ws/host", wsHandler.HostWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Session routes (require session auth)
	sessionRoutes := v1.NewRoute().Subrouter()
	sessionRoutes.Use(authMW.RequireSession)

	sessionRoutes.HandleFunc("/quiz/sessions/current", quizHandler.Get).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/quiz/sessions/current", quizHandler.End).Methods("DELETE", "OPTIONS")
	sessionRoutes.HandleFunc("/quiz/sessions/responses", quizHandler.Record).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/quiz/sessions/advance", quizHandler.Advance).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/quiz/sessions/restart", quizHandler.Restart).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/quiz/sessions/cta", quizHandler.ClickCTA).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/leads", leadHandler.Submit).Methods("POST", "OPTIONS")

	// Host routes (require host auth)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/leads", leadHandler.List).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/analytics", analyticsHandler.Summary).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
