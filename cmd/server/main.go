package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexuscampus/campusmap/internal/featureflags"
	"github.com/nexuscampus/campusmap/internal/handler"
	"github.com/nexuscampus/campusmap/internal/infrastructure/llm"
	"github.com/nexuscampus/campusmap/internal/infrastructure/logger"
	"github.com/nexuscampus/campusmap/internal/infrastructure/redis"
	"github.com/nexuscampus/campusmap/internal/infrastructure/translate"
	"github.com/nexuscampus/campusmap/internal/observability/metrics"
	"github.com/nexuscampus/campusmap/internal/observability/tracing"
	"github.com/nexuscampus/campusmap/internal/repository"
	"github.com/nexuscampus/campusmap/internal/security/auth"
	"github.com/nexuscampus/campusmap/internal/security/middleware"
	"github.com/nexuscampus/campusmap/internal/service"
	"github.com/nexuscampus/campusmap/internal/storage"
	"github.com/nexuscampus/campusmap/pkg/config"
	"github.com/nexuscampus/campusmap/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting campus-map server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "campus-map", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Database
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	db := pool.GetDB()

	// 5. Redis is optional; without it chat history is simply disabled
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
	} else {
		log.Info("REDIS_URL not set, chat history disabled")
	}

	// 6. Repositories and image storage
	userRepo := repository.NewPostgresUserRepository(db, log)
	eventRepo := repository.NewPostgresEventRepository(db, log)
	commentRepo := repository.NewPostgresCommentRepository(db, log)
	buildingRepo := repository.NewPostgresBuildingRepository(db, log)

	images, err := storage.NewImageStore(cfg.UploadDir, log)
	if err != nil {
		log.Error("failed to initialize image store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Security components. A short JWT secret refuses to start.
	tokenManager, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL, log)
	if err != nil {
		log.Error("failed to initialize token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	hasher := auth.NewPasswordHasher()

	// 8. External clients
	translateClient := translate.NewClient(cfg.TranslateAPIURL, cfg.TranslateAPIKey, log)
	llmClient, err := llm.NewClient(llm.Config{
		Provider:     cfg.ChatProvider,
		GeminiAPIURL: cfg.GeminiAPIURL,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		OllamaURL:    cfg.OllamaURL,
		OllamaModel:  cfg.OllamaModel,
	}, log)
	if err != nil {
		log.Error("failed to initialize chat model client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 9. Services
	var conversations *repository.ConversationStore
	if redisClient != nil {
		conversations = repository.NewConversationStore(redisClient, log)
	}

	userService := service.NewUserService(userRepo, hasher, log)
	eventService := service.NewEventService(eventRepo, commentRepo, images, featureflags.Enabled(featureflags.AutoApprove), log)
	commentService := service.NewCommentService(commentRepo, eventRepo, log)
	chatService := service.NewChatService(buildingRepo, llmClient, conversations, featureflags.Enabled(featureflags.ChatHistory), log)

	// 10. Handlers
	authHandler := handler.NewAuthHandler(userService, tokenManager, log)
	eventHandler := handler.NewEventHandler(eventService, cfg.MaxUploadMB, log)
	commentHandler := handler.NewCommentHandler(commentService, log)
	adminHandler := handler.NewAdminHandler(userService, eventService, log)
	buildingHandler := handler.NewBuildingHandler(buildingRepo, log)
	translateHandler := handler.NewTranslateHandler(translateClient, log)
	chatHandler := handler.NewChatHandler(chatService, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)

	// 11. Routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/users/login", authHandler.Login)

	mux.HandleFunc("GET /api/events", eventHandler.List)
	mux.HandleFunc("GET /api/events/{id}", eventHandler.Get)
	mux.HandleFunc("POST /api/events", eventHandler.Create)
	mux.HandleFunc("PUT /api/events/{id}", eventHandler.Update)
	mux.HandleFunc("DELETE /api/events/{id}", eventHandler.Delete)

	mux.HandleFunc("GET /api/events/{id}/comments", commentHandler.List)
	mux.HandleFunc("POST /api/events/{id}/comments", commentHandler.Add)
	mux.HandleFunc("DELETE /api/comments/{id}", commentHandler.Delete)

	mux.HandleFunc("GET /api/buildings", buildingHandler.List)
	mux.HandleFunc("POST /api/translate", translateHandler.Translate)
	mux.HandleFunc("POST /api/chat", chatHandler.Chat)

	mux.HandleFunc("GET /api/admin/users", adminHandler.ListUsers)
	mux.HandleFunc("PUT /api/admin/users/{id}/role", adminHandler.UpdateRole)
	mux.HandleFunc("GET /api/admin/events/pending", adminHandler.PendingEvents)
	mux.HandleFunc("PUT /api/admin/events/{id}/approve", adminHandler.ApproveEvent)

	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(images.Dir()))))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> auth gate -> CORS -> mux
	rootHandler := withRequestID(
		metrics.HTTPMiddleware(mux)(
			middleware.Authentication(tokenManager, userRepo, log)(handlerWithCORS),
		),
		log,
	)

	// 12. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.String("chat_provider", cfg.ChatProvider),
		slog.String("upload_dir", images.Dir()),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
