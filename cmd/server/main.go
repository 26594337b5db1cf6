// House Assistant - multi-house resident chatbot server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ashureev/house-assist/internal/api"
	"github.com/ashureev/house-assist/internal/config"
	"github.com/ashureev/house-assist/internal/dialogue"
	"github.com/ashureev/house-assist/internal/health"
	"github.com/ashureev/house-assist/internal/history"
	"github.com/ashureev/house-assist/internal/langid"
	"github.com/ashureev/house-assist/internal/middleware"
	"github.com/ashureev/house-assist/internal/rules"
	"github.com/ashureev/house-assist/internal/store"
	"github.com/ashureev/house-assist/web"
)

var errNoRuleSet = errors.New("no rule set loaded")

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	tenants := cfg.Tenants()
	slog.Info("Starting server", "port", cfg.Port, "houses", tenants.IDs(), "dev", cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Rules are loaded once before serving; a bad file is fatal.
	holder, err := rules.NewHolder(cfg.RulesPath, logger)
	if err != nil {
		slog.Error("Failed to load intent rules", "path", cfg.RulesPath, "error", err)
		os.Exit(1)
	}

	if cfg.RulesReloadSchedule != "" {
		scheduler, err := rules.StartReloadSchedule(cfg.RulesReloadSchedule, holder, logger)
		if err != nil {
			slog.Error("Failed to start rule reload schedule", "error", err)
			os.Exit(1)
		}
		defer scheduler.Stop()
	}

	repo, err := store.NewSQLite(cfg.DBPath, tenants)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	checks := map[string]api.Pinger{"database": repo}
	var historyStore history.Store = repo
	if cfg.History.Backend == config.HistoryBackendRedis {
		rh, err := store.NewRedisHistory(ctx, store.RedisOptions{
			Addr:     cfg.History.RedisAddr,
			Password: cfg.History.RedisPassword,
			DB:       cfg.History.RedisDB,
		}, tenants)
		if err != nil {
			slog.Error("Failed to connect to Redis history backend", "addr", cfg.History.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := rh.Close(); closeErr != nil {
				slog.Error("Failed to close Redis client", "error", closeErr)
			}
		}()
		historyStore = rh
		checks["history"] = rh
	}
	slog.Info("Chat history backend ready", "backend", cfg.History.Backend)

	// Initialize services.
	historyLog := history.NewLog(historyStore, tenants)
	chatService := dialogue.NewService(tenants, holder, langid.NewDetector(logger), historyLog, dialogue.Config{
		AppendTimeout: cfg.History.AppendTimeout,
		Logger:        logger,
	})

	// Initialize handlers.
	baseHandler := api.NewHandler(tenants, cfg.MaxRequestBodyBytes, logger)
	chatHandler := api.NewChatHandler(baseHandler, chatService, historyLog, holder)
	recordsHandler := api.NewRecordsHandler(baseHandler, repo)
	healthHandler := api.NewHealthHandler(checks, holder)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	limiter.StartEviction(ctx)

	chatConns := api.NewConnections()
	wsHandler := api.NewWebSocketHandler(chatHandler, chatConns, limiter, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	// Public routes.
	healthHandler.RegisterHealth(r)

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		chatHandler.RegisterRoutes(r)
		recordsHandler.RegisterRoutes(r)

		// WebSocket endpoint. The upgrade and every frame share the client's bucket.
		r.Get("/ws/chat", wsHandler.ServeHTTP)
	})

	// Serve embedded chat page.
	r.Handle("/*", web.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket chats are long-lived
		IdleTimeout:  120 * time.Second,
	}

	// gRPC health service.
	var grpcHealth *health.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			slog.Error("Failed to listen for gRPC health", "port", cfg.GRPCPort, "error", err)
			os.Exit(1)
		}
		grpcHealth = health.NewServer(logger)
		grpcHealth.Watch(ctx, 15*time.Second, grpcChecks(checks, holder)...)
		go func() {
			if err := grpcHealth.Serve(lis); err != nil {
				slog.Error("gRPC health server failed", "error", err)
			}
		}()
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	if grpcHealth != nil {
		grpcHealth.Stop()
	}

	chatConns.CloseAll("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	slog.Info("Server stopped successfully")
}

// grpcChecks mirrors the dependencies reported by GET /health so both health
// surfaces agree.
func grpcChecks(pingers map[string]api.Pinger, ruleSrc api.RuleSource) []health.Check {
	checks := make([]health.Check, 0, len(pingers)+1)
	for name, p := range pingers {
		checks = append(checks, health.PingCheck(name, p))
	}
	checks = append(checks, func(context.Context) error {
		if ruleSrc.Current() == nil {
			return errNoRuleSet
		}
		return nil
	})
	return checks
}
