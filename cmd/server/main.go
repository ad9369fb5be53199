package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"frogol/internal/config"
	httpHandler "frogol/internal/handler/http"
	"frogol/internal/ratelimit"
	"frogol/internal/repository/postgres"
	redisCache "frogol/internal/repository/redis"
	"frogol/internal/service"
	"frogol/pkg/logger"
)

func main() {
	// ========================================================================
	// STEP 1: CONFIGURATION
	// ========================================================================
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.App.LogLevel)
	appLogger.Info("Starting frogol",
		"environment", cfg.App.Environment,
		"port", cfg.Server.Port,
	)

	// ========================================================================
	// STEP 2: DATABASE AND REDIS
	// ========================================================================
	ctx := context.Background()
	db, err := postgres.InitDB(
		ctx,
		cfg.Database.DatabaseDSN(),
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	appLogger.Info("Database connection established")

	redisClient, err := redisCache.InitRedis(cfg.Redis.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	appLogger.Info("Redis connection established")

	if err := os.MkdirAll(cfg.Avatar.Dir, 0o755); err != nil {
		log.Fatalf("Failed to create avatar directory: %v", err)
	}

	// ========================================================================
	// STEP 3: DEPENDENCY INJECTION
	// ========================================================================
	// Wired by hand: pool -> repositories -> services -> handler. No DI
	// container, so the dependency graph is visible right here.
	frogolRepo := postgres.NewFrogolRepository(db)
	linkRepo := postgres.NewLinkRepository(db)
	clickRepo := postgres.NewClickRepository(db)
	leadRepo := postgres.NewLeadRepository(db)
	userRepo := postgres.NewUserRepository(db)
	avatarRepo := postgres.NewAvatarImageRepository(db)

	cache := redisCache.NewCache(redisClient, cfg.Redis.CacheTTL)

	frogolService := service.NewFrogolService(frogolRepo, linkRepo, clickRepo, cache)
	leadService := service.NewLeadService(leadRepo, frogolRepo)
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	avatarService := service.NewAvatarService(frogolRepo, avatarRepo, cache, cfg.Avatar.Dir)

	handler := httpHandler.NewHandler(frogolService, leadService, authService, avatarService, appLogger.Logger)

	// ========================================================================
	// STEP 4: ROUTES
	// ========================================================================
	// Method-and-wildcard patterns need Go 1.22+. Protected routes get the
	// auth middleware per-route so the public surface stays token-free.
	requireAuth := httpHandler.AuthMiddleware(authService)
	authed := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", handler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", handler.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", handler.Logout)

	// Pages
	mux.Handle("POST /api/v1/frogols", authed(handler.CreateFrogol))
	mux.Handle("GET /api/v1/frogols", authed(handler.ListFrogols))
	mux.Handle("GET /api/v1/frogols/{id}", authed(handler.GetFrogol))
	mux.Handle("PUT /api/v1/frogols/{id}", authed(handler.UpdateFrogol))
	mux.Handle("DELETE /api/v1/frogols/{id}", authed(handler.DeleteFrogol))

	// Links
	mux.Handle("POST /api/v1/frogols/{id}/links", authed(handler.CreateLink))
	mux.Handle("GET /api/v1/frogols/{id}/links", authed(handler.ListLinks))
	mux.Handle("POST /api/v1/links/reorder", authed(handler.ReorderLinks))
	mux.Handle("PUT /api/v1/links/{id}", authed(handler.UpdateLink))
	mux.Handle("POST /api/v1/links/{id}/toggle", authed(handler.ToggleLink))
	mux.Handle("DELETE /api/v1/links/{id}", authed(handler.DeleteLink))

	// Leads and analytics
	mux.Handle("GET /api/v1/frogols/{id}/leads", authed(handler.ListLeads))
	mux.Handle("PUT /api/v1/leads/{id}", authed(handler.UpdateLead))
	mux.Handle("DELETE /api/v1/leads/{id}", authed(handler.DeleteLead))
	mux.Handle("GET /api/v1/frogols/{id}/stats", authed(handler.FrogolStats))
	mux.Handle("GET /api/v1/analytics", authed(handler.UserAnalytics))

	// Avatars
	mux.Handle("POST /api/v1/frogols/{id}/avatar", authed(handler.UploadAvatar))
	mux.Handle("GET /api/v1/frogols/{id}/avatar", authed(handler.GetAvatar))
	httpHandler.SetupStaticFiles(mux, cfg.Avatar.Dir)

	// Public surface: profile pages, lead capture, click-through redirects
	mux.HandleFunc("GET /api/v1/public/{slug}", handler.PublicProfile)
	captureLead := http.Handler(http.HandlerFunc(handler.CaptureLead))
	if cfg.App.RateLimitEnabled {
		limiter := ratelimit.NewLimiter(redisClient, cfg.App.RateLimitPerMinute, time.Minute)
		captureLead = httpHandler.RateLimitMiddleware(limiter)(captureLead)
	}
	mux.Handle("POST /api/v1/public/{slug}/leads", captureLead)
	mux.HandleFunc("GET /l/{id}", handler.RedirectLink)

	// Operational endpoints
	mux.HandleFunc("GET /health/live", handler.HealthCheck)
	if cfg.App.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// ========================================================================
	// STEP 5: MIDDLEWARE CHAIN
	// ========================================================================
	// Recovery is outermost so it catches panics from everything below it;
	// logging sits inside so panicking requests are still logged.
	finalHandler := httpHandler.Chain(
		httpHandler.RecoveryMiddleware(appLogger.Logger),
		httpHandler.LoggingMiddleware(appLogger.Logger),
		httpHandler.RequestIDMiddleware,
		httpHandler.MetricsMiddleware,
		httpHandler.CORSMiddleware,
	)(mux)

	// ========================================================================
	// STEP 6: HTTP SERVER WITH GRACEFUL SHUTDOWN
	// ========================================================================
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Give in-flight requests 30 seconds to drain before forcing the exit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exited gracefully")
}
