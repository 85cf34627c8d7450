package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shortearn/auth"
	"shortearn/cache"
	"shortearn/config"
	"shortearn/handler"
	appLogger "shortearn/logger"
	"shortearn/middleware"
	redisClient "shortearn/redis"
	"shortearn/shortener"
	"shortearn/store"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// @title ShortEarn API
// @version 1.0
// @description Link shortener with per-user earnings ledger: short-code allocation, redirect counting, dashboard aggregation and withdrawal requests over Redis.

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Initialize logger
	appLogger.Initialize()

	// Load configuration
	cfg := config.MustLoadConfig()
	log.Info().Msg("Configuration loaded successfully")

	// Initialize Redis client
	rdb := redisClient.NewClient(cfg.Redis)
	st := store.New(rdb)

	// Base URL for generated short links
	baseURL := cfg.WebServer.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s://%s:%s", cfg.WebServer.Scheme, cfg.WebServer.IP, cfg.WebServer.Port)
	}

	// Initialize link cache (if enabled)
	var cacheClient *cache.Cache
	if cfg.Cache.Enabled {
		var err error
		cacheClient, err = cache.New(cfg.Cache)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize cache")
		}
	} else {
		log.Info().Msg("Cache disabled in configuration")
	}

	// Token manager
	jwtManager, err := auth.NewJWTManager(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token manager")
	}

	// Create handlers with dependency injection
	allocator := shortener.NewAllocator(rdb, baseURL)
	resolver := shortener.NewResolver(rdb)
	authHandler := handler.NewAuthHandler(st, jwtManager, cfg, baseURL)
	linkHandler := handler.NewLinkHandler(allocator, resolver, st, cacheClient, cfg, baseURL)
	ledgerHandler := handler.NewLedgerHandler(st, cfg)
	profileHandler := handler.NewProfileHandler(st, cfg)

	// Set up router
	r := mux.NewRouter()

	// Apply global middleware
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	userAuth := middleware.NewUserAuth(jwtManager)

	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger)
	r.Use(rateLimiter.Limit)

	// Public routes
	r.HandleFunc("/health", linkHandler.HealthCheck).Methods("GET")
	r.HandleFunc("/cache/metrics", linkHandler.CacheMetrics).Methods("GET")
	r.HandleFunc("/api/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/refresh", authHandler.RefreshToken).Methods("POST")
	r.HandleFunc("/qr/{code}", linkHandler.GenerateQR).Methods("GET")
	r.HandleFunc("/a/{code}", linkHandler.Redirect).Methods("GET")

	// Protected routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(userAuth.Protect)
	api.HandleFunc("/shorten", linkHandler.CreateShortLink).Methods("POST")
	api.HandleFunc("/links", linkHandler.ListLinks).Methods("GET")
	api.HandleFunc("/dashboard", ledgerHandler.GetDashboard).Methods("GET")
	api.HandleFunc("/dashboard/stream", ledgerHandler.StreamDashboard).Methods("GET")
	api.HandleFunc("/withdraw", ledgerHandler.SubmitWithdrawal).Methods("POST")
	api.HandleFunc("/withdrawals", ledgerHandler.GetWithdrawals).Methods("GET")
	api.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	api.HandleFunc("/profile/name", profileHandler.UpdateName).Methods("PUT")
	api.HandleFunc("/profile/password", profileHandler.UpdatePassword).Methods("PUT")

	// Configure HTTP server
	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("address", serverAddress).
			Str("base_url", baseURL).
			Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Close cache
	if cacheClient != nil {
		cacheClient.Close()
	}

	// Close Redis connection
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Redis connection")
	}

	log.Info().Msg("Server stopped gracefully")
}
