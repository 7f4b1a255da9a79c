package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusmarket/backend/internal/config"
	"github.com/campusmarket/backend/internal/handler"
	appMiddleware "github.com/campusmarket/backend/internal/middleware"
	"github.com/campusmarket/backend/internal/repository"
	"github.com/campusmarket/backend/internal/service"
	"github.com/campusmarket/backend/pkg/payment"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if present (for local development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize database
	db, err := repository.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	if err := repository.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("database connected & migrated")

	// Optional Redis entitlement cache
	var cache *repository.EntitlementCache
	if cfg.RedisURL != "" {
		cache, err = repository.NewEntitlementCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis error: %v", err)
		}
		defer cache.Close()
		log.Println("entitlement cache connected")
	}

	// Payment gateway: real processor when configured, mock otherwise
	var gateway payment.Gateway
	if cfg.GatewayURL != "" {
		gateway = payment.NewHTTPGateway(cfg.GatewayURL, cfg.GatewayAPIKey, cfg.GatewayTimeout)
	} else {
		log.Println("GATEWAY_URL not set, using mock payment gateway")
		gateway = payment.NewMockGateway()
	}

	sellerRepo := repository.NewSellerRepository(db)
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.AdminEmail, cfg.AdminPassword, sellerRepo)

	if err := authSvc.SeedAdmin(ctx); err != nil {
		log.Fatalf("admin seed error: %v", err)
	}

	subRepo := repository.NewSubscriptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	entitlementSvc := service.NewEntitlementService(subRepo, paymentRepo, sellerRepo, gateway, cache, cfg.GatewayTimeout)

	listingRepo := repository.NewListingRepository(db)
	dashboardSvc := service.NewDashboardService(listingRepo, entitlementSvc)

	// Background expiry sweep; CurrentTier never depends on its cadence.
	entitlementSvc.StartSweep(ctx, cfg.SweepInterval)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authSvc)
	healthHandler := handler.NewHealthHandler(db, cache)
	tiersHandler := handler.NewTiersHandler()
	entitlementHandler := handler.NewEntitlementHandler(entitlementSvc)
	listingHandler := handler.NewListingHandler(dashboardSvc)
	adminHandler := handler.NewAdminHandler(authSvc)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(appMiddleware.Recovery)
	r.Use(appMiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limiter (20 req/sec per IP, burst of 40)
	globalRL := appMiddleware.NewRateLimiter(20, 40)
	r.Use(globalRL.Middleware())

	// Public routes
	r.Get("/health", healthHandler.Check)
	r.Get("/api/tiers", tiersHandler.List)
	r.Get("/api/listings/{tier}", listingHandler.Browse)

	// Auth routes
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.StrictRateLimiter())
		r.Post("/api/auth/register", authHandler.Register)
		r.Post("/api/auth/login", authHandler.Login)
	})

	// Protected API routes
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.Auth(authSvc))

		r.Get("/api/auth/me", authHandler.Me)

		// Listings
		r.Post("/api/listings/{tier}", listingHandler.Publish)
		r.Delete("/api/listings/{tier}/{id}", listingHandler.Delete)
		r.Patch("/api/listings/{tier}/{id}", listingHandler.ToggleSold)
		r.Get("/api/dashboard", listingHandler.Dashboard)

		// Entitlement
		r.Post("/api/entitlement/initiate", entitlementHandler.Initiate)
		r.Post("/api/entitlement/activate", entitlementHandler.Activate)
		r.Get("/api/entitlement/status", entitlementHandler.Status)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.AdminOnly)
			r.Get("/api/admin/sellers", adminHandler.ListSellers)
			r.Post("/api/admin/sellers/{id}/verify", adminHandler.VerifySeller)
			r.Post("/api/entitlement/sweep", entitlementHandler.Sweep)
		})
	})

	// Start server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("shutting down...")
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("campusmarket backend listening at http://%s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
