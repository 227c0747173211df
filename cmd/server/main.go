package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/vikrantan5/FitSphere-sub000/internal/api"
	"github.com/vikrantan5/FitSphere-sub000/internal/apiclient"
	"github.com/vikrantan5/FitSphere-sub000/internal/config"
	"github.com/vikrantan5/FitSphere-sub000/internal/location"
	"github.com/vikrantan5/FitSphere-sub000/internal/metrics"
	"github.com/vikrantan5/FitSphere-sub000/internal/payment"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository/memory"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository/mongo"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository/redis"
	"github.com/vikrantan5/FitSphere-sub000/internal/service"
	"github.com/vikrantan5/FitSphere-sub000/internal/session"
	"github.com/vikrantan5/FitSphere-sub000/internal/storage"
)

// @title FitSphere Dashboard API
// @version 1.0
// @description Browser-facing API for the FitSphere member and admin dashboards.
// @host localhost:8080
// @BasePath /api
func main() {
	log.Println("Starting FitSphere dashboard server...")

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: Could not load .env: %v", err)
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Client State Store ---
	store, closeStore, err := openStateStore(cfg)
	if err != nil {
		log.Fatalf("FATAL: Could not open %s state store: %v", cfg.State.Driver, err)
	}
	defer closeStore()

	sessions, err := session.NewManager(store, cfg.State.SealKey)
	if err != nil {
		log.Fatalf("FATAL: Invalid session seal key: %v", err)
	}

	// --- Metrics and Backend Client ---
	m := metrics.New()
	apiClient := apiclient.New(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout}, m)
	backends := service.NewBackends(apiClient, sessions)
	log.Printf("INFO: Backend API at %s, realtime at %s", cfg.Backend.BaseURL, cfg.Backend.RealtimeURL)

	// --- Export Archive ---
	var archive storage.ArchiveStorage
	if cfg.S3.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		archive, err = storage.NewS3Storage(ctx, cfg.S3)
		cancel()
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize export archive: %v", err)
		}
	} else {
		log.Println("INFO: No export bucket configured; exports are streamed.")
	}

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(backends)
	catalogService := service.NewCatalogService(backends)
	adminService := service.NewAdminService(backends)
	memberService := service.NewMemberService(backends)
	dashboardService := service.NewDashboardService(backends, memberService)
	exportService := service.NewExportService(backends, archive, cfg.S3.PresignExpiry)
	receiptService := service.NewReceiptService(backends, cfg.Payment.MerchantName)

	// --- Initialize Gin Engine ---
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, api.Dependencies{
		Store:            store,
		Sessions:         sessions,
		Backends:         backends,
		Metrics:          m,
		AuthService:      authService,
		CatalogService:   catalogService,
		AdminService:     adminService,
		MemberService:    memberService,
		DashboardService: dashboardService,
		ExportService:    exportService,
		ReceiptService:   receiptService,
		Cookie: api.CookieSettings{
			Name:   cfg.Server.CookieName,
			Secure: cfg.Server.CookieSecure,
			MaxAge: cfg.State.TTL,
		},
		Limiter: api.NewSessionLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst),
		Booking: api.BookingSettings{
			Merchant: payment.Merchant{
				KeyID:      cfg.Payment.KeyID,
				Name:       cfg.Payment.MerchantName,
				Currency:   cfg.Payment.Currency,
				ThemeColor: cfg.Payment.ThemeColor,
			},
			FallbackLocation: location.Point{
				Latitude:  cfg.Location.DefaultLatitude,
				Longitude: cfg.Location.DefaultLongitude,
			},
		},
		Chat: api.ChatSettings{
			RealtimeURL:    cfg.Backend.RealtimeURL,
			MaxReconnects:  cfg.Backend.MaxReconnects,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		},
	})

	handler, err := wrapHandler(router, cfg.Server)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// openStateStore selects the per-browser state backend. The returned func
// releases its connection.
func openStateStore(cfg config.Config) (repository.StateStore, func(), error) {
	switch cfg.State.Driver {
	case "redis":
		client := redis.NewClient(cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redis.Ping(ctx, client); err != nil {
			client.Close()
			return nil, nil, err
		}
		log.Printf("INFO: Client state in Redis at %s", cfg.Redis.Address)
		return redis.NewStateRepository(client, cfg.State.TTL), func() {
			log.Println("Closing Redis...")
			if err := client.Close(); err != nil {
				log.Printf("ERROR: Failed to close Redis: %v", err)
			}
		}, nil

	case "mongo":
		dbClient, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			return nil, nil, err
		}
		appDB := dbClient.Database(cfg.Database.Name)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			mongo.EnsureStateIndexes(ctx, mongo.StateCollection(appDB), cfg.State.TTL)
			log.Println("Index creation process completed.")
		}()
		log.Printf("INFO: Client state in MongoDB database %s", cfg.Database.Name)
		return mongo.NewMongoStateRepository(appDB), func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		}, nil

	case "memory", "":
		log.Println("WARN: Client state kept in memory; sessions are lost on restart.")
		return memory.NewStateRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown state driver %q", cfg.State.Driver)
	}
}

// wrapHandler adds CORS and, when a key is configured, CSRF protection.
func wrapHandler(router http.Handler, cfg config.ServerConfig) (http.Handler, error) {
	var handler http.Handler = router

	if cfg.CSRFKey != "" {
		key, err := hex.DecodeString(cfg.CSRFKey)
		if err != nil || len(key) != 32 {
			return nil, errors.New("server.csrf_key must be 32 hex encoded bytes")
		}
		handler = csrf.Protect(key,
			csrf.Secure(cfg.CookieSecure),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.TrustedOrigins(originHosts(cfg.AllowedOrigins)),
		)(handler)
	} else {
		log.Println("WARN: CSRF protection disabled; set server.csrf_key to enable it.")
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-CSRF-Token", "Content-Disposition"},
		AllowCredentials: true,
	})
	return c.Handler(handler), nil
}

// originHosts turns http://host:port origins into the host:port form the
// CSRF referer check compares against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}
