package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"woolcrafts-backend/cache"
	"woolcrafts-backend/config"
	"woolcrafts-backend/database"
	"woolcrafts-backend/events"
	"woolcrafts-backend/jobs"
	"woolcrafts-backend/logging"
	"woolcrafts-backend/middleware"
	"woolcrafts-backend/routes"
	"woolcrafts-backend/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const uploadsURLPrefix = "/uploads/banners"

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		log.Fatal("Error loading .env file:", err)
	}

	// Validate critical environment variables
	if err := config.ValidateEnv(); err != nil {
		log.Fatal("Environment validation failed: ", err)
	}
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()

	// Initialize database
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Create default admin user if not exists
	if err := database.CreateDefaultAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("Warning: Could not create default admin: %v", err)
	}

	kv, sweeper := newCache(cfg)
	publisher := newPublisher(cfg)

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize banner storage:", err)
	}

	deps := routes.NewDependencies(db, kv, publisher, blobs, routes.Options{
		StatsCacheTTL:     cfg.StatsCacheTTL,
		LowStockThreshold: cfg.LowStockThreshold,
	})
	limiter := middleware.NewRateLimiter(10, time.Minute)
	deps.AuthLimiter = limiter

	scheduler, err := jobs.NewScheduler(jobs.Options{
		LowStock:          deps.Stats,
		LowStockThreshold: cfg.LowStockThreshold,
		Sweeper:           sweeper,
		Logger:            logger,
	})
	if err != nil {
		log.Fatal("Failed to create job scheduler:", err)
	}
	scheduler.Start()

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	// Limit multipart form memory to 10MB
	r.MaxMultipartMemory = 10 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	if cfg.StorageDriver == "local" {
		r.Static(uploadsURLPrefix, cfg.UploadDir)
	}

	// Setup routes
	routes.SetupRoutes(r, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Run server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if err := scheduler.Stop(); err != nil {
		log.Printf("Error stopping job scheduler: %v", err)
	}
	limiter.Stop()
	if err := publisher.Close(); err != nil {
		log.Printf("Error closing event publisher: %v", err)
	}
	if err := kv.Close(); err != nil {
		log.Printf("Error closing cache: %v", err)
	}

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		} else {
			log.Println("Database connection closed")
		}
	}

	log.Println("Server exited gracefully")
}

// newCache prefers Redis and falls back to an in-process cache, which also needs
// its expired entries swept.
func newCache(cfg config.Config) (cache.Cache, jobs.Sweeper) {
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.RedisURL, cfg.RedisPassword)
		if err == nil {
			log.Println("Using Redis cache")
			return rc, nil
		}
		log.Printf("Warning: Redis unavailable, using in-process cache: %v", err)
	}
	mc := cache.NewMemoryCache()
	return mc, mc
}

func newPublisher(cfg config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NoopPublisher{}
	}
	log.Printf("Publishing order events to Kafka topic %s", cfg.KafkaTopic)
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}

func newBlobStore(ctx context.Context, cfg config.Config) (storage.BlobStore, error) {
	switch cfg.StorageDriver {
	case "firebase":
		return storage.NewFirebaseStore(ctx, cfg.FirebaseBucket, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	case "minio":
		store, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return storage.NewLocalStore(filepath.Clean(cfg.UploadDir), uploadsURLPrefix)
	}
}
