package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	LogLevel    string

	FrontendURL string
	AdminURL    string

	StorageDriver  string
	UploadDir      string
	FirebaseBucket string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	RedisURL      string
	RedisPassword string

	KafkaBrokers []string
	KafkaTopic   string

	StatsCacheTTL     time.Duration
	LowStockThreshold int

	AdminEmail    string
	AdminPassword string
}

func LoadEnv() error {
	// A missing .env is fine; in production the variables are set directly.
	if err := godotenv.Load(); err != nil {
		return nil
	}
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	var missing []string

	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	switch GetEnv("STORAGE_DRIVER", "local") {
	case "firebase":
		if os.Getenv("FIREBASE_STORAGE_BUCKET") == "" {
			log.Println("WARNING: FIREBASE_STORAGE_BUCKET not set - banner uploads will fail")
		}
	case "minio":
		if os.Getenv("MINIO_ENDPOINT") == "" {
			log.Println("WARNING: MINIO_ENDPOINT not set - banner uploads will fail")
		}
	}
	if os.Getenv("REDIS_URL") == "" {
		log.Println("WARNING: REDIS_URL not set - using in-process cache")
	}
	if os.Getenv("KAFKA_BROKERS") == "" {
		log.Println("WARNING: KAFKA_BROKERS not set - order events will not be published")
	}
	if os.Getenv("FRONTEND_URL") == "" {
		log.Println("WARNING: FRONTEND_URL not set - CORS may not work correctly")
	}

	return nil
}

// Load reads the full configuration from the environment.
func Load() Config {
	return Config{
		Port:              GetEnv("PORT", "3000"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		FrontendURL:       os.Getenv("FRONTEND_URL"),
		AdminURL:          os.Getenv("ADMIN_URL"),
		StorageDriver:     GetEnv("STORAGE_DRIVER", "local"),
		UploadDir:         GetEnv("UPLOAD_DIR", "public/uploads/banners"),
		FirebaseBucket:    os.Getenv("FIREBASE_STORAGE_BUCKET"),
		MinioEndpoint:     os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:    os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:    os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:       GetEnv("MINIO_BUCKET", "banners"),
		MinioUseSSL:       GetEnvBool("MINIO_USE_SSL", false),
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        GetEnv("KAFKA_TOPIC", "order_events"),
		StatsCacheTTL:     GetEnvDuration("STATS_CACHE_TTL", 30*time.Second),
		LowStockThreshold: GetEnvInt("LOW_STOCK_THRESHOLD", 5),
		AdminEmail:        GetEnv("ADMIN_EMAIL", "admin@woolcrafts.in"),
		AdminPassword:     GetEnv("ADMIN_PASSWORD", "admin123"),
	}
}

// CORSOrigins returns the configured frontend origins, never empty.
func (c Config) CORSOrigins() []string {
	var origins []string
	for _, o := range []string{c.FrontendURL, c.AdminURL} {
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func GetEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
