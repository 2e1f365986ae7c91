package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Env         string
	APIUrl      string
	FrontendURL string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Generation service (external, RunPod-backed)
	GenerationURL     string
	GenerationTimeout time.Duration

	// Job storage
	DataDir   string
	AssetsDir string

	// Catalog defaults
	DefaultBrand    string
	DefaultCategory string
	ContactLine     string

	// Drive S3 (published catalogs)
	DriveS3Endpoint        string
	DriveS3Region          string
	DriveS3AccessKeyID     string
	DriveS3SecretAccessKey string
	DriveS3UsePathStyle    bool
	DriveBucket            string
	DrivePublicURL         string
	DrivePresignTTL        time.Duration

	// Upload limits
	MaxGarmentImages int
	MaxUploadBytes   int64
	UploadsPerDay    int

	// Client polling
	PollInterval time.Duration
	PollBudget   int

	// Security
	RateLimitRequests int
	RateLimitDuration time.Duration

	// CORS
	AllowedOrigins []string
}

func New() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		APIUrl:      getEnv("API_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Generation service
		GenerationURL:     getEnv("GENERATION_URL", "http://localhost:8000"),
		GenerationTimeout: getEnvAsDuration("GENERATION_TIMEOUT", "30s"),

		// Job storage
		DataDir:   getEnv("DATA_DIR", "/data/catalog"),
		AssetsDir: getEnv("ASSETS_DIR", "assets"),

		// Catalog defaults
		DefaultBrand:    getEnv("DEFAULT_BRAND", "BONO"),
		DefaultCategory: getEnv("DEFAULT_CATEGORY", "teen_boy"),
		ContactLine:     getEnv("CONTACT_LINE", "www.bono.com | @bono_official"),

		// Drive S3
		DriveS3Endpoint:        getEnv("DRIVE_S3_ENDPOINT", ""),
		DriveS3Region:          getEnv("DRIVE_S3_REGION", "us-east-1"),
		DriveS3AccessKeyID:     getEnv("DRIVE_S3_ACCESS_KEY_ID", ""),
		DriveS3SecretAccessKey: getEnv("DRIVE_S3_SECRET_ACCESS_KEY", ""),
		DriveS3UsePathStyle:    getEnv("DRIVE_S3_USE_PATH_STYLE", "true") == "true",
		DriveBucket:            getEnv("DRIVE_BUCKET", "bono-catalogs"),
		DrivePublicURL:         getEnv("DRIVE_PUBLIC_URL", ""),
		DrivePresignTTL:        getEnvAsDuration("DRIVE_PRESIGN_TTL", "24h"),

		// Upload limits
		MaxGarmentImages: getEnvAsInt("MAX_GARMENT_IMAGES", 10),
		MaxUploadBytes:   int64(getEnvAsInt("MAX_UPLOAD_MB", 50)) * 1024 * 1024,
		UploadsPerDay:    getEnvAsInt("UPLOADS_PER_DAY", 30),

		// Client polling
		PollInterval: getEnvAsDuration("POLL_INTERVAL", "5s"),
		PollBudget:   getEnvAsInt("POLL_BUDGET", 60),

		// Security
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration: getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
