package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Values come from the
// environment (optionally seeded by a .env file) with development defaults.
type Config struct {
	ListenAddr string
	DevMode    bool // include raw error detail in API responses

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MinIO / S3 兼容对象存储配置
	MinioEndpoint  string
	MinioRegion    string
	MinioBucket    string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	// PublicBaseURL, when set, overrides the derived public object URL prefix
	// (e.g. "https://bucket.s3.ap-northeast-1.amazonaws.com").
	PublicBaseURL string

	// AdminSecret gates the admin listing and delete endpoints.
	AdminSecret string

	// AllowedOrigins is the CORS allow-list. Empty means same-origin only.
	AllowedOrigins []string

	// MaxAudioMB bounds a single audio master. Covers are fixed at 10MB.
	MaxAudioMB int
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	maxAudioMB := getEnvInt("MAX_AUDIO_MB", 200)
	// Every observed deployment sat somewhere in the 50-300MB band.
	if maxAudioMB < 50 {
		maxAudioMB = 50
	}
	if maxAudioMB > 300 {
		maxAudioMB = 300
	}

	var origins []string
	if raw := getEnv("ALLOWED_ORIGINS", ""); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DevMode:    getEnvBool("DEV_MODE", false),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for passwords
		DBName:     getEnv("DB_NAME", "otodist"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioRegion:    getEnv("MINIO_REGION", "ap-northeast-1"),
		MinioBucket:    getEnv("MINIO_BUCKET", "otodist"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", ""),

		AdminSecret: os.Getenv("ADMIN_SECRET"),

		AllowedOrigins: origins,

		MaxAudioMB: maxAudioMB,
	}
}
