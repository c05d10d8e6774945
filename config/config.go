package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server      ServerConfig
	Persistence PersistenceConfig
	Redis       RedisConfig
	Editor      EditorConfig
	AWS         AWSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// PersistenceConfig points at the survey persistence API.
type PersistenceConfig struct {
	BaseURL    string
	TimeoutSec int
	VerifyPath string
}

// Timeout returns the request timeout of the persistence client.
func (c PersistenceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RedisConfig holds Redis connection settings. An empty Addr keeps sessions
// and delete guards in process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// EditorConfig holds session and draft lifetimes.
type EditorConfig struct {
	SessionTTLMinutes  int
	DraftIdleMinutes   int
	DeleteGuardSeconds int
}

func (c EditorConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c EditorConfig) DraftIdle() time.Duration {
	return time.Duration(c.DraftIdleMinutes) * time.Minute
}

func (c EditorConfig) DeleteGuardTTL() time.Duration {
	return time.Duration(c.DeleteGuardSeconds) * time.Second
}

// AWSConfig holds AWS credentials and the report export bucket.
// An empty ReportsBucket disables export.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	ReportsBucket        string
	PresignExpireMinutes int
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		},
		Persistence: PersistenceConfig{
			BaseURL:    strings.TrimRight(getEnv("PERSISTENCE_API_URL", "http://localhost:5000/api"), "/"),
			TimeoutSec: getEnvInt("PERSISTENCE_API_TIMEOUT_SEC", 15),
			VerifyPath: getEnv("AUTH_VERIFY_PATH", "/verify"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Editor: EditorConfig{
			SessionTTLMinutes:  getEnvInt("SESSION_TTL_MINUTES", 60),
			DraftIdleMinutes:   getEnvInt("DRAFT_IDLE_MINUTES", 120),
			DeleteGuardSeconds: getEnvInt("DELETE_GUARD_SECONDS", 30),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ReportsBucket:        getEnv("AWS_S3_REPORTS_BUCKET", ""),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
