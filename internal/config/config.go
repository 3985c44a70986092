package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the assistant service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"agro-assistant-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"AGRO_API_PORT" envDefault:"8385"`
	LogLevel        string        `env:"AGRO_LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (required, no default)
	DatabaseURL    string        `env:"DB_POSTGRESQL_DSN,notEmpty"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Generative model endpoint. The API key lives in the proxy process
	// environment only; it is never accepted from or returned to clients.
	GeminiAPIKey      string        `env:"GEMINI_API_KEY,notEmpty"`
	GeminiBaseURL     string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiTextModel   string        `env:"GEMINI_TEXT_MODEL" envDefault:"gemini-pro"`
	GeminiVisionModel string        `env:"GEMINI_VISION_MODEL" envDefault:"gemini-pro-vision"`
	GeminiTimeout     time.Duration `env:"GEMINI_TIMEOUT" envDefault:"60s"`

	// Live feed backend: "memory" keeps change events in-process, "postgres"
	// bridges them across processes over LISTEN/NOTIFY.
	FeedBackend string `env:"FEED_BACKEND" envDefault:"memory"`

	// Attachment handling
	ImageFetchTimeout  time.Duration `env:"IMAGE_FETCH_TIMEOUT" envDefault:"15s"`
	MaxAttachmentBytes int64         `env:"MAX_ATTACHMENT_BYTES" envDefault:"20971520"`

	// Storage Backend Selection
	StorageBackend string `env:"BLOB_STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "local"

	// Local Storage Configuration
	LocalStoragePath    string `env:"BLOB_LOCAL_STORAGE_PATH"`
	LocalStorageBaseURL string `env:"BLOB_LOCAL_STORAGE_BASE_URL"`

	// S3 Storage Configuration
	S3Endpoint       string `env:"BLOB_S3_ENDPOINT"`
	S3PublicEndpoint string `env:"BLOB_S3_PUBLIC_ENDPOINT"`
	S3Region         string `env:"BLOB_S3_REGION" envDefault:"us-west-2"`
	S3Bucket         string `env:"BLOB_S3_BUCKET"`
	S3AccessKeyID    string `env:"BLOB_S3_ACCESS_KEY_ID"`
	S3SecretKey      string `env:"BLOB_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle   bool   `env:"BLOB_S3_USE_PATH_STYLE" envDefault:"true"`

	// Answerer selection for the conversation controllers: "embedded" calls
	// the in-process prompt assembly service directly, "remote" posts to a
	// separate proxy's /answer endpoint at ANSWER_URL.
	AnswerMode string `env:"ANSWER_MODE" envDefault:"embedded"`
	AnswerURL  string `env:"ANSWER_URL"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.S3PublicEndpoint = strings.TrimSpace(cfg.S3PublicEndpoint)
	if cfg.MaxAttachmentBytes <= 0 {
		cfg.MaxAttachmentBytes = 20 * 1024 * 1024
	}
	if cfg.AnswerURL == "" {
		cfg.AnswerURL = fmt.Sprintf("http://localhost:%d", cfg.HTTPPort)
	}
	if cfg.IsLocalStorage() && strings.TrimSpace(cfg.LocalStoragePath) == "" {
		return nil, fmt.Errorf("BLOB_LOCAL_STORAGE_PATH is required when BLOB_STORAGE_BACKEND is local")
	}
	switch backend := strings.ToLower(strings.TrimSpace(cfg.FeedBackend)); backend {
	case "", "memory", "postgres":
	default:
		return nil, fmt.Errorf("unknown FEED_BACKEND %q", backend)
	}
	switch mode := strings.ToLower(strings.TrimSpace(cfg.AnswerMode)); mode {
	case "", "embedded", "remote":
	default:
		return nil, fmt.Errorf("unknown ANSWER_MODE %q", mode)
	}
	return cfg, nil
}

// IsRemoteAnswerer returns true if controllers should reach the answer proxy
// over HTTP instead of calling the in-process service.
func (c *Config) IsRemoteAnswerer() bool {
	return strings.ToLower(strings.TrimSpace(c.AnswerMode)) == "remote"
}

// IsPostgresFeed returns true if change events should bridge across
// processes through PostgreSQL.
func (c *Config) IsPostgresFeed() bool {
	return strings.ToLower(strings.TrimSpace(c.FeedBackend)) == "postgres"
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "local"
}
