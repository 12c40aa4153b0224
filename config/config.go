package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	BackendHugot       = "hugot"
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
	BackendVader       = "vader"
)

type Config struct {
	Env      string
	LogLevel slog.Level

	Server    ServerConfig
	Database  DatabaseConfig
	Sentiment SentimentConfig
	Cache     CacheConfig
	Import    ImportConfig
	Dashboard DashboardConfig
}

type ServerConfig struct {
	Host    string
	Port    int
	GinMode string
}

// Address returns host:port for the API listener.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver string
	// Path is the sqlite database file.
	Path string
	// URL is a full postgres DSN. When empty it is assembled from the DB_* parts.
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN returns the postgres connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type SentimentConfig struct {
	Backend string
	Model   string
	// ModelDir is where hugot keeps downloaded ONNX models.
	ModelDir string
	// PositiveLabel overrides the backend's raw label for the positive class.
	PositiveLabel string

	HFInferenceURL string
	HFAPIToken     string
	HFTimeout      time.Duration

	OpenAIAPIKey string
	OpenAIModel  string
}

type CacheConfig struct {
	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool
	TTL            time.Duration
}

// Enabled reports whether an analytics cache should be used.
func (c CacheConfig) Enabled() bool {
	return c.ValkeyAddress != ""
}

type ImportConfig struct {
	BatchSize     int
	ProgressEvery int
}

type DashboardConfig struct {
	APIURL string
	Port   int
}

// FromEnv builds a Config from the process environment, applying defaults.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		Env:      AppEnv(),
		LogLevel: parseLevel(os.Getenv("LOG_LEVEL")),
		Server: ServerConfig{
			Host:    getEnv("API_HOST", "0.0.0.0"),
			Port:    getEnvInt("API_PORT", 8000, &errs),
			GinMode: getEnv("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			Path:     getEnv("DB_PATH", "./reviews.db"),
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		Sentiment: SentimentConfig{
			Backend:        strings.ToLower(getEnv("SENTIMENT_BACKEND", BackendHugot)),
			Model:          getEnv("SENTIMENT_MODEL", "matthewburke/korean_sentiment"),
			ModelDir:       getEnv("MODEL_DIR", "./models"),
			PositiveLabel:  os.Getenv("SENTIMENT_POSITIVE_LABEL"),
			HFInferenceURL: getEnv("HF_INFERENCE_URL", "https://api-inference.huggingface.co/models/matthewburke/korean_sentiment"),
			HFAPIToken:     os.Getenv("HF_API_TOKEN"),
			HFTimeout:      getEnvDuration("HF_TIMEOUT", 60*time.Second, &errs),
			OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Cache: CacheConfig{
			ValkeyAddress:  os.Getenv("VALKEY_INIT_ADDRESS"),
			ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
			ValkeyTLS:      os.Getenv("VALKEY_TLS") == "true",
			TTL:            getEnvDuration("ANALYTICS_CACHE_TTL", 30*time.Second, &errs),
		},
		Import: ImportConfig{
			BatchSize:     getEnvInt("IMPORT_BATCH_SIZE", 10, &errs),
			ProgressEvery: getEnvInt("IMPORT_PROGRESS_EVERY", 100, &errs),
		},
		Dashboard: DashboardConfig{
			APIURL: strings.TrimRight(getEnv("API_URL", "http://127.0.0.1:8000"), "/"),
			Port:   getEnvInt("DASHBOARD_PORT", 8501, &errs),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected drivers and backends have what they need.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" && c.Database.Name == "" {
			return errors.New("DATABASE_URL or DB_NAME is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Sentiment.Backend {
	case BackendHugot:
		if c.Sentiment.Model == "" {
			return errors.New("SENTIMENT_MODEL is required for the hugot backend")
		}
	case BackendHuggingFace:
		if c.Sentiment.HFInferenceURL == "" {
			return errors.New("HF_INFERENCE_URL is required for the huggingface backend")
		}
	case BackendOpenAI:
		if c.Sentiment.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai backend")
		}
	case BackendVader:
	default:
		return fmt.Errorf("unsupported SENTIMENT_BACKEND %q", c.Sentiment.Backend)
	}

	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive, got %d", c.Import.BatchSize)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
