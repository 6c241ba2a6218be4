package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"listing-service/internal/constants"

	"github.com/joho/godotenv"
)

const (
	SourcePostgres  = "postgres"
	SourcePostgREST = "postgrest"
)

type DBconfig struct {
	URL      string
	MaxConns int
}

type RESTconfig struct {
	PORT           string
	AllowedOrigins []string
}

type PostgRESTConfig struct {
	URL    string
	APIKey string
}

type StorageConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
}

type RabbitMQConfig struct {
	Enabled bool
	URL     string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

type AggregatorConfig struct {
	// RefreshInterval - период фоновой перезагрузки; 0 выключает таймер
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName        string
	ListingSource  string
	WhatsAppNumber string
	JWTSecret      string

	Database     DBconfig
	Rest         RESTconfig
	PostgREST    PostgRESTConfig
	Storage      StorageConfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
	Aggregator   AggregatorConfig

	// Warnings - замечания по конфигурации, логируются после создания логгера
	Warnings []string
}

// AdminEnabled сообщает, можно ли поднять админку: ей нужны БД и секрет JWT
func (c *AppConfig) AdminEnabled() bool {
	return c.Database.URL != "" && c.JWTSecret != ""
}

// ImageUploadEnabled сообщает, настроено ли хранилище изображений
func (c *AppConfig) ImageUploadEnabled() bool {
	return c.Storage.URL != "" && c.Storage.ServiceKey != ""
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Файл .env необязателен, явно переданный путь - обязателен.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	cfg := &AppConfig{}

	if len(envPath) > 0 {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath[0], err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		cfg.warn("could not load .env file: %v", err)
	}

	cfg.AppName = getEnvAsString("APP_NAME", "listing-service")
	cfg.Rest.PORT = getEnvAsString("PORT", "8080")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	cfg.Database.MaxConns = cfg.getEnvAsInt("DATABASE_MAX_CONNS", 10)

	cfg.ListingSource = strings.ToLower(getEnvAsString("LISTING_SOURCE", SourcePostgres))
	switch cfg.ListingSource {
	case SourcePostgres:
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required when LISTING_SOURCE=postgres")
		}
	case SourcePostgREST:
		cfg.PostgREST.URL = os.Getenv("POSTGREST_URL")
		cfg.PostgREST.APIKey = os.Getenv("POSTGREST_API_KEY")
		if cfg.PostgREST.URL == "" || cfg.PostgREST.APIKey == "" {
			return nil, fmt.Errorf("POSTGREST_URL and POSTGREST_API_KEY are required when LISTING_SOURCE=postgrest")
		}
	default:
		return nil, fmt.Errorf("unsupported LISTING_SOURCE %q (expected postgres or postgrest)", cfg.ListingSource)
	}

	cfg.WhatsAppNumber = os.Getenv("WHATSAPP_NUMBER")
	if cfg.WhatsAppNumber == "" {
		return nil, fmt.Errorf("WHATSAPP_NUMBER environment variable is required")
	}

	cfg.JWTSecret = os.Getenv("AUTH_JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.warn("AUTH_JWT_SECRET is not set, admin API is disabled")
	} else if cfg.Database.URL == "" {
		cfg.warn("DATABASE_URL is not set, admin API is disabled")
	}

	cfg.Storage.URL = os.Getenv("STORAGE_URL")
	cfg.Storage.ServiceKey = os.Getenv("STORAGE_SERVICE_KEY")
	cfg.Storage.Bucket = getEnvAsString("STORAGE_BUCKET", constants.DefaultImagesBucket)

	cfg.RabbitMQ.Enabled = cfg.getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED=true")
		}
	}

	cfg.FluentBit.Enabled = cfg.getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			cfg.warn("FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = cfg.getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	cfg.Aggregator.RefreshInterval = cfg.getEnvAsDuration("AGGREGATOR_REFRESH_INTERVAL", 5*time.Minute)
	cfg.Aggregator.FetchTimeout = cfg.getEnvAsDuration("AGGREGATOR_FETCH_TIMEOUT", 15*time.Second)

	return cfg, nil
}

func (c *AppConfig) warn(format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsList читает список через запятую
func getEnvAsList(key string, defaultValue []string) []string {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *AppConfig) getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		c.warn("environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func (c *AppConfig) getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		c.warn("environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

func (c *AppConfig) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil || d < 0 {
		c.warn("environment variable %s (value: %s) is not a valid duration. Using default value: %s", key, valStr, defaultValue)
		return defaultValue
	}
	return d
}
