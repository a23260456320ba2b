package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Import       ImportConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string
	ConnectAttempts int
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	MigrationsDir   string
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
	Output      string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// ImportConfig tunes the CSV ticket import.
type ImportConfig struct {
	MaxUploadBytes    int64
	AllowedExtensions []string
	FollowupContent   string
	DefaultContent    string
	RunTTLMinutes     int
	RunHistoryLength  int

	// Fallback defaults used when the import_configs table holds no row.
	DefaultEntity   int64
	DefaultCategory int64
	DefaultUrgency  int
	DefaultImpact   int
	DefaultPriority int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxUpload, err := strconv.ParseInt(getEnv("IMPORT_MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, fmt.Errorf("invalid IMPORT_MAX_UPLOAD_BYTES: %q", os.Getenv("IMPORT_MAX_UPLOAD_BYTES"))
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-import-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 120),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			ConnectAttempts: getEnvAsInt("POSTGRES_CONNECT_ATTEMPTS", 5),
			MaxConns:        int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:   getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
			Output:      getEnv("LOG_OUTPUT", "stdout"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Import: ImportConfig{
			MaxUploadBytes:    maxUpload,
			AllowedExtensions: getEnvAsList("IMPORT_ALLOWED_EXTENSIONS", []string{"csv", "txt"}),
			FollowupContent:   getEnv("IMPORT_FOLLOWUP_CONTENT", "Ticket imported from CSV"),
			DefaultContent:    getEnv("IMPORT_DEFAULT_CONTENT", "Imported from CSV"),
			RunTTLMinutes:     getEnvAsInt("IMPORT_RUN_TTL_MINUTES", 24*60),
			RunHistoryLength:  getEnvAsInt("IMPORT_RUN_HISTORY_LENGTH", 20),
			DefaultEntity:     int64(getEnvAsInt("IMPORT_DEFAULT_ENTITY", 0)),
			DefaultCategory:   int64(getEnvAsInt("IMPORT_DEFAULT_CATEGORY", 0)),
			DefaultUrgency:    getEnvAsInt("IMPORT_DEFAULT_URGENCY", 3),
			DefaultImpact:     getEnvAsInt("IMPORT_DEFAULT_IMPACT", 2),
			DefaultPriority:   getEnvAsInt("IMPORT_DEFAULT_PRIORITY", 3),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RunTTL returns how long finished import runs stay retrievable.
func (i ImportConfig) RunTTL() time.Duration {
	if i.RunTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(i.RunTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, strings.TrimPrefix(part, "."))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
