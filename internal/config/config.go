package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const EnvironmentProduction = "production"

type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level

	DatabaseURL      string
	DBMaxOpenConns   int
	DBMaxIdleConns   int
	DBConnLifetime   time.Duration
	DBAutoMigrate    bool
	RedisURL         string
	StorageNamespace string

	SessionTTL           time.Duration
	ExamSessionRetention time.Duration

	Casdoor CasdoorConfig

	KafkaBrokers []string
	EventsTopic  string

	// PrivilegedEmails are always ADMIN and can never be banned or demoted
	PrivilegedEmails      []string
	AllowPrivilegedBypass bool
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// LoadConfig reads an optional .env file and then the process environment
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Environment:          getEnv("ENVIRONMENT", "development"),
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnLifetime:       getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBAutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		StorageNamespace:     getEnv("STORAGE_NAMESPACE", "gizaedu"),
		SessionTTL:           getEnvDuration("SESSION_TTL", 24*time.Hour),
		ExamSessionRetention: getEnvDuration("EXAM_SESSION_RETENTION", 15*time.Minute),
		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: getEnv("CASDOOR_ORGANIZATION", "gizaedu"),
			Application:  getEnv("CASDOOR_APPLICATION", "exam-service"),
		},
		KafkaBrokers:          splitList(os.Getenv("KAFKA_BROKERS")),
		EventsTopic:           getEnv("EVENTS_TOPIC", "gizaedu.events"),
		PrivilegedEmails:      normalizeEmails(splitList(os.Getenv("PRIVILEGED_EMAILS"))),
		AllowPrivilegedBypass: getEnvBool("ALLOW_PRIVILEGED_BYPASS", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if (c.DatabaseURL == "") != (c.Casdoor.Endpoint == "") {
		return errors.New("DATABASE_URL and CASDOOR_ENDPOINT must be set together to enable the remote backend")
	}
	if c.RedisURL == "" {
		return errors.New("REDIS_URL is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// RemoteEnabled selects the PostgreSQL + Casdoor backend over the local one
func (c *Config) RemoteEnabled() bool {
	return c.DatabaseURL != "" && c.Casdoor.Endpoint != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// BypassAllowed reports whether privileged accounts may sign in without a password
func (c *Config) BypassAllowed() bool {
	return c.AllowPrivilegedBypass && !c.RemoteEnabled() && !c.IsProduction()
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeEmails(emails []string) []string {
	for i, e := range emails {
		emails[i] = strings.ToLower(strings.TrimSpace(e))
	}
	return emails
}
