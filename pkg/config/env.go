// Env loader
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv            string
	Port              string
	DBDriver          string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSchema          string
	SQLitePath        string
	JWTSecret         string
	SmtpFrom          string
	SmtpPassword      string
	SmtpHost          string
	SmtpPort          string
	DigestRecipients  []string
	LLMProvider       string
	LLMAPIKey         string
	LLMBaseURL        string
	LLMModel          string
	LLMFallbackModels []string
	LLMFailover       bool
	LLMTimeout        time.Duration
	ContentTimezone   string
	SchedulerInterval time.Duration
}

// LoadConfig loads environment variables from the .env file
func LoadConfig() *Config {
	appEnv := os.Getenv("APP_ENV")

	switch appEnv {
	case "production":
		if err := godotenv.Load(".env.production"); err == nil {
			fmt.Println("Loaded .env.production")
		}
	default:
		if err := godotenv.Load(".env.development"); err == nil {
			fmt.Println("Loaded .env.development")
		}
	}

	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	appEnv := getEnv("APP_ENV", "development")

	schedulerDefault := time.Hour
	if appEnv == "production" {
		schedulerDefault = 24 * time.Hour
	}

	return &Config{
		AppEnv:            appEnv,
		Port:              getEnv("PORT", "8080"),
		DBDriver:          getEnv("DB_DRIVER", "postgres"),
		DBHost:            getEnv("BLUEPRINT_DB_HOST", "localhost"),
		DBPort:            getEnv("BLUEPRINT_DB_PORT", "5432"),
		DBName:            getEnv("BLUEPRINT_DB_DATABASE", "confession"),
		DBUser:            getEnv("BLUEPRINT_DB_USERNAME", "postgres"),
		DBPassword:        getEnv("BLUEPRINT_DB_PASSWORD", ""),
		DBSchema:          getEnv("BLUEPRINT_DB_SCHEMA", "public"),
		SQLitePath:        getEnv("SQLITE_PATH", "confession.db"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		SmtpFrom:          getEnv("SMTP_FROM", ""),
		SmtpPassword:      getEnv("SMTP_PASSWORD", ""),
		SmtpHost:          getEnv("SMTP_HOST", "smtp.gmail.com"),
		SmtpPort:          getEnv("SMTP_PORT", "587"),
		DigestRecipients:  getEnvList("DIGEST_RECIPIENTS"),
		LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
		LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMFallbackModels: getEnvListDefault("LLM_FALLBACK_MODELS", []string{"gpt-4o", "gpt-3.5-turbo"}),
		LLMFailover:       getEnvBool("LLM_FAILOVER", false),
		LLMTimeout:        getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		ContentTimezone:   getEnv("CONTENT_TIMEZONE", "UTC"),
		SchedulerInterval: getEnvDuration("SCHEDULER_INTERVAL", schedulerDefault),
	}
}

// Validate reports configuration that would make the service unusable.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}

	switch c.LLMProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (want openai or gemini)", c.LLMProvider)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.SchedulerInterval <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must be positive, got %s", c.SchedulerInterval)
	}
	return nil
}

// Location is the timezone that decides which calendar day "today" is.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ContentTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid CONTENT_TIMEZONE %q: %w", c.ContentTimezone, err)
	}
	return loc, nil
}

// PostgresDSN builds the connection URL for the pgx driver.
func (c *Config) PostgresDSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	if c.DBSchema != "" {
		dsn += "&search_path=" + url.QueryEscape(c.DBSchema)
	}
	return dsn
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvList(key string) []string {
	return getEnvListDefault(key, nil)
}

func getEnvListDefault(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func GetAppEnv() string {
	if value, exists := os.LookupEnv("APP_ENV"); exists {
		return value
	}
	return "development"
}
