package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	PantryAPI PantryAPIConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Schedule  ScheduleConfig
	AI        AIConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// AuthConfig holds the secret used to verify bearer tokens.
type AuthConfig struct {
	JWTSecret string
}

// PantryAPIConfig points at the remote pantry backend. Token is the service
// account used when no caller token is forwarded (WhatsApp, scheduled jobs).
type PantryAPIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	NotifyTo      string
}

// Enabled reports whether WhatsApp credentials were supplied.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	JournalRange    string
}

func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ScheduleConfig holds scheduler-related settings.
type ScheduleConfig struct {
	SweepCron   string
	SummaryCron string
	Timezone    string
}

// Location resolves the configured time zone.
func (c ScheduleConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

// AIConfig holds settings for LLM providers.
type AIConfig struct {
	AnthropicKey string
	Model        string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds settings for the recipe cache. An empty Addr disables it.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	RecipeTTL time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the environment.
		_ = godotenv.Load()
	}

	pantryTimeout, err := getenvDuration("PANTRY_API_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	recipeTTL, err := getenvDuration("REDIS_RECIPE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	redisDB, err := strconv.Atoi(getenvWithDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_DB: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			AllowedOrigins: splitList(getenvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		PantryAPI: PantryAPIConfig{
			BaseURL: os.Getenv("PANTRY_API_BASE_URL"),
			Token:   os.Getenv("PANTRY_API_TOKEN"),
			Timeout: pantryTimeout,
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			NotifyTo:      os.Getenv("WHATSAPP_NOTIFY_TO"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			JournalRange:    getenvWithDefault("GOOGLE_SHEET_JOURNAL_RANGE", "Journal!A:F"),
		},
		Schedule: ScheduleConfig{
			SweepCron:   getenvWithDefault("SWEEP_CRON_SCHEDULE", "1 0 * * *"),
			SummaryCron: getenvWithDefault("SUMMARY_CRON_SCHEDULE", "0 20 * * 5"),
			Timezone:    getenvWithDefault("TIMEZONE", "Asia/Bangkok"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:        getenvWithDefault("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "pantry"),
		},
		Redis: RedisConfig{
			Addr:      os.Getenv("REDIS_ADDR"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			RecipeTTL: recipeTTL,
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}

	switch {
	case c.PantryAPI.BaseURL == "":
		return errors.New("PANTRY_API_BASE_URL must be provided")
	case c.PantryAPI.Token == "":
		return errors.New("PANTRY_API_TOKEN must be provided")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Schedule.SweepCron == "" {
		return errors.New("SWEEP_CRON_SCHEDULE must be provided")
	}
	if c.Schedule.SummaryCron == "" {
		return errors.New("SUMMARY_CRON_SCHEDULE must be provided")
	}
	if _, err := c.Schedule.Location(); err != nil {
		return err
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
