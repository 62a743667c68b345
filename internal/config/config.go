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
	Farm      FarmConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Scheduler SchedulerConfig
	AI        AIConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Backup    BackupConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// RateLimit is the sustained requests per second allowed per client IP on the
	// AI-backed and webhook routes.
	RateLimit float64
	RateBurst int
}

// FarmConfig holds the farm's calendar settings.
type FarmConfig struct {
	Timezone string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
// AllowedSenders may run commands alongside ManagerNumber; when both are empty anyone can.
type WhatsAppConfig struct {
	AccessToken    string
	PhoneNumberID  string
	VerifyToken    string
	BaseURL        string
	APIVersion     string
	ManagerNumber  string
	AllowedSenders []string
}

// Enabled reports whether the operations channel has credentials.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	PlanRange       string
}

// Enabled reports whether plan rows should be exported to a spreadsheet.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// SchedulerConfig holds cron expressions for the recurring jobs; an empty expression disables a job.
type SchedulerConfig struct {
	DailyPlanCron     string
	WeeklySummaryCron string
	BackupCron        string
}

// AIConfig holds settings for LLM providers.
type AIConfig struct {
	AnthropicKey string
	Model        string
	ForecastTTL  time.Duration
}

// Enabled reports whether the forecast and suggestion client can be built.
func (c AIConfig) Enabled() bool {
	return c.AnthropicKey != ""
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether the snapshot should be persisted to MongoDB.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
}

// RedisConfig holds settings for the forecast cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether forecasts should be cached.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// BackupConfig holds the S3 destination for nightly snapshot backups.
type BackupConfig struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether backups are configured.
func (c BackupConfig) Enabled() bool {
	return c.Bucket != ""
}

// LogConfig holds logging options.
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
		// Missing .env files are acceptable when configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	rateLimit, err := getenvFloat("RATE_LIMIT_RPS", 2)
	if err != nil {
		return nil, err
	}
	rateBurst, err := getenvInt("RATE_LIMIT_BURST", 5)
	if err != nil {
		return nil, err
	}
	redisDB, err := getenvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	forecastTTL, err := getenvDuration("FORECAST_CACHE_TTL", 6*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			AllowedOrigins: splitList(getenvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
			RateLimit:      rateLimit,
			RateBurst:      rateBurst,
		},
		Farm: FarmConfig{
			Timezone: getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:    os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:    os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:        getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:     getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerNumber:  os.Getenv("WHATSAPP_MANAGER_NUMBER"),
			AllowedSenders: splitList(os.Getenv("WHATSAPP_ALLOWED_SENDERS")),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			PlanRange:       getenvWithDefault("GOOGLE_SHEET_PLAN_RANGE", "SowingPlan!A:F"),
		},
		Scheduler: SchedulerConfig{
			DailyPlanCron:     getenvWithDefault("DAILY_PLAN_CRON", "0 6 * * *"),
			WeeklySummaryCron: getenvWithDefault("WEEKLY_SUMMARY_CRON", "0 8 * * 1"),
			BackupCron:        getenvWithDefault("BACKUP_CRON", "30 23 * * *"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:        getenvWithDefault("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
			ForecastTTL:  forecastTTL,
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "microgreens"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Backup: BackupConfig{
			Bucket:          os.Getenv("BACKUP_S3_BUCKET"),
			Prefix:          getenvWithDefault("BACKUP_S3_PREFIX", "snapshots/"),
			Region:          getenvWithDefault("AWS_REGION", "ap-south-1"),
			Endpoint:        os.Getenv("BACKUP_S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
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

// Validate ensures that required configuration fields are populated and that optional
// integrations are either fully configured or left off.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if c.Farm.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Farm.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is not a valid location: %w", c.Farm.Timezone, err)
	}

	wa := c.WhatsApp
	if wa.AccessToken != "" || wa.PhoneNumberID != "" || wa.VerifyToken != "" {
		switch {
		case wa.AccessToken == "":
			return errors.New("WHATSAPP_TOKEN must be provided")
		case wa.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case wa.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		}
		if wa.BaseURL == "" {
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		}
		if wa.APIVersion == "" {
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if (c.Backup.AccessKeyID == "") != (c.Backup.SecretAccessKey == "") {
		return errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be provided together")
	}

	return nil
}

// Location resolves the farm timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Farm.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
