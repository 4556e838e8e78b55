package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Write modes for ledger submissions.
const (
	WriteModeScript = "script"
	WriteModeSheets = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Sheets   SheetsConfig
	Ledger   LedgerConfig
	Script   ScriptConfig
	Schedule ScheduleConfig
	MongoDB  MongoDBConfig
	AI       AIConfig
	WhatsApp WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// LedgerConfig locates the ledger inside the spreadsheet.
type LedgerConfig struct {
	Sheet       string
	Range       string
	ScriptRange string
	WriteMode   string
	PendingTTL  time.Duration
}

// ReadRange is the A1 range the full ledger is fetched from.
func (c LedgerConfig) ReadRange() string {
	return fmt.Sprintf("%s!%s", c.Sheet, c.Range)
}

// AppendRange is the A1 range new ledger rows are appended after.
func (c LedgerConfig) AppendRange() string {
	return fmt.Sprintf("%s!A:R", c.Sheet)
}

// ScriptConfig describes the Apps Script write endpoint.
type ScriptConfig struct {
	URL     string
	Timeout time.Duration
}

// ScheduleConfig holds cron settings for background jobs.
type ScheduleConfig struct {
	RefreshCron  string
	SnapshotCron string
	DigestCron   string
	Timezone     string
}

// MongoDBConfig holds settings for MongoDB. An empty URI disables snapshots.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AIConfig holds settings for LLM providers. An empty key disables ticket analysis.
type AIConfig struct {
	AnthropicKey string
}

// WhatsAppConfig contains credentials for the stock anomaly digest. Leaving
// the token empty disables it.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	ManagerID     string
}

// Enabled reports whether enough is configured to send messages.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.ManagerID != ""
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
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	pendingTTL, err := getDurationWithDefault("LEDGER_PENDING_TTL", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	scriptTimeout, err := getDurationWithDefault("SCRIPT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			AllowedOrigins: splitList(getenvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
			LogLevel:       getenvWithDefault("LOG_LEVEL", "info"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Ledger: LedgerConfig{
			Sheet:       getenvWithDefault("LEDGER_SHEET", "DULIEU"),
			Range:       getenvWithDefault("LEDGER_RANGE", "A3:U"),
			ScriptRange: getenvWithDefault("SCRIPT_CONFIG_RANGE", "DMDC!A2"),
			WriteMode:   strings.ToLower(getenvWithDefault("LEDGER_WRITE_MODE", WriteModeScript)),
			PendingTTL:  pendingTTL,
		},
		Script: ScriptConfig{
			URL:     os.Getenv("SCRIPT_URL"),
			Timeout: scriptTimeout,
		},
		Schedule: ScheduleConfig{
			RefreshCron:  getenvWithDefault("REFRESH_CRON_SCHEDULE", "*/15 * * * *"),
			SnapshotCron: getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "0 23 * * *"),
			DigestCron:   getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 7 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Ho_Chi_Minh"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stockledger"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerID:     os.Getenv("WHATSAPP_MANAGER_ID"),
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

	if c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
	}

	if c.Sheets.SpreadsheetID == "" {
		return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
	}

	if c.Ledger.Sheet == "" || c.Ledger.Range == "" {
		return errors.New("LEDGER_SHEET and LEDGER_RANGE must not be empty")
	}

	switch c.Ledger.WriteMode {
	case WriteModeScript, WriteModeSheets:
	default:
		return fmt.Errorf("LEDGER_WRITE_MODE must be %q or %q, got %q", WriteModeScript, WriteModeSheets, c.Ledger.WriteMode)
	}

	if c.Ledger.PendingTTL <= 0 {
		return errors.New("LEDGER_PENDING_TTL must be positive")
	}

	if c.Script.Timeout <= 0 {
		return errors.New("SCRIPT_TIMEOUT must be positive")
	}

	if c.Schedule.RefreshCron == "" {
		return errors.New("REFRESH_CRON_SCHEDULE must be provided")
	}

	if c.Schedule.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.WhatsApp.AccessToken != "" && c.WhatsApp.PhoneNumberID == "" {
		return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided with WHATSAPP_TOKEN")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
