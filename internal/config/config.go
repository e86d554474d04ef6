package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"habitat-pro/internal/domain"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Email         EmailConfig         `yaml:"email"`
	WhatsApp      WhatsAppConfig      `yaml:"whatsapp"`
	Billing       BillingConfig       `yaml:"billing"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Documents     DocumentsConfig     `yaml:"documents"`
	Log           LogConfig           `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"` // public URL prefix used in notification links
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// EmailConfig selects and configures the outgoing email transport.
type EmailConfig struct {
	Provider string `yaml:"provider"` // "smtp" or "sendgrid"

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`

	SendGridAPIKey string `yaml:"sendgrid_api_key"`

	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

// WhatsAppConfig contains messaging settings. In link mode no message is
// pushed; a prefilled wa.me link is produced instead.
type WhatsAppConfig struct {
	LinkMode    bool   `yaml:"link_mode"`
	CountryCode string `yaml:"country_code"` // prefix for local numbers, e.g. "55"
}

// BillingConfig contains the charge policy knobs.
type BillingConfig struct {
	LateFeePct         float64 `yaml:"late_fee_pct"`
	MonthlyInterestPct float64 `yaml:"monthly_interest_pct"`
	DefaultDueDay      int     `yaml:"default_due_day"`
	TokenValidityDays  int     `yaml:"token_validity_days"`
}

// Policy converts the configured percentages into the domain late policy.
func (b BillingConfig) Policy() domain.LatePolicy {
	return domain.LatePolicy{
		LateFeePct:         decimal.NewFromFloat(b.LateFeePct),
		MonthlyInterestPct: decimal.NewFromFloat(b.MonthlyInterestPct),
	}
}

// NotificationsConfig controls dispatch behavior.
type NotificationsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	TransportTimeoutSeconds int  `yaml:"transport_timeout_seconds"`
}

func (n NotificationsConfig) TransportTimeout() time.Duration {
	return time.Duration(n.TransportTimeoutSeconds) * time.Second
}

// SchedulerConfig contains cron schedule settings (with seconds field).
type SchedulerConfig struct {
	Timezone          string `yaml:"timezone"`
	DailyNotification string `yaml:"daily_notification"`
	UrgentSweep       string `yaml:"urgent_sweep"`
	RenewalDetection  string `yaml:"renewal_detection"`
	MonthlyGeneration string `yaml:"monthly_generation"`
	Cleanup           string `yaml:"cleanup"`
}

// DocumentsConfig contains receipt/contract rendering settings.
type DocumentsConfig struct {
	TemplateDir string `yaml:"template_dir"`
	OutputDir   string `yaml:"output_dir"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("EMAIL_PROVIDER"); val != "" {
		c.Email.Provider = val
	}
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.Email.SMTPHost = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Email.SMTPPort)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.Email.SMTPUser = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.Email.SMTPPassword = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.From = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("SERVER_BASE_URL"); val != "" {
		c.Server.BaseURL = val
	}

	// Notifications
	if val := os.Getenv("NOTIFICATIONS_ENABLED"); val != "" {
		c.Notifications.Enabled = val == "true" || val == "1"
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

// Validate checks if the configuration is valid and fills in defaults.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// Email validation
	switch c.Email.Provider {
	case "", "smtp":
		c.Email.Provider = "smtp"
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Email.SMTPPort)
		}
	case "sendgrid":
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("SendGrid API key is required")
		}
	default:
		return fmt.Errorf("unknown email provider: %s", c.Email.Provider)
	}
	if c.Email.From == "" {
		return fmt.Errorf("email from address is required")
	}

	// WhatsApp defaults
	if c.WhatsApp.CountryCode == "" {
		c.WhatsApp.CountryCode = "55"
	}

	// Billing defaults (percentages, not fractions)
	if c.Billing.LateFeePct == 0 {
		c.Billing.LateFeePct = 10.00
	}
	if c.Billing.MonthlyInterestPct == 0 {
		c.Billing.MonthlyInterestPct = 1.00
	}
	if c.Billing.DefaultDueDay == 0 {
		c.Billing.DefaultDueDay = 10
	}
	if c.Billing.DefaultDueDay < 1 || c.Billing.DefaultDueDay > 28 {
		return fmt.Errorf("default due day must be between 1 and 28, got %d", c.Billing.DefaultDueDay)
	}
	if c.Billing.TokenValidityDays == 0 {
		c.Billing.TokenValidityDays = 30
	}

	// Notification defaults
	if c.Notifications.TransportTimeoutSeconds == 0 {
		c.Notifications.TransportTimeoutSeconds = 10
	}

	// Scheduler defaults
	if c.Scheduler.Timezone == "" {
		c.Scheduler.Timezone = "America/Sao_Paulo"
	}
	if c.Scheduler.DailyNotification == "" {
		c.Scheduler.DailyNotification = "0 0 8 * * *" // 08:00 local, daily
	}
	if c.Scheduler.UrgentSweep == "" {
		c.Scheduler.UrgentSweep = "0 0 * * * *" // top of every hour
	}
	if c.Scheduler.RenewalDetection == "" {
		c.Scheduler.RenewalDetection = "0 30 8 * * *" // 08:30 local, daily
	}
	if c.Scheduler.MonthlyGeneration == "" {
		c.Scheduler.MonthlyGeneration = "0 0 6 25 * *" // 06:00 local, 25th of month
	}
	if c.Scheduler.Cleanup == "" {
		c.Scheduler.Cleanup = "0 0 2 * * 0" // Sunday 02:00 local
	}

	// Documents defaults
	if c.Documents.TemplateDir == "" {
		c.Documents.TemplateDir = "templates"
	}
	if c.Documents.OutputDir == "" {
		c.Documents.OutputDir = "documents"
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
