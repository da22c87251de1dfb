package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Log          LogConfig          `yaml:"log"`
	JWT          JWTConfig          `yaml:"jwt"`
	Payment      PaymentConfig      `yaml:"payment"`
	Shop         ShopConfig         `yaml:"shop"`
	Notification NotificationConfig `yaml:"notification"`
	Redis        RedisConfig        `yaml:"redis"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	GRPCPort               int    `yaml:"grpc_port"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
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

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// JWTConfig holds the shared secret of the external identity provider.
// Tokens are only validated here, never issued.
type JWTConfig struct {
	Secret   string `yaml:"secret"`
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
}

// PaymentConfig contains webhook verification and processor settings
type PaymentConfig struct {
	WebhookSecret    string `yaml:"webhook_secret"`
	ToleranceSeconds int    `yaml:"tolerance_seconds"`
	DefaultCurrency  string `yaml:"default_currency"`
	InvoicePrefix    string `yaml:"invoice_prefix"`
	OmisePublicKey   string `yaml:"omise_public_key"`
	OmiseSecretKey   string `yaml:"omise_secret_key"`
	SourceType       string `yaml:"source_type"`
	ReturnURI        string `yaml:"return_uri"`
}

// ShopConfig contains shop-local settings used by aggregation and templates
type ShopConfig struct {
	Name          string  `yaml:"name"`
	Email         string  `yaml:"email"`
	Timezone      string  `yaml:"timezone"`
	WeekStart     string  `yaml:"week_start"`
	DailyTarget   float64 `yaml:"daily_target"`
	WeeklyTarget  float64 `yaml:"weekly_target"`
	MonthlyTarget float64 `yaml:"monthly_target"`
}

// NotificationConfig describes the ordered delivery chain
type NotificationConfig struct {
	Channels          []string       `yaml:"channels"` // order matters
	TimeoutSeconds    int            `yaml:"timeout_seconds"`
	From              string         `yaml:"from"`
	FromName          string         `yaml:"from_name"`
	InternalAddresses []string       `yaml:"internal_addresses"`
	SendGrid          SendGridConfig `yaml:"sendgrid"`
	SMTP              SMTPConfig     `yaml:"smtp"`
	AMQP              AMQPConfig     `yaml:"amqp"`
	Twilio            TwilioConfig   `yaml:"twilio"`
	Push              PushConfig     `yaml:"push"`
}

type SendGridConfig struct {
	APIKey string `yaml:"api_key"`
}

// SMTPConfig points at the local mail relay
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type AMQPConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
}

type PushConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	Topic           string `yaml:"topic"`
}

// RedisConfig enables the webhook delivery cache
type RedisConfig struct {
	Enabled            bool   `yaml:"enabled"`
	Addr               string `yaml:"addr"`
	Password           string `yaml:"password"`
	DB                 int    `yaml:"db"`
	DeliveryTTLSeconds int    `yaml:"delivery_ttl_seconds"`
}

// SchedulerConfig contains cron schedule settings (6 fields, seconds first)
type SchedulerConfig struct {
	RollForwardPayments    string `yaml:"roll_forward_payments"`
	AppointmentReminders   string `yaml:"appointment_reminders"`
	UnmatchedPaymentDigest string `yaml:"unmatched_payment_digest"`
	RollForwardBatchSize   int    `yaml:"roll_forward_batch_size"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes, applies env overrides and validates.
func Parse(data []byte) (*Config, error) {
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

func (c *Config) overrideWithEnv() {
	setString := func(dst *string, key string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}
	setInt := func(dst *int, key string) {
		if val := os.Getenv(key); val != "" {
			if n, err := strconv.Atoi(val); err == nil {
				*dst = n
			}
		}
	}

	// Database
	setString(&c.Database.Host, "DB_HOST")
	setInt(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Database, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSL_MODE")

	// Server
	setString(&c.Server.Host, "SERVER_HOST")
	setInt(&c.Server.Port, "SERVER_PORT")
	setInt(&c.Server.GRPCPort, "GRPC_PORT")

	// Secrets
	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.Payment.WebhookSecret, "PAYMENT_WEBHOOK_SECRET")
	setString(&c.Payment.OmisePublicKey, "OMISE_PUBLIC_KEY")
	setString(&c.Payment.OmiseSecretKey, "OMISE_SECRET_KEY")
	setString(&c.Notification.SendGrid.APIKey, "SENDGRID_API_KEY")
	setString(&c.Notification.SMTP.Host, "SMTP_HOST")
	setInt(&c.Notification.SMTP.Port, "SMTP_PORT")
	setString(&c.Notification.SMTP.User, "SMTP_USER")
	setString(&c.Notification.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.Notification.AMQP.URL, "AMQP_URL")
	setString(&c.Notification.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	setString(&c.Notification.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	setString(&c.Notification.Twilio.From, "TWILIO_PHONE_NUMBER")
	setString(&c.Notification.Push.CredentialsFile, "FIREBASE_CREDENTIALS_FILE")

	// Redis
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")

	// Log
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks required settings and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 15
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Payment
	if c.Payment.WebhookSecret == "" {
		return fmt.Errorf("payment webhook secret is required")
	}
	if c.Payment.ToleranceSeconds <= 0 {
		c.Payment.ToleranceSeconds = 300
	}
	if c.Payment.DefaultCurrency == "" {
		c.Payment.DefaultCurrency = "thb"
	}
	c.Payment.DefaultCurrency = strings.ToLower(c.Payment.DefaultCurrency)
	if c.Payment.InvoicePrefix == "" {
		c.Payment.InvoicePrefix = "INV"
	}
	if c.Payment.SourceType == "" {
		c.Payment.SourceType = "mobile_banking_kbank"
	}

	// Shop
	if c.Shop.Timezone == "" {
		c.Shop.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Shop.Timezone); err != nil {
		return fmt.Errorf("invalid shop timezone %q: %w", c.Shop.Timezone, err)
	}
	if c.Shop.WeekStart == "" {
		c.Shop.WeekStart = "sunday"
	}
	if _, err := parseWeekday(c.Shop.WeekStart); err != nil {
		return err
	}
	if c.Shop.DailyTarget == 0 {
		c.Shop.DailyTarget = 500
	}
	if c.Shop.WeeklyTarget == 0 {
		c.Shop.WeeklyTarget = 3000
	}
	if c.Shop.MonthlyTarget == 0 {
		c.Shop.MonthlyTarget = 10000
	}

	// Notification
	if len(c.Notification.Channels) == 0 {
		c.Notification.Channels = []string{"sendgrid", "smtp"}
	}
	for _, ch := range c.Notification.Channels {
		switch ch {
		case "sendgrid", "smtp", "amqp", "sms", "push":
		default:
			return fmt.Errorf("unknown notification channel: %s", ch)
		}
	}
	if c.Notification.TimeoutSeconds <= 0 {
		c.Notification.TimeoutSeconds = 10
	}
	if c.Notification.From == "" {
		c.Notification.From = c.Shop.Email
	}
	if c.Notification.FromName == "" {
		c.Notification.FromName = c.Shop.Name
	}
	if c.Notification.SMTP.Port == 0 {
		c.Notification.SMTP.Port = 25
	}
	if c.Notification.AMQP.Queue == "" {
		c.Notification.AMQP.Queue = "notifications.outbound"
	}
	if c.Notification.Push.Topic == "" {
		c.Notification.Push.Topic = "staff"
	}

	// Redis
	if c.Redis.Enabled && c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.DeliveryTTLSeconds <= 0 {
		c.Redis.DeliveryTTLSeconds = c.Payment.ToleranceSeconds * 2
	}

	// Scheduler defaults
	if c.Scheduler.RollForwardPayments == "" {
		c.Scheduler.RollForwardPayments = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.AppointmentReminders == "" {
		c.Scheduler.AppointmentReminders = "0 0 9 * * *" // 9 AM shop time
	}
	if c.Scheduler.UnmatchedPaymentDigest == "" {
		c.Scheduler.UnmatchedPaymentDigest = "0 30 8 * * *"
	}
	if c.Scheduler.RollForwardBatchSize <= 0 {
		c.Scheduler.RollForwardBatchSize = 100
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

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the health service listen address, or "" when disabled
func (c *Config) GetGRPCAddress() string {
	if c.Server.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// Location returns the shop-local time zone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Shop.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WeekStart returns the configured first day of the week.
func (c *Config) WeekStart() time.Weekday {
	d, err := parseWeekday(c.Shop.WeekStart)
	if err != nil {
		return time.Sunday
	}
	return d
}

func (c *Config) WebhookTolerance() time.Duration {
	return time.Duration(c.Payment.ToleranceSeconds) * time.Second
}

func (c *Config) ChannelTimeout() time.Duration {
	return time.Duration(c.Notification.TimeoutSeconds) * time.Second
}

func (c *Config) DeliveryTTL() time.Duration {
	return time.Duration(c.Redis.DeliveryTTLSeconds) * time.Second
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid week start: %q", s)
}
