package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Mail     MailConfig
	WhatsApp WhatsAppConfig
	Raffle   RaffleConfig
	Org      OrgConfig
	Cron     CronConfig
	Notify   NotifyConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret          string
	AccessTokenMins int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// MailConfig holds SMTP settings. Mail is disabled when Host or User is empty.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether SMTP delivery is configured
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.User != ""
}

// WhatsAppConfig holds Twilio settings. Disabled when AccountSID is empty.
type WhatsAppConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

// Enabled reports whether the chat channel is configured
func (w WhatsAppConfig) Enabled() bool {
	return w.AccountSID != ""
}

// RaffleConfig holds raffle defaults
type RaffleConfig struct {
	TicketPrice decimal.Decimal
}

// OrgConfig is printed on receipts and emails
type OrgConfig struct {
	Name string
	City string
	NIT  string
}

// CronConfig holds schedule specs for background jobs
type CronConfig struct {
	DailyReport  string
	OverdueSweep string
}

// NotifyConfig sizes the outbound notification queue
type NotifyConfig struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	price, err := decimal.NewFromString(getEnv("RAFFLE_TICKET_PRICE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RAFFLE_TICKET_PRICE: %w", err)
	}

	db := loadDatabaseConfig(appMode)
	if db.Driver != "mysql" && db.Driver != "postgres" {
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'postgres')", db.Driver)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: db,
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Mail:     loadMailConfig(),
		WhatsApp: WhatsAppConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			From:       getEnv("TWILIO_WHATSAPP_FROM", ""),
		},
		Raffle: RaffleConfig{TicketPrice: price},
		Org: OrgConfig{
			Name: getEnv("ORG_NAME", "Natillera MiAhorro"),
			City: getEnv("ORG_CITY", "Medellín"),
			NIT:  getEnv("ORG_NIT", ""),
		},
		Cron: CronConfig{
			DailyReport:  getEnv("CRON_DAILY_REPORT", "0 9 * * *"),
			OverdueSweep: getEnv("CRON_OVERDUE_SWEEP", "30 0 * * *"),
		},
		Notify: NotifyConfig{
			Workers:     getEnvInt("NOTIFY_WORKERS", 2),
			QueueSize:   getEnvInt("NOTIFY_QUEUE_SIZE", 256),
			TaskTimeout: time.Duration(getEnvInt("NOTIFY_TASK_TIMEOUT_SECONDS", 60)) * time.Second,
		},
	}

	// Set global config
	AppConfig = config

	log.Printf("Configuration loaded [MODE: %s, DB: %s]", appMode, db.Driver)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)
	driver := strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", "mysql")))

	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "natillera_miahorro"),
		SSLMode:  getEnv(prefix+"DB_SSLMODE", "disable"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	return JWTConfig{
		Secret:          getEnv(modePrefix(mode)+"JWT_SECRET", "default_secret"),
		AccessTokenMins: getEnvInt("ACCESS_TOKEN_MINUTES", 480),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadMailConfig() MailConfig {
	user := getEnv("EMAIL_USER", "")
	return MailConfig{
		Host:     getEnv("EMAIL_HOST", "smtp.gmail.com"),
		Port:     getEnvInt("EMAIL_PORT", 587),
		User:     user,
		Password: getEnv("EMAIL_PASS", ""),
		From:     getEnv("EMAIL_FROM", user),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://natillera-miahorro.com"
	}
	return origins
}
