package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	Auth       AuthConfig
	Maya       MayaConfig
	Mail       MailConfig
	Cloudinary CloudinaryConfig
	Sheets     SheetsConfig
	Newsletter NewsletterConfig
	Reporting  ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port  string
	Debug bool
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AuthConfig holds verification settings for session-provider bearer tokens.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// MayaConfig contains credentials and options for the Maya checkout API.
type MayaConfig struct {
	BaseURL     string
	PublicKey   string
	SecretKey   string
	RedirectURL string
}

// MailConfig contains credentials for the ZeptoMail HTTP API.
type MailConfig struct {
	APIURL      string
	APIKey      string
	FromAddress string
	FromName    string
}

// CloudinaryConfig contains credentials for image uploads.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// SheetsConfig contains configuration for the donation report export sheet.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// NewsletterConfig holds the digest scheduling settings.
type NewsletterConfig struct {
	CronSchedule string
}

// ReportingConfig holds the monthly report export schedule.
type ReportingConfig struct {
	ExportCronSchedule string
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

	debug, _ := strconv.ParseBool(getenvWithDefault("APP_DEBUG", "false"))

	cfg := &Config{
		Server: ServerConfig{
			Port:  getenvWithDefault("APP_PORT", "8080"),
			Debug: debug,
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "alumnilink"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
			Issuer:    getenvWithDefault("AUTH_ISSUER", "alumnilink"),
		},
		Maya: MayaConfig{
			BaseURL:     getenvWithDefault("MAYA_BASE_URL", "https://pg-sandbox.paymaya.com"),
			PublicKey:   os.Getenv("MAYA_PUBLIC_KEY"),
			SecretKey:   os.Getenv("MAYA_SECRET_KEY"),
			RedirectURL: getenvWithDefault("MAYA_REDIRECT_URL", "https://alumnilink.ph/donations/thank-you"),
		},
		Mail: MailConfig{
			APIURL:      getenvWithDefault("ZEPTO_API_URL", "https://api.zeptomail.com/v1.1/email"),
			APIKey:      os.Getenv("ZEPTO_API_KEY"),
			FromAddress: os.Getenv("EMAIL_FROM"),
			FromName:    getenvWithDefault("EMAIL_FROM_NAME", "AlumniLink"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			Folder:    getenvWithDefault("CLOUDINARY_FOLDER", "alumnilink"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_REPORT_ID"),
		},
		Newsletter: NewsletterConfig{
			CronSchedule: getenvWithDefault("NEWSLETTER_CRON_SCHEDULE", "0 8 * * 1"),
		},
		Reporting: ReportingConfig{
			ExportCronSchedule: getenvWithDefault("REPORT_EXPORT_CRON_SCHEDULE", "0 6 1 * *"),
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

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}

	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET must be provided")
	}

	switch {
	case c.Maya.BaseURL == "":
		return errors.New("MAYA_BASE_URL must not be empty")
	case c.Maya.PublicKey == "":
		return errors.New("MAYA_PUBLIC_KEY must be provided")
	}

	if c.Newsletter.CronSchedule == "" {
		return errors.New("NEWSLETTER_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.ExportCronSchedule == "" {
		return errors.New("REPORT_EXPORT_CRON_SCHEDULE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
