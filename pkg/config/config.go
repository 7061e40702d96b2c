package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Mailjet  MailjetConfig
	Redis    RedisConfig
	Slack    SlackConfig
	CRM      []CRMEndpoint
	Tracking TrackingConfig
	Session  SessionConfig
	Lead     LeadConfig
}

type MailjetConfig struct {
	MailjetBaseUrl           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

type AppConfig struct {
	Name           string
	Version        string
	Environment    string
	LandingPath    string
	AllowedOrigins []string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	KeyTTL        time.Duration
}

// Enabled reports whether redis should back the key/value store.
func (r RedisConfig) Enabled() bool {
	return r.RedisHost != ""
}

type SlackConfig struct {
	WebhookURL string
}

// CRMEndpoint is one generic CRM ingestion target.
type CRMEndpoint struct {
	Name    string
	BaseURL string
	APIKey  string
}

type TrackingConfig struct {
	QueueSize   int
	SendTimeout time.Duration
}

type SessionConfig struct {
	TTL         time.Duration
	MaxSessions int
}

type LeadConfig struct {
	EmailEncryptionKey string
	HighValueThreshold int
	SendConfirmation   bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	crm, err := parseCRMEndpoints(getEnv("CRM_ENDPOINTS", ""), getEnv("CRM_API_KEY", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "AI Insider Landing API"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			Environment:    getEnv("APP_ENV", "development"),
			LandingPath:    getEnv("LANDING_CONFIG", "configs/landing.yaml"),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "ai_insider"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Mailjet: MailjetConfig{
			MailjetBaseUrl:           getEnv("MAILJET_BASE_URL", ""),
			MailjetBasicAuthUsername: getEnv("MAILJET_BASIC_AUTH_USERNAME", ""),
			MailjetBasicAuthPassword: getEnv("MAILJET_BASIC_AUTH_PASSWORD", ""),
			MailjetSenderEmail:       getEnv("MAILJET_SENDER_EMAIL", ""),
			MailjetSenderName:        getEnv("MAILJET_SENDER_NAME", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", ""),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			KeyTTL:        getDuration("REDIS_KEY_TTL", 365*24*time.Hour),
		},
		Slack: SlackConfig{
			WebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		},
		CRM: crm,
		Tracking: TrackingConfig{
			QueueSize:   getInt("TRACKING_QUEUE_SIZE", 1024),
			SendTimeout: getDuration("TRACKING_SEND_TIMEOUT", 5*time.Second),
		},
		Session: SessionConfig{
			TTL:         getDuration("SESSION_TTL", 30*time.Minute),
			MaxSessions: getInt("SESSION_MAX", 50000),
		},
		Lead: LeadConfig{
			EmailEncryptionKey: getEnv("LEAD_EMAIL_ENCRYPTION_KEY", ""),
			HighValueThreshold: getInt("LEAD_HIGH_VALUE_THRESHOLD", 80),
			SendConfirmation:   getEnv("LEAD_SEND_CONFIRMATION", "false") == "true",
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	switch len(cfg.Lead.EmailEncryptionKey) {
	case 16, 24, 32:
	default:
		return nil, errors.New("lead email encryption key must be 16, 24 or 32 bytes")
	}

	return cfg, nil
}

// parseCRMEndpoints reads "name=url,name=url".
func parseCRMEndpoints(raw, apiKey string) ([]CRMEndpoint, error) {
	var out []CRMEndpoint
	for _, item := range splitList(raw) {
		name, url, ok := strings.Cut(item, "=")
		if !ok || name == "" || url == "" {
			return nil, errors.New("invalid CRM_ENDPOINTS entry " + strconv.Quote(item))
		}
		out = append(out, CRMEndpoint{Name: name, BaseURL: url, APIKey: apiKey})
	}
	return out, nil
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

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}
