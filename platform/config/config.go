// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SessionConfig provides settings for the signed session cookie.
type SessionConfig interface {
	GetSessionSecret() string
	GetSessionCookieName() string
	GetSessionTTL() time.Duration
}

// NotionConfig provides default credentials for the Notion datastore.
// Request payloads may override both values per job.
type NotionConfig interface {
	GetNotionAPIKey() string
	GetNotionDatabaseID() string
	GetNotionBaseURL() string
}

// EmailConfig provides settings for SMTP email sending.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetReplyToAddress() string
	GetEmailEnabled() bool
}

// OutreachConfig provides settings for the outreach email runs.
type OutreachConfig interface {
	GetTestMode() bool
	GetTestEmail() string
	GetEmailDelay() time.Duration
	GetFollowUpAfter() time.Duration
	GetMaxEmailsPerRun() int
	GetTemplatesPath() string
}

// ImportConfig provides settings for the lead import pipeline.
type ImportConfig interface {
	GetProgressDir() string
	GetImportRecordDelay() time.Duration
}

// SchedulerConfig provides settings for the asynq follow-up scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetFollowUpSweepInterval() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	SessionSecret         string
	SessionCookieName     string
	SessionTTL            time.Duration
	NotionAPIKey          string
	NotionDatabaseID      string
	NotionBaseURL         string
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	EmailFromName         string
	EmailFromAddress      string
	ReplyToAddress        string
	EmailEnabled          bool
	TestMode              bool
	TestEmail             string
	EmailDelay            time.Duration
	FollowUpAfter         time.Duration
	MaxEmailsPerRun       int
	TemplatesPath         string
	ProgressDir           string
	ImportRecordDelay     time.Duration
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	FollowUpSweepInterval time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SessionConfig implementation
func (c *Config) GetSessionSecret() string      { return c.SessionSecret }
func (c *Config) GetSessionCookieName() string  { return c.SessionCookieName }
func (c *Config) GetSessionTTL() time.Duration  { return c.SessionTTL }

// NotionConfig implementation
func (c *Config) GetNotionAPIKey() string     { return c.NotionAPIKey }
func (c *Config) GetNotionDatabaseID() string { return c.NotionDatabaseID }
func (c *Config) GetNotionBaseURL() string    { return c.NotionBaseURL }

// EmailConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetReplyToAddress() string   { return c.ReplyToAddress }
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }

// OutreachConfig implementation
func (c *Config) GetTestMode() bool                { return c.TestMode }
func (c *Config) GetTestEmail() string             { return c.TestEmail }
func (c *Config) GetEmailDelay() time.Duration     { return c.EmailDelay }
func (c *Config) GetFollowUpAfter() time.Duration  { return c.FollowUpAfter }
func (c *Config) GetMaxEmailsPerRun() int          { return c.MaxEmailsPerRun }
func (c *Config) GetTemplatesPath() string         { return c.TemplatesPath }

// ImportConfig implementation
func (c *Config) GetProgressDir() string               { return c.ProgressDir }
func (c *Config) GetImportRecordDelay() time.Duration  { return c.ImportRecordDelay }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool                { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string                { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int                 { return c.AsynqConcurrency }
func (c *Config) GetFollowUpSweepInterval() time.Duration  { return c.FollowUpSweepInterval }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "smtp.zoho.com")
	smtpUsername := getEnv("SMTP_USERNAME", getEnv("SENDER_EMAIL", ""))
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		SessionSecret:         getEnv("SESSION_SECRET", ""),
		SessionCookieName:     getEnv("SESSION_COOKIE_NAME", "outreach_session"),
		SessionTTL:            mustDuration(getEnv("SESSION_TTL", "720h")),
		NotionAPIKey:          getEnv("NOTION_API_KEY", ""),
		NotionDatabaseID:      getEnv("NOTION_DATABASE_ID", ""),
		NotionBaseURL:         getEnv("NOTION_BASE_URL", "https://api.notion.com"),
		SMTPHost:              smtpHost,
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:          smtpUsername,
		SMTPPassword:          getEnv("SMTP_APP_PASSWORD", ""),
		EmailFromName:         getEnv("EMAIL_FROM_NAME", "Outreach"),
		EmailFromAddress:      getEnv("EMAIL_FROM_ADDRESS", smtpUsername),
		ReplyToAddress:        getEnv("REPLY_TO_EMAIL", ""),
		EmailEnabled:          emailEnabled && smtpUsername != "",
		TestMode:              strings.EqualFold(getEnv("TEST_MODE", "true"), "true"),
		TestEmail:             getEnv("TEST_EMAIL", smtpUsername),
		EmailDelay:            mustDuration(getEnv("DELAY_BETWEEN_EMAILS", "60s")),
		FollowUpAfter:         mustDuration(getEnv("FOLLOWUP_AFTER", "72h")),
		MaxEmailsPerRun:       mustInt(getEnv("MAX_EMAILS_PER_DAY", "30")),
		TemplatesPath:         getEnv("OUTREACH_TEMPLATES_PATH", "templates.yaml"),
		ProgressDir:           getEnv("IMPORT_PROGRESS_DIR", "progress"),
		ImportRecordDelay:     mustDuration(getEnv("IMPORT_RECORD_DELAY", "100ms")),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "outreach"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		FollowUpSweepInterval: mustDuration(getEnv("FOLLOWUP_SWEEP_INTERVAL", "24h")),
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.EmailEnabled && cfg.SMTPPassword == "" {
		return nil, fmt.Errorf("SMTP_APP_PASSWORD is required when email is enabled")
	}
	if cfg.TestMode && cfg.TestEmail == "" {
		return nil, fmt.Errorf("TEST_EMAIL is required when TEST_MODE is true")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
