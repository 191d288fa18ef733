package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/veonhoon/bible-reader-sub000/internal/domain"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
	yaml "go.yaml.in/yaml/v3"
)

type Config struct {
	DatabasePath string `yaml:"database_path"`
	Port         string `yaml:"port"`
	LogLevel     string `yaml:"log_level"`
	Environment  string `yaml:"environment"`
	Timezone     string `yaml:"timezone"`

	NotifierDriver     string `yaml:"notifier_driver"`
	SlackBotToken      string `yaml:"slack_bot_token"`
	SlackSigningSecret string `yaml:"slack_signing_secret"`
	SlackChannelID     string `yaml:"slack_channel_id"`
	SlackRatePerMin    int    `yaml:"slack_rate_per_min"`

	DocstoreDriver       string        `yaml:"docstore_driver"`
	DocstoreURL          string        `yaml:"docstore_url"`
	DocstorePollInterval time.Duration `yaml:"docstore_poll_interval"`
	ScheduleCollection   string        `yaml:"schedule_collection"`
	ScheduleDocumentID   string        `yaml:"schedule_document_id"`
	ContentCollection    string        `yaml:"content_collection"`

	CronSpecRefresh string `yaml:"cron_spec_refresh"`
	EntitlementMode string `yaml:"entitlement_mode"`
	QuietHoursStart string `yaml:"quiet_hours_start"`
	QuietHoursEnd   string `yaml:"quiet_hours_end"`
	HorizonWeeks    int    `yaml:"horizon_weeks"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`
}

func defaults() *Config {
	return &Config{
		DatabasePath:         "./devotional.db",
		Port:                 "3000",
		LogLevel:             "info",
		Environment:          "development",
		Timezone:             "Local",
		NotifierDriver:       "local",
		SlackRatePerMin:      50,
		DocstoreDriver:       "sqlite",
		DocstorePollInterval: 30 * time.Second,
		ScheduleCollection:   domain.DefaultScheduleCollection,
		ScheduleDocumentID:   domain.DefaultScheduleDocumentID,
		ContentCollection:    domain.DefaultContentCollection,
		CronSpecRefresh:      "0 */6 * * *",
		EntitlementMode:      domain.EntitlementModeStore,
		QuietHoursStart:      domain.DefaultQuietHoursStart,
		QuietHoursEnd:        domain.DefaultQuietHoursEnd,
		HorizonWeeks:         domain.PlanningHorizonWeeks,
		OpenAIBaseURL:        "https://api.openai.com/v1",
		OpenAIModel:          "gpt-4o-mini",
	}
}

// Load reads configuration from defaults, an optional YAML file named by
// CONFIG_FILE and the environment (including a .env file), in that order.
func Load() (*Config, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
	c.Environment = strings.ToLower(getEnv("ENVIRONMENT", c.Environment))
	c.Timezone = getEnv("TIMEZONE", c.Timezone)

	c.NotifierDriver = strings.ToLower(getEnv("NOTIFIER_DRIVER", c.NotifierDriver))
	c.SlackBotToken = getEnv("SLACK_BOT_TOKEN", c.SlackBotToken)
	c.SlackSigningSecret = getEnv("SLACK_SIGNING_SECRET", c.SlackSigningSecret)
	c.SlackChannelID = getEnv("SLACK_CHANNEL_ID", c.SlackChannelID)

	c.DocstoreDriver = strings.ToLower(getEnv("DOCSTORE_DRIVER", c.DocstoreDriver))
	c.DocstoreURL = getEnv("DOCSTORE_URL", c.DocstoreURL)
	c.ScheduleCollection = getEnv("SCHEDULE_COLLECTION", c.ScheduleCollection)
	c.ScheduleDocumentID = getEnv("SCHEDULE_DOCUMENT_ID", c.ScheduleDocumentID)
	c.ContentCollection = getEnv("CONTENT_COLLECTION", c.ContentCollection)

	c.CronSpecRefresh = getEnv("CRON_SPEC_REFRESH", c.CronSpecRefresh)
	c.EntitlementMode = strings.ToLower(getEnv("ENTITLEMENT_MODE", c.EntitlementMode))
	c.QuietHoursStart = getEnv("QUIET_HOURS_START", c.QuietHoursStart)
	c.QuietHoursEnd = getEnv("QUIET_HOURS_END", c.QuietHoursEnd)

	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)

	var err error
	if c.SlackRatePerMin, err = getEnvInt("SLACK_RATE_PER_MIN", c.SlackRatePerMin); err != nil {
		return err
	}
	if c.HorizonWeeks, err = getEnvInt("HORIZON_WEEKS", c.HorizonWeeks); err != nil {
		return err
	}

	if value := os.Getenv("DOCSTORE_POLL_INTERVAL"); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid DOCSTORE_POLL_INTERVAL: %w", err)
		}
		c.DocstorePollInterval = d
	}

	return nil
}

// Validate checks the combinations the service cannot start without
func (c *Config) Validate() error {
	switch c.NotifierDriver {
	case "local":
	case "slack":
		if c.SlackBotToken == "" {
			return fmt.Errorf("SLACK_BOT_TOKEN is required for the slack notifier")
		}
		if c.SlackChannelID == "" {
			return fmt.Errorf("SLACK_CHANNEL_ID is required for the slack notifier")
		}
	default:
		return fmt.Errorf("unknown notifier driver: %s", c.NotifierDriver)
	}

	switch c.DocstoreDriver {
	case "sqlite":
	case "postgres":
		if c.DocstoreURL == "" {
			return fmt.Errorf("DOCSTORE_URL is required for the postgres document store")
		}
	default:
		return fmt.Errorf("unknown document store driver: %s", c.DocstoreDriver)
	}

	switch c.EntitlementMode {
	case domain.EntitlementModeStore, domain.EntitlementModeAlways:
	default:
		return fmt.Errorf("unknown entitlement mode: %s", c.EntitlementMode)
	}

	if c.HorizonWeeks < 1 {
		return fmt.Errorf("HORIZON_WEEKS must be at least 1")
	}

	if _, err := c.QuietHours(); err != nil {
		return err
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// QuietHours parses the configured quiet hours window
func (c *Config) QuietHours() (entity.QuietHours, error) {
	start, err := entity.ParseLocalTime(c.QuietHoursStart)
	if err != nil {
		return entity.QuietHours{}, fmt.Errorf("invalid QUIET_HOURS_START: %w", err)
	}
	end, err := entity.ParseLocalTime(c.QuietHoursEnd)
	if err != nil {
		return entity.QuietHours{}, fmt.Errorf("invalid QUIET_HOURS_END: %w", err)
	}
	return entity.QuietHours{Start: start, End: end}, nil
}

// Location returns the device clock location
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
