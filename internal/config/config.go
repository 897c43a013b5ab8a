package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"marafon/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App      AppConfig                 `yaml:"app"`
	Telegram TelegramConfig            `yaml:"telegram"`
	Database DatabaseConfig            `yaml:"database"`
	Redis    RedisConfig               `yaml:"redis"`
	Backup   BackupConfig              `yaml:"backup"`
	Logging  LoggingConfig             `yaml:"logging"`
	API      APIConfig                 `yaml:"api"`
	Admins   []int64                   `yaml:"admins"`
	Funnel   FunnelConfig              `yaml:"funnel"`
	Courses  map[string]CourseOverride `yaml:"courses"`
	Google   GoogleConfig              `yaml:"google"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	Timezone    string `yaml:"timezone"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type DatabaseConfig struct {
	Driver         string `yaml:"driver"`
	Path           string `yaml:"path"`
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"max_connections"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// FunnelConfig holds the deployment-specific values of the sales funnel.
type FunnelConfig struct {
	MandatoryChannel    string `yaml:"mandatory_channel"`
	PaymentCard         string `yaml:"payment_card"`
	CardOwner           string `yaml:"card_owner"`
	RateLimitMessages   int    `yaml:"rate_limit_messages"`
	RateLimitWindow     int    `yaml:"rate_limit_window"`
	BroadcastIntervalMs int    `yaml:"broadcast_interval_ms"`
	StateTTLHours       int    `yaml:"state_ttl_hours"`
}

// CourseOverride replaces the channel of a built-in course tier.
type CourseOverride struct {
	ChannelID string `yaml:"channel_id"`
}

type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	PaymentsSheet   string `yaml:"payments_sheet"`
	UsersSheet      string `yaml:"users_sheet"`
}

// Enabled reports whether the Sheets mirror is configured.
func (g GoogleConfig) Enabled() bool {
	return g.CredentialsFile != "" && g.SpreadsheetID != ""
}

// Load reads the optional .env file and YAML config, then applies
// environment overrides and defaults. A missing config file is not an error:
// the bot can be configured through the environment alone.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var config Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		expandedData := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expandedData, &config); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		if strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://") {
			c.Database.Driver = DriverPostgres
			c.Database.DSN = v
		} else {
			c.Database.Driver = DriverSQLite
			c.Database.Path = strings.TrimPrefix(v, "sqlite://")
		}
	}
	if v := os.Getenv("ADMIN_IDS"); v != "" {
		ids, err := ParseAdminIDs(v)
		if err != nil {
			return err
		}
		c.Admins = ids
	}
	if v := os.Getenv("MANDATORY_CHANNEL"); v != "" {
		c.Funnel.MandatoryChannel = v
	}
	if v := os.Getenv("PAYMENT_CARD"); v != "" {
		c.Funnel.PaymentCard = v
	}
	if v := os.Getenv("CARD_OWNER"); v != "" {
		c.Funnel.CardOwner = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Address = v
	}
	return nil
}

// ParseAdminIDs parses a comma separated list of Telegram user ids.
func ParseAdminIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("database dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if len(c.Admins) == 0 {
		return errors.New("at least one admin id is required")
	}

	if c.Funnel.MandatoryChannel == "" {
		return errors.New("mandatory channel is required")
	}

	for key := range c.Courses {
		found := false
		for _, tier := range models.DefaultCourses() {
			if tier.Key == key {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown course %q in courses section", key)
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "marafon"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "Asia/Tashkent"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		c.Database.Path = "marafon.db"
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = 10
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Backup.IntervalHours == 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
	if c.Google.PaymentsSheet == "" {
		c.Google.PaymentsSheet = "Payments"
	}
	if c.Google.UsersSheet == "" {
		c.Google.UsersSheet = "Users"
	}

	// Funnel defaults
	if c.Funnel.PaymentCard == "" {
		c.Funnel.PaymentCard = "8600 1234 5678 9012"
	}
	if c.Funnel.CardOwner == "" {
		c.Funnel.CardOwner = "Ism Familiya"
	}
	if c.Funnel.RateLimitMessages == 0 {
		c.Funnel.RateLimitMessages = models.RateLimitMessages
	}
	if c.Funnel.RateLimitWindow == 0 {
		c.Funnel.RateLimitWindow = models.RateLimitWindow
	}
	if c.Funnel.BroadcastIntervalMs == 0 {
		c.Funnel.BroadcastIntervalMs = int(models.BroadcastInterval.Milliseconds())
	}
	if c.Funnel.StateTTLHours == 0 {
		c.Funnel.StateTTLHours = int(models.DefaultStateTTL.Hours())
	}
}

// CourseTiers returns the built-in tiers with configured channel overrides.
func (c *Config) CourseTiers() []models.CourseTier {
	tiers := models.DefaultCourses()
	for i := range tiers {
		if o, ok := c.Courses[tiers[i].Key]; ok && o.ChannelID != "" {
			tiers[i].ChannelID = o.ChannelID
		}
	}
	return tiers
}
