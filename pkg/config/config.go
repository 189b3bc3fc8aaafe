package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/smith3v/tg-smile-reminder/pkg/logger"
	yaml "go.yaml.in/yaml/v3"
)

// EnvPrefix scopes environment overrides, e.g. SMILE_TELEGRAM_TOKEN.
const EnvPrefix = "SMILE"

type Config struct {
	Database  DatabaseConfig  `json:"database"`
	Telegram  TelegramConfig  `json:"telegram"`
	Logging   LoggingConfig   `json:"logging"`
	Reminders RemindersConfig `json:"reminders"`
}

type DatabaseConfig struct {
	Driver   string `json:"driver"` // postgres|sqlite
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Port     int    `json:"port"`
	SSLMode  string `json:"sslmode"`
	Path     string `json:"path"` // sqlite only
}

type TelegramConfig struct {
	Token string `json:"token"`
}

type LoggingConfig struct {
	Level     string `json:"level"`
	File      string `json:"file"`
	GormLevel string `json:"gorm_level" envconfig:"GORM_LEVEL"`
}

type RemindersConfig struct {
	DeliveryIntervalSeconds int    `json:"delivery_interval_seconds" envconfig:"DELIVERY_INTERVAL_SECONDS"`
	SendRatePerSecond       int    `json:"send_rate_per_second" envconfig:"SEND_RATE_PER_SECOND"`
	RefreshSchedule         string `json:"refresh_schedule" envconfig:"REFRESH_SCHEDULE"`
	RetentionDays           int    `json:"retention_days" envconfig:"RETENTION_DAYS"`
	PlaySound               bool   `json:"play_sound" envconfig:"PLAY_SOUND"`
	ProtectContent          bool   `json:"protect_content" envconfig:"PROTECT_CONTENT"`
	ShowLinkPreview         bool   `json:"show_link_preview" envconfig:"SHOW_LINK_PREVIEW"`
}

var AppConfig Config

func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:  "postgres",
			Port:    5432,
			SSLMode: "disable",
			Path:    "data/smile.db",
		},
		Logging: LoggingConfig{
			Level:     "info",
			GormLevel: "warn",
		},
		Reminders: RemindersConfig{
			DeliveryIntervalSeconds: 30,
			SendRatePerSecond:       25,
			RefreshSchedule:         "15 0 * * *",
			RetentionDays:           14,
			PlaySound:               true,
			ProtectContent:          true,
		},
	}
}

// LoadConfig reads a JSON or YAML file (chosen by extension) on top of the
// defaults and then applies SMILE_* environment overrides.
func LoadConfig(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		logger.Error("failed to open config file", "error", err)
		return err
	}

	data, err = toJSON(filename, data)
	if err != nil {
		logger.Error("failed to convert config file", "file", filename, "error", err)
		return err
	}

	cfg := Defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		logger.Error("failed to decode config file", "error", err)
		return err
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		logger.Error("failed to apply environment overrides", "error", err)
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	AppConfig = cfg
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("telegram token is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Reminders.DeliveryIntervalSeconds <= 0 {
		return fmt.Errorf("reminders.delivery_interval_seconds must be positive")
	}
	if c.Reminders.SendRatePerSecond <= 0 {
		return fmt.Errorf("reminders.send_rate_per_second must be positive")
	}
	return nil
}

func toJSON(path string, data []byte) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return data, nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	out, err := json.Marshal(normalizeYAML(v))
	if err != nil {
		return nil, fmt.Errorf("yaml to json: %w", err)
	}
	return out, nil
}

func normalizeYAML(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case map[string]any:
		for k, v := range x {
			x[k] = normalizeYAML(v)
		}
		return x
	case []any:
		for i := range x {
			x[i] = normalizeYAML(x[i])
		}
		return x
	default:
		return in
	}
}
