package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host         string `yaml:"host"`
		Port         int    `yaml:"port"`
		Env          string `yaml:"env"`
		ReadTimeout  int    `yaml:"read_timeout"`  // секунды
		WriteTimeout int    `yaml:"write_timeout"` // секунды
		FrontendURL  string `yaml:"frontend_url"`
	} `yaml:"server"`

	Database struct {
		Driver       string `yaml:"driver"` // postgres | mysql
		DSN          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	JWT struct {
		Secret        string `yaml:"secret"`
		TTL           int    `yaml:"ttl"`            // минуты
		RefreshWindow int    `yaml:"refresh_window"` // минуты после истечения, когда refresh еще разрешен
	} `yaml:"jwt"`

	Log LogConfig `yaml:"log"`

	Analytics AnalyticsConfig `yaml:"analytics"`

	Email EmailConfig `yaml:"email"`

	Admin struct {
		Email    string `yaml:"email"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
}

// LogConfig описывает файловый вывод операционного лога.
type LogConfig struct {
	Level      string `yaml:"level"` // debug | info | warn | error
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// EmailConfig - SMTP для писем модераторам. Пустой smtp_host выключает рассылку.
type EmailConfig struct {
	SMTPHost     string   `yaml:"smtp_host"`
	SMTPPort     int      `yaml:"smtp_port"`
	SMTPUser     string   `yaml:"smtp_user"`
	SMTPPassword string   `yaml:"smtp_password"`
	FromEmail    string   `yaml:"from_email"`
	FromName     string   `yaml:"from_name"`
	Moderators   []string `yaml:"moderators"`
	AdminURL     string   `yaml:"admin_url"`
}

type AnalyticsConfig struct {
	LogDir                 string `yaml:"log_dir"`
	Timezone               string `yaml:"timezone"`
	LogRetentionDays       int    `yaml:"log_retention_days"`
	AnalyticsRetentionDays int    `yaml:"analytics_retention_days"`
	SessionCookie          string `yaml:"session_cookie"`
	BatchSize              int    `yaml:"batch_size"`
	TopN                   int    `yaml:"top_n"`
}

// Location возвращает таймзону, в которой режутся суточные файлы и работает cron.
func (a AnalyticsConfig) Location() (*time.Location, error) {
	return time.LoadLocation(a.Timezone)
}

var AppConfig *Config

// LoadConfig загружает конфиг в AppConfig и падает, если он невалиден.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Load читает .env (если есть), yaml-файл и переменные окружения.
// Если yaml-файла нет, конфиг собирается только из окружения.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg := &Config{}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	f, err := os.Open(configPath)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("Config file %s not found, using environment only", configPath)
	default:
		return nil, fmt.Errorf("open config file %s: %w", configPath, err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Env = getEnv("APP_ENV", cfg.Server.Env)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.FrontendURL = getEnv("FRONTEND_URL", cfg.Server.FrontendURL)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("DB_DSN", getEnv("DATABASE_URL", cfg.Database.DSN))

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)

	cfg.Analytics.Timezone = getEnv("ANALYTICS_TIMEZONE", cfg.Analytics.Timezone)
	cfg.Analytics.LogDir = getEnv("ANALYTICS_LOG_DIR", cfg.Analytics.LogDir)

	cfg.Email.SMTPHost = getEnv("SMTP_HOST", cfg.Email.SMTPHost)
	cfg.Email.SMTPPort = getEnvInt("SMTP_PORT", cfg.Email.SMTPPort)
	cfg.Email.SMTPUser = getEnv("SMTP_USER", cfg.Email.SMTPUser)
	cfg.Email.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.Email.SMTPPassword)
	if v := getEnv("MODERATOR_EMAILS", ""); v != "" {
		cfg.Email.Moderators = splitList(v)
	}

	cfg.Admin.Email = getEnv("ADMIN_EMAIL", cfg.Admin.Email)
	cfg.Admin.Password = getEnv("ADMIN_PASSWORD", cfg.Admin.Password)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.FrontendURL == "" {
		cfg.Server.FrontendURL = "http://localhost:5173"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60 * 24 * 7
	}
	if cfg.JWT.RefreshWindow == 0 {
		cfg.JWT.RefreshWindow = 60 * 24
	}

	a := &cfg.Analytics
	if a.LogDir == "" {
		a.LogDir = "logs"
	}
	if a.Timezone == "" {
		a.Timezone = "Asia/Shanghai"
	}
	if a.LogRetentionDays == 0 {
		a.LogRetentionDays = 30
	}
	if a.AnalyticsRetentionDays == 0 {
		a.AnalyticsRetentionDays = 90
	}
	if a.SessionCookie == "" {
		a.SessionCookie = "session_id"
	}
	if a.BatchSize == 0 {
		a.BatchSize = 1000
	}
	if a.TopN == 0 {
		a.TopN = 10
	}

	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.FromEmail == "" {
		cfg.Email.FromEmail = "noreply@miaoyou.local"
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = "miaoyou"
	}

	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 7
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 30
	}
}

// Validate проверяет обязательные поля.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "mysql" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	if _, err := c.Analytics.Location(); err != nil {
		return fmt.Errorf("invalid analytics timezone %q: %w", c.Analytics.Timezone, err)
	}
	if c.Analytics.LogRetentionDays < 0 || c.Analytics.AnalyticsRetentionDays < 0 {
		return errors.New("retention days must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
