package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Listing  ListingConfig  `yaml:"listing"`
	Email    EmailConfig    `yaml:"email"`
	Seed     bool           `yaml:"seed"`
}

type ServerConfig struct {
	Port           string `yaml:"port"`
	AllowedOrigins string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// StorageConfig selects where uploaded images go. When Bucket is empty the
// files are written under LocalDir instead of R2/S3.
type StorageConfig struct {
	AccountID     string `yaml:"account_id"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Bucket        string `yaml:"bucket"`
	PublicBaseURL string `yaml:"public_base_url"`
	LocalDir      string `yaml:"local_dir"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type ListingConfig struct {
	PageSize      int    `yaml:"page_size"`
	AgentPageSize int    `yaml:"agent_page_size"`
	RefreshCron   string `yaml:"refresh_cron"`
}

// EmailConfig enables enquiry notifications through Resend. An empty APIKey
// turns them off.
type EmailConfig struct {
	APIKey     string `yaml:"api_key"`
	From       string `yaml:"from"`
	DigestCron string `yaml:"digest_cron"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "3000",
			AllowedOrigins: "*",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			DBName:  "realty",
			SSLMode: "disable",

			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		JWT: JWTConfig{
			Secret: "change-me",
			TTL:    24 * time.Hour,
		},
		Storage: StorageConfig{
			LocalDir: "./tmp/uploads",
		},
		Redis: RedisConfig{
			TTL: 10 * time.Minute,
		},
		Listing: ListingConfig{
			PageSize:      6,
			AgentPageSize: 4,
			RefreshCron:   "*/5 * * * *",
		},
		Email: EmailConfig{
			From:       "Realty <noreply@realty.example>",
			DigestCron: "0 20 * * 0",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_PATH, a .env file and finally the process environment. Later
// sources win.
func Load() (*Config, error) {
	godotenv.Load() // .env is optional

	cfg := Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if cfg.Listing.PageSize <= 0 || cfg.Listing.AgentPageSize <= 0 {
		return nil, fmt.Errorf("page sizes must be positive, got %d and %d",
			cfg.Listing.PageSize, cfg.Listing.AgentPageSize)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.AllowedOrigins = getEnv("ALLOWED_ORIGINS", c.Server.AllowedOrigins)

	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime)

	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.TTL = getEnvDuration("JWT_TTL", c.JWT.TTL)

	c.Storage.AccountID = getEnv("R2_ACCOUNT_ID", c.Storage.AccountID)
	c.Storage.AccessKey = getEnv("R2_ACCESS_KEY", c.Storage.AccessKey)
	c.Storage.SecretKey = getEnv("R2_SECRET_KEY", c.Storage.SecretKey)
	c.Storage.Bucket = getEnv("R2_BUCKET_NAME", c.Storage.Bucket)
	c.Storage.PublicBaseURL = getEnv("CDN_BASE_URL", c.Storage.PublicBaseURL)
	c.Storage.LocalDir = getEnv("UPLOAD_DIR", c.Storage.LocalDir)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.TTL = getEnvDuration("REDIS_TTL", c.Redis.TTL)

	c.Listing.PageSize = getEnvInt("LISTING_PAGE_SIZE", c.Listing.PageSize)
	c.Listing.AgentPageSize = getEnvInt("AGENT_PAGE_SIZE", c.Listing.AgentPageSize)
	c.Listing.RefreshCron = getEnv("CATALOG_REFRESH_CRON", c.Listing.RefreshCron)

	c.Email.APIKey = getEnv("RESEND_API_KEY", c.Email.APIKey)
	c.Email.From = getEnv("EMAIL_FROM", c.Email.From)
	c.Email.DigestCron = getEnv("ENQUIRY_DIGEST_CRON", c.Email.DigestCron)

	if v := os.Getenv("SEED"); v != "" {
		c.Seed, _ = strconv.ParseBool(v)
	}
}

// DSN returns DATABASE_URL when set, otherwise a key/value postgres DSN.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Origins splits the comma separated origin list.
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
