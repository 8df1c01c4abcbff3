package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type AuthConfig struct {
	AccessSecret string
}

type LogConfig struct {
	Level  string
	Format string
}

type InvoicesConfig struct {
	DefaultVATRate float64
	DefaultUnit    string
	NumberRetries  int
	// Issuer is the sender line printed on invoice PDFs.
	Issuer string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Log         LogConfig
	Invoices    InvoicesConfig
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("INVOICE_DEFAULT_VAT_RATE", 8.1)
	v.SetDefault("INVOICE_DEFAULT_UNIT", "Stk")
	v.SetDefault("INVOICE_NUMBER_RETRIES", 3)
	v.SetDefault("LOG_LEVEL", "info")

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Invoices: InvoicesConfig{
			DefaultVATRate: v.GetFloat64("INVOICE_DEFAULT_VAT_RATE"),
			DefaultUnit:    v.GetString("INVOICE_DEFAULT_UNIT"),
			NumberRetries:  v.GetInt("INVOICE_NUMBER_RETRIES"),
			Issuer:         strings.TrimSpace(v.GetString("INVOICE_ISSUER")),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
		if cfg.IsDevelopment() {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Invoices.NumberRetries < 1 {
		cfg.Invoices.NumberRetries = 1
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Invoices.DefaultVATRate < 0 || cfg.Invoices.DefaultVATRate > 100 {
		return fmt.Errorf("INVOICE_DEFAULT_VAT_RATE must be between 0 and 100")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
