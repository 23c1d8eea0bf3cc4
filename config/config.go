package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBDSN         string `mapstructure:"db_dsn"`
	DBAutoMigrate string `mapstructure:"db_auto_migrate"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	HTTPAddr      string `mapstructure:"http_addr"`
	UploadBase    string `mapstructure:"upload_base"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	PDFLocale      string   `mapstructure:"pdf_locale"`
	PDFFontRegular string   `mapstructure:"pdf_font_regular"`
	PDFFontBold    string   `mapstructure:"pdf_font_bold"`
	CORSOrigins    []string `mapstructure:"cors_origins"`

	SignatureMaxBytes int64         `mapstructure:"signature_max_bytes"`
	DocumentMaxBytes  int64         `mapstructure:"document_max_bytes"`
	TempMaxAge        time.Duration `mapstructure:"temp_max_age"`
}

const devJWTSecret = "dev-insecure-secret-change"

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_dsn", "")
	v.SetDefault("db_auto_migrate", "true")
	v.SetDefault("jwt_secret", devJWTSecret)
	v.SetDefault("http_addr", ":8081")
	v.SetDefault("upload_base", "uploads")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("pdf_locale", "id_ID")
	v.SetDefault("pdf_font_regular", "")
	v.SetDefault("pdf_font_bold", "")
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("signature_max_bytes", 2*1024*1024)
	v.SetDefault("document_max_bytes", 10*1024*1024)
	v.SetDefault("temp_max_age", "1h")
}

// Load reads ./.env (if present) into the environment without overriding
// variables that are already set, then resolves every key from the
// environment with defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	abs, err := filepath.Abs(cfg.UploadBase)
	if err != nil {
		return nil, fmt.Errorf("resolve UPLOAD_BASE: %w", err)
	}
	cfg.UploadBase = abs
	return &cfg, nil
}

// AutoMigrate is true unless DB_AUTO_MIGRATE is false, 0 or no.
func (c *Config) AutoMigrate() bool {
	switch strings.ToLower(strings.TrimSpace(c.DBAutoMigrate)) {
	case "false", "0", "no":
		return false
	}
	return true
}

// InsecureSecret reports whether the development JWT secret is in use.
func (c *Config) InsecureSecret() bool {
	return c.JWTSecret == "" || c.JWTSecret == devJWTSecret
}
