package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/spf13/viper"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`

	// DatabaseURL comes from the DATABASE_URL environment variable. When set,
	// it replaces the postgres section.
	DatabaseURL string `mapstructure:"database_url"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	BaseURL            string        `mapstructure:"base_url"`
	Port               string        `mapstructure:"port"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	SecureCookies      bool          `mapstructure:"secure_cookies"`
	LoginRatePerMinute int           `mapstructure:"login_rate_per_minute"`
	LoginBurst         int           `mapstructure:"login_burst"`
	LogLevel           string        `mapstructure:"log_level"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *APIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Environment, validation.Required, validation.In("development", "test", "production")),
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.JWTSigningKey, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.SessionTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.LoginRatePerMinute, validation.Required, validation.Min(1)),
		validation.Field(&c.LoginBurst, validation.Required, validation.Min(1)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

func (c *GinConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In("debug", "release", "test")),
	)
}

func (c *PostgresConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.User, validation.Required),
		validation.Field(&c.DB, validation.Required),
	)
}

func (c *AppConfig) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.API, validation.Required),
		validation.Field(&c.Gin, validation.Required),
	)
	if err != nil || c.DatabaseURL != "" {
		return err
	}

	return validation.ValidateStruct(c,
		validation.Field(&c.Postgres, validation.Required),
	)
}

// Load reads the yaml file at path. Every key can be overridden by an
// environment variable, e.g. api.port by API_PORT.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return decode(v)
}

// LoadAndWatch behaves like Load and then calls onChange with the re-read
// config every time the file changes. Invalid edits are reported through
// onError and otherwise ignored.
func LoadAndWatch(path string, onChange func(*AppConfig), onError func(error)) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		updated, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s -> %w", e.Name, err))
			}
			return
		}
		onChange(updated)
	})
	v.WatchConfig()

	return conf, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database_url", "DATABASE_URL")

	v.SetDefault("api.environment", "development")
	v.SetDefault("api.session_ttl", "12h")
	v.SetDefault("api.login_rate_per_minute", 10)
	v.SetDefault("api.login_burst", 5)
	v.SetDefault("api.log_level", "info")
	v.SetDefault("gin.mode", "release")
	v.SetDefault("postgres.sslmode", "disable")

	return v
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("conf.Validate -> %w", err)
	}

	return conf, nil
}
