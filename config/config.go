package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Port                  int    `mapstructure:"port"                   validate:"required,numeric,min=1,max=65535"`
	ProductionEnvironment bool   `mapstructure:"production_environment"`
	LogLevel              string `mapstructure:"log_level"              validate:"required,oneof=trace debug info warn error"`

	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
}

type AuthConfig struct {
	Secret            string `mapstructure:"secret"              validate:"required,min=32"`
	AccessTTLMinutes  int    `mapstructure:"access_ttl_minutes"  validate:"required,min=1"`
	RefreshTTLMinutes int    `mapstructure:"refresh_ttl_minutes" validate:"required,min=1"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"     validate:"required"`
	Port     int    `mapstructure:"port"     validate:"required,numeric,min=1,max=65535"`
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Database string `mapstructure:"database" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"  validate:"required"`
}

type DefaultValue struct {
	Key   string
	Value any
}

// Defaults applied before the config file and environment are read.
var Defaults = []DefaultValue{
	{Key: "port", Value: 8000},
	{Key: "production_environment", Value: false},
	{Key: "log_level", Value: "info"},
	{Key: "auth.access_ttl_minutes", Value: 60},
	{Key: "auth.refresh_ttl_minutes", Value: 24 * 60},
	{Key: "database.host", Value: "localhost"},
	{Key: "database.port", Value: 5432},
	{Key: "database.sslmode", Value: "disable"},

	// Viper only reads environment variables for keys it knows about, so
	// the required secrets register empty defaults. Validation still
	// rejects them when left unset.
	{Key: "auth.secret", Value: ""},
	{Key: "database.username", Value: ""},
	{Key: "database.password", Value: ""},
	{Key: "database.database", Value: ""},
}

// Load populates an AppConfig from defaults, an optional config file and
// environment variables prefixed with the application name.
func Load(appName string, defaults ...DefaultValue) (*AppConfig, error) {
	v := viper.New()

	for _, def := range defaults {
		v.SetDefault(def.Key, def.Value)
	}

	v.SetConfigName(appName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/" + appName)

	v.SetEnvPrefix(strings.ToUpper(strings.ReplaceAll(appName, "-", "_")))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}
