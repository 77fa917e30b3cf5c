package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/medstore/internal/log"
)

type Application struct {
	Env          string `mapstructure:"env"           json:"env"`
	Host         string `mapstructure:"host"          json:"host"`
	PasswordHash string `mapstructure:"password_hash" json:"-"`
	Port         int    `mapstructure:"port"          json:"port"`
}

type Store struct {
	Name       string `mapstructure:"name"        json:"name"`
	Currency   string `mapstructure:"currency"    json:"currency"`
	DataFile   string `mapstructure:"data_file"   json:"data_file"`
	ReceiptDir string `mapstructure:"receipt_dir" json:"receipt_dir"`
}

type Backup struct {
	Dir         string `mapstructure:"dir"           json:"dir"`
	Schedule    string `mapstructure:"schedule"      json:"schedule"`
	AutoOnStart bool   `mapstructure:"auto_on_start" json:"auto_on_start"`
}

type Log struct {
	File  string `mapstructure:"file"  json:"file"`
	Level string `mapstructure:"level" json:"level"`
}

type Otel struct {
	Host    string `mapstructure:"host"    json:"host"`
	Port    int    `mapstructure:"port"    json:"port"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

type Config struct {
	Application `mapstructure:"application" json:"application"`
	Store       `mapstructure:"store"       json:"store"`
	Backup      `mapstructure:"backup"      json:"backup"`
	Log         `mapstructure:"log"         json:"log"`
	Otel        `mapstructure:"otel"        json:"otel"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.host", "127.0.0.1")
	v.SetDefault("application.port", 8080)
	v.SetDefault("application.password_hash", "")
	v.SetDefault("store.name", "MEDICAL STORE")
	v.SetDefault("store.currency", "Rs")
	v.SetDefault("store.data_file", "medicines.dat")
	v.SetDefault("store.receipt_dir", "")
	v.SetDefault("backup.dir", "backups")
	v.SetDefault("backup.schedule", "")
	v.SetDefault("backup.auto_on_start", true)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("otel.host", "otel-collector")
	v.SetDefault("otel.port", 4317)
	v.SetDefault("otel.enabled", false)
}

// Load reads configuration from filename, or from ./env/medstore.yaml when
// filename is empty. A missing config file falls back to defaults and
// MEDSTORE_* environment variables.
func Load(c context.Context, filename string) (*Config, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "config Load").
		Str(log.KeyProcess, "loading dotenv").
		Str("filename", filename).
		Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug().Err(err).Msg("no .env file loaded")
	}

	v := viper.New()
	setDefaults(v)
	if filename != "" {
		v.SetConfigFile(filename)
	} else {
		v.SetConfigName("medstore")
		v.SetConfigType("yaml")
		v.AddConfigPath("./env")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("MEDSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
	logger.Debug().Msg("reading config")
	err := v.ReadInConfig()
	if err != nil {
		notFound := viper.ConfigFileNotFoundError{}
		if filename != "" || !errors.As(err, &notFound) {
			err = fmt.Errorf("error when reading config with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Debug().Msg("config file not found, using defaults")
	} else {
		logger.Debug().Str("configFile", v.ConfigFileUsed()).Msg("read config")
	}

	logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		err = fmt.Errorf("error unmarshaling config with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Any(log.KeyConfig, cfg).Msg("unmarshalled config")
	return &cfg, nil
}
