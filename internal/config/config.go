// Package config loads and validates the bot configuration.
package config

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Spotify  SpotifyConfig  `mapstructure:"spotify"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type SpotifyConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/soundmap-bot")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	// Defaults suit containerised deployments with a volume at /data.
	v.SetDefault("database.path", "/data/bot.db")

	// Bind secrets to environment variables only (not from config file)
	if err := v.BindEnv("spotify.client_id", "SPOTIFY_CLIENT_ID"); err != nil {
		return nil, fmt.Errorf("failed to bind SPOTIFY_CLIENT_ID environment variable: %w", err)
	}
	if err := v.BindEnv("spotify.client_secret", "SPOTIFY_CLIENT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind SPOTIFY_CLIENT_SECRET environment variable: %w", err)
	}
	if err := v.BindEnv("database.path", "DATABASE_PATH"); err != nil {
		return nil, fmt.Errorf("failed to bind DATABASE_PATH environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
		messages := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			messages = append(messages, fieldError.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %v", messages)
	}

	return &cfg, nil
}
