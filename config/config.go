package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress string `mapstructure:"SERVER_ADDRESS"` // e.g., ":8080"
	AppEnv        string `mapstructure:"APP_ENV"`        // "production" hides error detail and sets gin release mode

	// AI Configuration
	OpenAIKey     string `mapstructure:"OPENAI_API_KEY"`  // API key for the LLM provider
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"` // Optional override for OpenAI-compatible providers
	DefaultModel  string `mapstructure:"DEFAULT_MODEL"`   // Short model name used when a request omits one

	// Storage Configuration
	StorageRoot string `mapstructure:"STORAGE_ROOT"` // Directory that holds one subdirectory per generated project
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("SERVER_ADDRESS", ":8080")
	viper.SetDefault("STORAGE_ROOT", "generated-projects")

	viper.AutomaticEnv()

	// AutomaticEnv alone is not enough for Unmarshal: it only affects
	// direct Get lookups. Each key must be bound explicitly or env-only
	// deployments (no config.yaml) would come up empty.
	for _, key := range []string{
		"SERVER_ADDRESS",
		"APP_ENV",
		"OPENAI_API_KEY",
		"OPENAI_BASE_URL",
		"DEFAULT_MODEL",
		"STORAGE_ROOT",
	} {
		if err := viper.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("binding environment variable %s: %w", key, err)
		}
	}

	err = viper.ReadInConfig()
	if err != nil {
		// If config file not found, continue: env vars may carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file ('config.yaml') not found in specified path, relying solely on environment variables.")
		} else {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Printf("Using configuration file: %s", viper.ConfigFileUsed())
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if config.OpenAIKey == "" {
		log.Println("WARN: OPENAI_API_KEY is not set. Generation endpoints will fail until it is configured.")
	}

	return
}
