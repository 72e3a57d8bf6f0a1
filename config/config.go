package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress string `mapstructure:"SERVER_ADDRESS"` // e.g., ":8080"
	AppEnv        string `mapstructure:"APP_ENV"`        // "production" selects gin release mode

	// Authentication backend
	APIBaseURL string `mapstructure:"API_BASE_URL"` // base of /api/signin and /api/signup

	// AI Configuration
	AIProvider    string  `mapstructure:"AI_PROVIDER"` // "gemini" or "openai"
	GoogleAPIKey  string  `mapstructure:"GOOGLE_API_KEY"`
	OpenAIKey     string  `mapstructure:"OPENAI_API_KEY"`
	GeminiBaseURL string  `mapstructure:"GEMINI_BASE_URL"`
	OpenAIBaseURL string  `mapstructure:"OPENAI_BASE_URL"`
	AIModel       string  `mapstructure:"AI_MODEL"`
	ImageModel    string  `mapstructure:"IMAGE_MODEL"`
	Temperature   float32 `mapstructure:"AI_TEMPERATURE"`
	MaxTokens     int     `mapstructure:"AI_MAX_TOKENS"`

	// Request limits
	MaxInputChars  int     `mapstructure:"MAX_INPUT_CHARS"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	// Sessions idle for longer than this are dropped
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`

	// Publishing of generated pages
	PublishTarget string `mapstructure:"PUBLISH_TARGET"` // "disk" or "s3"
	ExportDir     string `mapstructure:"EXPORT_DIR"`
	S3Bucket      string `mapstructure:"S3_BUCKET"`
	AWSRegion     string `mapstructure:"AWS_REGION"`
	AWSProfile    string `mapstructure:"AWS_PROFILE"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":   ":8080",
	"APP_ENV":          "development",
	"API_BASE_URL":     "http://localhost:5000",
	"AI_PROVIDER":      "gemini",
	"GOOGLE_API_KEY":   "",
	"OPENAI_API_KEY":   "",
	"GEMINI_BASE_URL":  "https://generativelanguage.googleapis.com",
	"OPENAI_BASE_URL":  "",
	"AI_MODEL":         "gemini-2.0-flash-exp",
	"IMAGE_MODEL":      "gemini-2.0-flash-exp",
	"AI_TEMPERATURE":   0.7,
	"AI_MAX_TOKENS":    4000,
	"MAX_INPUT_CHARS":  8000,
	"RATE_LIMIT_RPS":   1.0,
	"RATE_LIMIT_BURST": 5,
	"SESSION_TTL":      "24h",
	"PUBLISH_TARGET":   "disk",
	"EXPORT_DIR":       "tmp",
	"S3_BUCKET":        "",
	"AWS_REGION":       "",
	"AWS_PROFILE":      "",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)     // Path to look for the config file in
	v.SetConfigName("config") // Name of config file (without extension)
	v.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv() // Read environment variables that match keys

	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file ('config.yaml') not found in specified path, relying solely on environment variables.")
		} else {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Printf("Using configuration file: %s", v.ConfigFileUsed())
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.AIProvider = strings.ToLower(config.AIProvider)
	switch config.AIProvider {
	case "gemini", "google", "openai":
	default:
		return Config{}, fmt.Errorf("unsupported AI_PROVIDER %q", config.AIProvider)
	}
	switch config.PublishTarget {
	case "disk", "s3":
	default:
		return Config{}, fmt.Errorf("unsupported PUBLISH_TARGET %q", config.PublishTarget)
	}

	// Missing keys are not fatal: generation requests fail with "not configured" instead.
	if config.ProviderAPIKey() == "" {
		log.Printf("WARN: no API key set for AI provider %q. Generation requests will be rejected.", config.AIProvider)
	}
	if config.PublishTarget == "s3" && config.S3Bucket == "" {
		log.Println("WARN: PUBLISH_TARGET is s3 but S3_BUCKET is not set.")
	}

	return
}

// ProviderAPIKey returns the credential of the selected provider.
func (c Config) ProviderAPIKey() string {
	if c.AIProvider == "openai" {
		return c.OpenAIKey
	}
	return c.GoogleAPIKey
}

// ProviderBaseURL returns the endpoint override of the selected provider.
func (c Config) ProviderBaseURL() string {
	if c.AIProvider == "openai" {
		return c.OpenAIBaseURL
	}
	return c.GeminiBaseURL
}
