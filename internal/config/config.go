// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. FLASHCARDS_DB.
const EnvPrefix = "FLASHCARDS"

const (
	DefaultProvider      = "gemini"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultListen        = "127.0.0.1:8787"
	DefaultLogLevel      = "warn"
)

type (
	Config struct {
		Database
		Provider
		Gemini
		OpenAI
		Server
		LogLevel string
	}

	Database struct {
		Path string
	}
	Provider struct {
		Name        string        // gemini | openai
		HTTPTimeout time.Duration // 0 keeps the transport default
	}
	Gemini struct {
		BaseURL string
		Model   string
		APIKey  string // overrides the stored geminiApiKey setting when set
	}
	OpenAI struct {
		BaseURL string
		Model   string
		APIKey  string
	}
	Server struct {
		Listen         string
		AllowedOrigins []string
	}
)

// DefaultDatabasePath is ~/.flashcards/flashcards.db.
func DefaultDatabasePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".flashcards", "flashcards.db")
}

// Load reads .env files (missing ones are ignored) and then the environment.
func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Existing environment variables win over the file.
		_ = godotenv.Load(f)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("db", DefaultDatabasePath())
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("http_timeout", "0s")
	v.SetDefault("gemini_base_url", DefaultGeminiBaseURL)
	v.SetDefault("gemini_model", DefaultGeminiModel)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("openai_base_url", DefaultOpenAIBaseURL)
	v.SetDefault("openai_model", DefaultOpenAIModel)
	v.SetDefault("openai_api_key", "")
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("allowed_origins", "chrome-extension://*")
	v.SetDefault("log_level", DefaultLogLevel)
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Database: Database{
			Path: v.GetString("db"),
		},
		Provider: Provider{
			Name:        v.GetString("provider"),
			HTTPTimeout: v.GetDuration("http_timeout"),
		},
		Gemini: Gemini{
			BaseURL: v.GetString("gemini_base_url"),
			Model:   v.GetString("gemini_model"),
			APIKey:  v.GetString("gemini_api_key"),
		},
		OpenAI: OpenAI{
			BaseURL: v.GetString("openai_base_url"),
			Model:   v.GetString("openai_model"),
			APIKey:  v.GetString("openai_api_key"),
		},
		Server: Server{
			Listen:         v.GetString("listen"),
			AllowedOrigins: splitList(v.GetString("allowed_origins")),
		},
		LogLevel: v.GetString("log_level"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
