package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrEmptyBotToken      = errors.New("telegram bot token is required")
	ErrUnknownMode        = errors.New("unknown joke mode")
	ErrInvalidTemperature = errors.New("temperature must be between 0.7 and 1.2")
	ErrInvalidMaxTokens   = errors.New("max tokens must be positive")
)

const (
	ModePool   = "pool"
	ModeOpenAI = "openai"
	ModeGemini = "gemini"

	MinTemperature = 0.7
	MaxTemperature = 1.2

	// secretPrefix is the viper namespace consulted when a key is not set directly.
	secretPrefix = "APP"
)

type Config struct {
	App      AppConfig      `yaml:"app" env-prefix:"APP_"`
	Joke     JokeConfig     `yaml:"joke" env-prefix:"JOKE_"`
	OpenAI   OpenAIConfig   `yaml:"openai" env-prefix:"OPENAI_"`
	Gemini   GeminiConfig   `yaml:"gemini" env-prefix:"GEMINI_"`
	Database DatabaseConfig `yaml:"database" env-prefix:"DB_"`
	HTTP     HTTPConfig     `yaml:"http" env-prefix:"HTTP_"`
	NATS     NATSConfig     `yaml:"nats" env-prefix:"NATS_"`
	Bot      BotConfig      `yaml:"bot" env-prefix:"BOT_"`
}

type AppConfig struct {
	Name        string `yaml:"name" env:"NAME" env-default:"dadjoke"`
	Environment string `yaml:"environment" env:"ENVIRONMENT" env-default:"production"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

type JokeConfig struct {
	Mode string `yaml:"mode" env:"MODE" env-default:"pool"`
	// File optionally replaces the built-in pool universe.
	File string `yaml:"file" env:"FILE"`
}

type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key" env:"API_KEY"`
	BaseURL     string        `yaml:"base_url" env:"BASE_URL" env-default:"https://api.openai.com/v1"`
	Model       string        `yaml:"model" env:"MODEL" env-default:"gpt-3.5-turbo"`
	Temperature float64       `yaml:"temperature" env:"TEMPERATURE" env-default:"0.7"`
	MaxTokens   int           `yaml:"max_tokens" env:"MAX_TOKENS" env-default:"100"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT" env-default:"0s"`
}

type GeminiConfig struct {
	APIKey      string  `yaml:"api_key" env:"API_KEY"`
	BaseURL     string  `yaml:"base_url" env:"BASE_URL"`
	Model       string  `yaml:"model" env:"MODEL" env-default:"gemini-2.0-flash"`
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE" env-default:"0.9"`
	MaxTokens   int     `yaml:"max_tokens" env:"MAX_TOKENS" env-default:"100"`
}

type DatabaseConfig struct {
	Enabled        bool   `yaml:"enabled" env:"ENABLED" env-default:"false"`
	URL            string `yaml:"url" env:"URL"`
	Host           string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PORT" env-default:"5432"`
	User           string `yaml:"user" env:"USER" env-default:"dadjoke"`
	Password       string `yaml:"password" env:"PASSWORD"`
	Name           string `yaml:"name" env:"NAME" env-default:"dadjoke"`
	MaxConnections int    `yaml:"max_connections" env:"MAX_CONNECTIONS" env-default:"10"`
	MinConnections int    `yaml:"min_connections" env:"MIN_CONNECTIONS" env-default:"1"`
}

// Active reports whether jokes should be persisted.
func (d DatabaseConfig) Active() bool {
	return d.Enabled || d.URL != ""
}

func (d DatabaseConfig) ConnectionString() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

type HTTPConfig struct {
	Port            int           `yaml:"port" env:"PORT" env-default:"8000"`
	StaticDir       string        `yaml:"static_dir" env:"STATIC_DIR"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func (h HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", h.Port)
}

type NATSConfig struct {
	Enabled    bool   `yaml:"enabled" env:"ENABLED" env-default:"false"`
	URL        string `yaml:"url" env:"URL" env-default:"nats://localhost:4222"`
	StreamName string `yaml:"stream_name" env:"STREAM_NAME" env-default:"DADJOKE"`
}

type BotConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED" env-default:"false"`
	Token     string `yaml:"token" env:"TOKEN"`
	ParseMode string `yaml:"parse_mode" env:"PARSE_MODE" env-default:"Markdown"`
}

// Load reads an optional .env file, then the YAML file at CONFIG_PATH if set,
// then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from %s: %w", configPath, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = namespacedSecret("openai_api_key")
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = namespacedSecret("gemini_api_key")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDatabase reads only the database settings, skipping validation of the
// rest of the configuration.
func LoadDatabase() (DatabaseConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return DatabaseConfig{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg struct {
		Database DatabaseConfig `yaml:"database" env-prefix:"DB_"`
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return DatabaseConfig{}, fmt.Errorf("failed to read config from %s: %w", configPath, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return DatabaseConfig{}, fmt.Errorf("failed to read config from environment: %w", err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}

	return cfg.Database, nil
}

// namespacedSecret looks key up as APP_<KEY>.
func namespacedSecret(key string) string {
	v := viper.New()
	v.SetEnvPrefix(secretPrefix)
	v.SetDefault(key, "")
	v.AutomaticEnv()
	return v.GetString(key)
}

func (c *Config) Validate() error {
	switch c.Joke.Mode {
	case ModePool:
	case ModeOpenAI:
		if err := checkSampling(c.OpenAI.Temperature, c.OpenAI.MaxTokens); err != nil {
			return fmt.Errorf("openai: %w", err)
		}
	case ModeGemini:
		if err := checkSampling(c.Gemini.Temperature, c.Gemini.MaxTokens); err != nil {
			return fmt.Errorf("gemini: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, c.Joke.Mode)
	}

	if c.Bot.Enabled && c.Bot.Token == "" {
		return ErrEmptyBotToken
	}

	return nil
}

func checkSampling(temperature float64, maxTokens int) error {
	if temperature < MinTemperature || temperature > MaxTemperature {
		return fmt.Errorf("%w: got %v", ErrInvalidTemperature, temperature)
	}
	if maxTokens <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxTokens, maxTokens)
	}
	return nil
}

// APIKey returns the key of the external generator selected by Mode.
func (c *Config) APIKey() string {
	switch c.Joke.Mode {
	case ModeOpenAI:
		return c.OpenAI.APIKey
	case ModeGemini:
		return c.Gemini.APIKey
	default:
		return ""
	}
}
