package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI       AIConfig       `yaml:"ai"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	NBA      NBAConfig      `yaml:"nba"`
	Resolver ResolverConfig `yaml:"resolver"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string `yaml:"model"`
}

// YouTubeConfig configures the fallback video search. An API key is enough
// for search; the OAuth fields are the alternative when no key is available.
type YouTubeConfig struct {
	APIKey       string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile    string `yaml:"token_file"`
}

type NBAConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type ResolverConfig struct {
	Workers              int `yaml:"workers"`
	SearchTimeoutSeconds int `yaml:"search_timeout_seconds"`
	MatchWaitSeconds     int `yaml:"match_wait_seconds"`
}

type CacheConfig struct {
	Dir           string `yaml:"dir"`
	TTLHours      int    `yaml:"ttl_hours"`
	SweepSchedule string `yaml:"sweep_schedule"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		// No config file is fine, everything can come from the environment.
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	}

	if cfg.AI.GeminiAPIKey == "" {
		cfg.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.YouTube.APIKey == "" {
		cfg.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if cfg.YouTube.ClientID == "" {
		cfg.YouTube.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if cfg.YouTube.ClientSecret == "" {
		cfg.YouTube.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.0-flash"
	}
	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if c.NBA.BaseURL == "" {
		c.NBA.BaseURL = "https://stats.nba.com"
	}
	if c.NBA.TimeoutSeconds <= 0 {
		c.NBA.TimeoutSeconds = 10
	}
	if c.Resolver.Workers <= 0 {
		c.Resolver.Workers = 3
	}
	if c.Resolver.SearchTimeoutSeconds <= 0 {
		c.Resolver.SearchTimeoutSeconds = 60
	}
	if c.Resolver.MatchWaitSeconds <= 0 {
		c.Resolver.MatchWaitSeconds = 45
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "data"
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24
	}
	if c.Cache.SweepSchedule == "" {
		c.Cache.SweepSchedule = "0 0 * * * *" // hourly, cron with seconds field
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
}

// validate rejects configurations that could never resolve anything. A
// missing Gemini key or missing YouTube credentials each degrade at runtime,
// but with neither there is no path to a clip at all.
func (c *Config) validate() error {
	if c.AI.GeminiAPIKey == "" && !c.YouTube.Configured() {
		return fmt.Errorf("no upstream credentials: set GEMINI_API_KEY (or ai.gemini_api_key), and either YOUTUBE_API_KEY or a Google OAuth client for the fallback search")
	}
	return nil
}

// Configured reports whether the fallback search has any usable credentials.
func (y *YouTubeConfig) Configured() bool {
	return y.APIKey != "" || (y.ClientID != "" && y.ClientSecret != "")
}
