// Package config handles configuration loading for pulsewatch.
// It supports YAML config files, an optional .env file and environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	News     NewsConfig     `mapstructure:"news"     yaml:"news"`
	Twitter  TwitterConfig  `mapstructure:"twitter"  yaml:"twitter"`
	YouTube  YouTubeConfig  `mapstructure:"youtube"  yaml:"youtube"`
	Market   MarketConfig   `mapstructure:"market"   yaml:"market"`
	LLM      LLMConfig      `mapstructure:"llm"      yaml:"llm"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Summary  SummaryConfig  `mapstructure:"summary"  yaml:"summary"`
	Report   ReportConfig   `mapstructure:"report"   yaml:"report"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Events   EventsConfig   `mapstructure:"events"   yaml:"events"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// NewsConfig holds the news search settings.
type NewsConfig struct {
	APIKey       string `mapstructure:"api_key"        yaml:"api_key"`
	BaseURL      string `mapstructure:"base_url"       yaml:"base_url"`
	PageSize     int    `mapstructure:"page_size"      yaml:"page_size"`
	RSSSearchURL string `mapstructure:"rss_search_url" yaml:"rss_search_url"` // e.g. "https://news.google.com/rss/search?q=%s"; empty disables
}

// TwitterConfig holds Twitter API v2 settings.
type TwitterConfig struct {
	BearerToken string `mapstructure:"bearer_token" yaml:"bearer_token"`
	BaseURL     string `mapstructure:"base_url"     yaml:"base_url"`
	MaxResults  int    `mapstructure:"max_results"  yaml:"max_results"`
}

// YouTubeConfig holds YouTube Data API v3 settings.
type YouTubeConfig struct {
	APIKey     string `mapstructure:"api_key"     yaml:"api_key"`
	BaseURL    string `mapstructure:"base_url"    yaml:"base_url"`
	MaxResults int    `mapstructure:"max_results" yaml:"max_results"`
}

// MarketConfig holds the price history settings.
type MarketConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Range   string `mapstructure:"range"    yaml:"range"` // e.g. "100d"
}

// LLMConfig holds the text-generation settings. The classifier and the
// summarizer authenticate with separate keys.
type LLMConfig struct {
	ClassifierKey string  `mapstructure:"classifier_key" yaml:"classifier_key"`
	SummarizerKey string  `mapstructure:"summarizer_key" yaml:"summarizer_key"`
	BaseURL       string  `mapstructure:"base_url"       yaml:"base_url"`
	Model         string  `mapstructure:"model"          yaml:"model"`
	Temperature   float64 `mapstructure:"temperature"    yaml:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens"     yaml:"max_tokens"`
}

// AnalysisConfig holds pipeline settings.
type AnalysisConfig struct {
	ClassifyWorkers int `mapstructure:"classify_workers" yaml:"classify_workers"`
	MaxTextChars    int `mapstructure:"max_text_chars"   yaml:"max_text_chars"`
}

// SummaryConfig holds cross-query summary settings.
type SummaryConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ReportConfig holds PDF report settings.
type ReportConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host           string        `mapstructure:"host"            yaml:"host"`
	Port           int           `mapstructure:"port"            yaml:"port"`
	CORSOrigins    []string      `mapstructure:"cors_origins"    yaml:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// EventsConfig holds analysis event publishing settings.
type EventsConfig struct {
	NATSURL     string `mapstructure:"nats_url"     yaml:"nats_url"` // empty disables NATS
	NATSSubject string `mapstructure:"nats_subject" yaml:"nats_subject"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.pulsewatch/config.yaml (home directory)
//  3. /etc/pulsewatch/config.yaml (system)
//
// A .env file in the working directory is loaded first if present.
// Environment variables override config file values.
// Format: PULSEWATCH_<SECTION>_<KEY>, e.g., PULSEWATCH_NEWS_API_KEY
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".pulsewatch"))
	v.AddConfigPath("/etc/pulsewatch")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("PULSEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// loadDotEnv loads ./.env into the process environment. Variables that are
// already set win; a missing file is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Sources
	v.SetDefault("news.base_url", "https://newsapi.org")
	v.SetDefault("news.page_size", 20)
	v.SetDefault("news.rss_search_url", "")
	v.SetDefault("twitter.base_url", "https://api.twitter.com")
	v.SetDefault("twitter.max_results", 100)
	v.SetDefault("youtube.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("youtube.max_results", 50)
	v.SetDefault("market.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("market.range", "100d")

	// LLM defaults
	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.model", "gemini-1.5-flash")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 1024)

	// Analysis defaults
	v.SetDefault("analysis.classify_workers", 4)
	v.SetDefault("analysis.max_text_chars", 800)
	v.SetDefault("summary.timeout", 60*time.Second)
	v.SetDefault("report.dir", "reports")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 5000)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.request_timeout", 10*time.Minute)

	// Events defaults
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.nats_subject", "pulsewatch.analysis")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Plain variable names accepted alongside the PULSEWATCH_ ones, so an
// existing .env keeps working.
const (
	EnvNewsAPIKey      = "NEWS_API_KEY"
	EnvTwitterBearer   = "TWITTER_BEARER_TOKEN"
	EnvYouTubeAPIKey   = "YOUTUBE_API_KEY"
	EnvClassifierKey   = "GOOGLE_API_KEY"
	EnvSummarizerKey   = "GEMINI_API_KEY"
	envPrefixedNews    = "PULSEWATCH_NEWS_API_KEY"
	envPrefixedTwitter = "PULSEWATCH_TWITTER_BEARER_TOKEN"
	envPrefixedYouTube = "PULSEWATCH_YOUTUBE_API_KEY"
	envPrefixedClass   = "PULSEWATCH_LLM_CLASSIFIER_KEY"
	envPrefixedSumm    = "PULSEWATCH_LLM_SUMMARIZER_KEY"
)

// overrideFromEnv explicitly reads credentials from environment variables.
// The prefixed name wins over the plain one.
func overrideFromEnv(cfg *Config) {
	pick(&cfg.News.APIKey, envPrefixedNews, EnvNewsAPIKey)
	pick(&cfg.Twitter.BearerToken, envPrefixedTwitter, EnvTwitterBearer)
	pick(&cfg.YouTube.APIKey, envPrefixedYouTube, EnvYouTubeAPIKey)
	pick(&cfg.LLM.ClassifierKey, envPrefixedClass, EnvClassifierKey)
	pick(&cfg.LLM.SummarizerKey, envPrefixedSumm, EnvSummarizerKey)
}

func pick(dst *string, names ...string) {
	for _, name := range names {
		if key := os.Getenv(name); key != "" {
			*dst = key
			return
		}
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Redacted returns a copy of cfg with every credential replaced by its
// masked form, for display.
func (c *Config) Redacted() Config {
	out := *c
	out.API.CORSOrigins = append([]string(nil), c.API.CORSOrigins...)
	for _, key := range []*string{
		&out.News.APIKey,
		&out.Twitter.BearerToken,
		&out.YouTube.APIKey,
		&out.LLM.ClassifierKey,
		&out.LLM.SummarizerKey,
	} {
		if *key != "" {
			*key = maskKey(*key)
		}
	}
	return out
}
