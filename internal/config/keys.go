package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "AIz...abc"
}

// CheckAPIKeys returns the status of every upstream credential.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("News API Key", cfg.News.APIKey, envPrefixedNews, EnvNewsAPIKey),
		checkKey("Twitter Bearer Token", cfg.Twitter.BearerToken, envPrefixedTwitter, EnvTwitterBearer),
		checkKey("YouTube API Key", cfg.YouTube.APIKey, envPrefixedYouTube, EnvYouTubeAPIKey),
		checkKey("Classifier LLM Key", cfg.LLM.ClassifierKey, envPrefixedClass, EnvClassifierKey),
		checkKey("Summarizer LLM Key", cfg.LLM.SummarizerKey, envPrefixedSumm, EnvSummarizerKey),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:   name,
		IsSet:  value != "",
		Source: KeySourceNone,
	}
	if value == "" {
		return status
	}

	status.Source = KeySourceConfig
	for _, env := range envVars {
		if os.Getenv(env) != "" {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = maskKey(value)
	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
