// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port string

	// Agora credentials.
	AppID          string
	AppCertificate string
	APIKey         string
	APISecret      string
	PSTNAuth       string

	// LLM / TTS credentials passed through verbatim in the agent join request.
	OpenAIAPIKey      string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string

	// Partner endpoints. Overridable for staging and tests.
	PSTNEndpoint string
	AIEndpoint   string

	// AllowedOrigins is a comma-separated allow-list for the /pstn route.
	AllowedOrigins string

	// RequestTimeout bounds every outbound partner call.
	RequestTimeout time.Duration

	// Fixed channel principals: the PSTN caller and the AI agent.
	DefaultUID string
	AgentUID   string

	TokenExpiration time.Duration
}

const (
	defaultPSTNEndpoint = "https://sipcm.agora.io/v1/api/pstn"
	defaultAIEndpoint   = "https://api.agora.io/api/conversational-ai-agent/v2"
	defaultOrigins      = "http://localhost:5000,http://127.0.0.1:5000"
)

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "5000"),
		AppID:             os.Getenv("APP_ID"),
		AppCertificate:    os.Getenv("APP_CERTIFICATE"),
		APIKey:            os.Getenv("AGORA_API_KEY"),
		APISecret:         os.Getenv("AGORA_API_SECRET"),
		PSTNAuth:          os.Getenv("PSTN_AUTH"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		PSTNEndpoint:      getEnv("AGORA_PSTN_ENDPOINT", defaultPSTNEndpoint),
		AIEndpoint:        getEnv("AGORA_AI_ENDPOINT", defaultAIEndpoint),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", defaultOrigins),
		RequestTimeout:    time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		DefaultUID:        "111",
		AgentUID:          "222",
		TokenExpiration:   time.Hour,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set. It reports
// every missing variable at once so a misconfigured deployment fails with one
// actionable error instead of a sequence of restarts.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"APP_ID", c.AppID},
		{"APP_CERTIFICATE", c.AppCertificate},
		{"AGORA_API_KEY", c.APIKey},
		{"AGORA_API_SECRET", c.APISecret},
		{"PSTN_AUTH", c.PSTNAuth},
		{"OPENAI_API_KEY", c.OpenAIAPIKey},
		{"ELEVENLABS_API_KEY", c.ElevenLabsAPIKey},
		{"ELEVENLABS_VOICE_ID", c.ElevenLabsVoiceID},
	}

	var missing []string
	for _, v := range required {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
