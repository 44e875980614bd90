package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every runtime setting of the service.
type Config struct {
	Server     ServerConfig
	AI         AIConfig
	Transcript TranscriptConfig
	Session    SessionConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	transcript, err := loadTranscriptConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Transcript: transcript, Session: session}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" and "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the completion provider.
type AIConfig struct {
	Provider string

	OpenAIAPIKey  string
	OpenAIBaseURL string

	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkBaseURL   string
	ArkRegion    string

	Model          string
	Temperature    *float64
	MaxTokens      *int
	ContextBudget  int
	StreamResponse bool
}

// Enabled reports whether the configured provider has the credentials
// it needs.
func (c AIConfig) Enabled() bool {
	if c.Model == "" {
		return false
	}
	switch c.Provider {
	case "ark":
		return c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != "")
	default:
		return c.OpenAIAPIKey != ""
	}
}

// NewArkChatModel builds an eino chat model from the Ark settings.
func (c AIConfig) NewArkChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY (or AK/SK) and AI_MODEL")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.ArkBaseURL,
		Region:      c.ArkRegion,
		APIKey:      c.ArkAPIKey,
		AccessKey:   c.ArkAccessKey,
		SecretKey:   c.ArkSecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("AI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	stream, err := parseBoolEnv("AI_STREAM", true)
	if err != nil {
		return AIConfig{}, err
	}

	budget := 6000
	if budgetOverride, err := parseOptionalIntEnv("AI_CONTEXT_BUDGET"); err != nil {
		return AIConfig{}, err
	} else if budgetOverride != nil && *budgetOverride > 0 {
		budget = *budgetOverride
	}

	return AIConfig{
		Provider:       strings.ToLower(getEnvOrDefault("AI_PROVIDER", "openai")),
		OpenAIAPIKey:   strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:  strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		ArkAPIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkBaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Model:          strings.TrimSpace(os.Getenv("AI_MODEL")),
		Temperature:    temperature,
		MaxTokens:      maxTokens,
		ContextBudget:  budget,
		StreamResponse: stream,
	}, nil
}

// TranscriptConfig describes the caption source.
type TranscriptConfig struct {
	Languages         []string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

func loadTranscriptConfig() (TranscriptConfig, error) {
	languages := []string{"en"}
	if raw := strings.TrimSpace(os.Getenv("TRANSCRIPT_LANGUAGES")); raw != "" {
		languages = languages[:0]
		for _, lang := range strings.Split(raw, ",") {
			if lang = strings.TrimSpace(lang); lang != "" {
				languages = append(languages, lang)
			}
		}
		if len(languages) == 0 {
			return TranscriptConfig{}, fmt.Errorf("TRANSCRIPT_LANGUAGES contains no usable values: %q", raw)
		}
	}

	timeoutSeconds := 20
	if timeoutOverride, err := parseOptionalIntEnv("TRANSCRIPT_TIMEOUT"); err != nil {
		return TranscriptConfig{}, err
	} else if timeoutOverride != nil && *timeoutOverride > 0 {
		timeoutSeconds = *timeoutOverride
	}

	rps := 2.0
	if rpsOverride, err := parseOptionalFloatEnv("TRANSCRIPT_RPS"); err != nil {
		return TranscriptConfig{}, err
	} else if rpsOverride != nil && *rpsOverride > 0 {
		rps = *rpsOverride
	}

	burst := 2
	if burstOverride, err := parseOptionalIntEnv("TRANSCRIPT_BURST"); err != nil {
		return TranscriptConfig{}, err
	} else if burstOverride != nil && *burstOverride > 0 {
		burst = *burstOverride
	}

	return TranscriptConfig{
		Languages:         languages,
		Timeout:           time.Duration(timeoutSeconds) * time.Second,
		RequestsPerSecond: rps,
		Burst:             burst,
	}, nil
}

// SessionConfig describes session lifecycle management.
type SessionConfig struct {
	MaxAge          time.Duration
	ReapProbability float64
	SweepSchedule   string
}

func loadSessionConfig() (SessionConfig, error) {
	maxAgeMinutes := 60
	if ageOverride, err := parseOptionalIntEnv("SESSION_MAX_AGE_MINUTES"); err != nil {
		return SessionConfig{}, err
	} else if ageOverride != nil && *ageOverride > 0 {
		maxAgeMinutes = *ageOverride
	}

	probability := 0.01
	if probOverride, err := parseOptionalFloatEnv("SESSION_REAP_PROBABILITY"); err != nil {
		return SessionConfig{}, err
	} else if probOverride != nil {
		if *probOverride < 0 || *probOverride > 1 {
			return SessionConfig{}, fmt.Errorf("SESSION_REAP_PROBABILITY must be within [0,1], got %v", *probOverride)
		}
		probability = *probOverride
	}

	return SessionConfig{
		MaxAge:          time.Duration(maxAgeMinutes) * time.Minute,
		ReapProbability: probability,
		SweepSchedule:   strings.TrimSpace(os.Getenv("SESSION_SWEEP_CRON")),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
