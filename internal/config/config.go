package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingConfig = errors.New("missing required environment variables")

type Config struct {
	App       AppConfig
	Session   SessionConfig
	Keys      APIKeys
	VectorDB  VectorDBConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
	Ingest    IngestConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type SessionConfig struct {
	Secret   string
	Backend  string // "memory" or "redis"
	TTL      time.Duration
	MaxCount int
	MaxTurns int
}

type APIKeys struct {
	HuggingFace string
	OpenAI      string
	Groq        string
}

type VectorDBConfig struct {
	Endpoint   string // postgres://user@host:5432/db
	Token      string
	Namespace  string
	Collection string
	LogLevel   string
}

type EmbeddingConfig struct {
	Preference     string // "openai" or "huggingface"
	Strict         bool
	Probe          bool
	HFModel        string
	HFInferenceURL string
	OpenAIModel    string
	OpenAIBaseURL  string
	CacheTTL       time.Duration
}

type LLMConfig struct {
	Provider    string // "groq", "openai" or "huggingface"
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
}

type IngestConfig struct {
	CSVPath   string
	OnStartup bool
	Workers   int
	BatchSize int
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	llmProvider := strings.ToLower(getEnv("LLM_PROVIDER", "groq"))

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Session: SessionConfig{
			Secret:   getEnv("SESSION_SECRET", ""),
			Backend:  getEnv("SESSION_BACKEND", "memory"),
			TTL:      getEnvAsDuration("SESSION_TTL", time.Hour),
			MaxCount: getEnvAsInt("SESSION_MAX", 10000),
			MaxTurns: getEnvAsInt("SESSION_MAX_TURNS", 50),
		},
		Keys: APIKeys{
			HuggingFace: getEnv("HF_TOKEN", ""),
			OpenAI:      getEnv("OPENAI_API_KEY", ""),
			Groq:        getEnv("GROQ_API_KEY", ""),
		},
		VectorDB: VectorDBConfig{
			Endpoint:   getEnv("VECTOR_DB_ENDPOINT", ""),
			Token:      getEnv("VECTOR_DB_TOKEN", ""),
			Namespace:  getEnv("VECTOR_DB_NAMESPACE", ""),
			Collection: getEnv("VECTOR_DB_COLLECTION", "ecomm"),
			LogLevel:   getEnv("VECTOR_DB_LOG_LEVEL", "warn"),
		},
		Embedding: EmbeddingConfig{
			Preference:     strings.ToLower(getEnv("EMBEDDING_PREFERENCE", "openai")),
			Strict:         getEnvAsBool("EMBEDDING_STRICT", false),
			Probe:          getEnvAsBool("EMBEDDING_PROBE", false),
			HFModel:        getEnv("HF_EMBEDDING_MODEL", "BAAI/bge-base-en-v1.5"),
			HFInferenceURL: getEnv("HF_INFERENCE_URL", ""),
			OpenAIModel:    getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-ada-002"),
			OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
			CacheTTL:       getEnvAsDuration("EMBEDDING_CACHE_TTL", 24*time.Hour),
		},
		LLM: LLMConfig{
			Provider:    llmProvider,
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Model:       getEnv("LLM_MODEL", DefaultLLMModel(llmProvider)),
			Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.5),
			MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 800),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			MaxRetries:  getEnvAsInt("LLM_MAX_RETRIES", 2),
		},
		Ingest: IngestConfig{
			CSVPath:   getEnv("DATA_CSV_PATH", "data/flipkart_product_review.csv"),
			OnStartup: getEnvAsBool("INGEST_ON_STARTUP", false),
			Workers:   getEnvAsInt("INGEST_WORKERS", 4),
			BatchSize: getEnvAsInt("INGEST_BATCH_SIZE", 100),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

type requiredVar struct {
	name  string
	value string
}

// MissingRequired lists the required variables that are unset or blank.
func (c *Config) MissingRequired() []string {
	required := []requiredVar{
		{"HF_TOKEN", c.Keys.HuggingFace},
		{"OPENAI_API_KEY", c.Keys.OpenAI},
		{"VECTOR_DB_ENDPOINT", c.VectorDB.Endpoint},
		{"VECTOR_DB_TOKEN", c.VectorDB.Token},
		{"VECTOR_DB_NAMESPACE", c.VectorDB.Namespace},
	}
	// The huggingface and openai chat providers reuse the embedding keys above.
	if c.LLM.Provider == "" || c.LLM.Provider == "groq" {
		required = append(required, requiredVar{"GROQ_API_KEY", c.Keys.Groq})
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}

// Validate fails when any required variable is missing. It never touches the network.
func (c *Config) Validate() error {
	if missing := c.MissingRequired(); len(missing) > 0 {
		return &MissingError{Names: missing}
	}
	return nil
}

type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return ErrMissingConfig.Error() + ": " + strings.Join(e.Names, ", ")
}

func (e *MissingError) Unwrap() error {
	return ErrMissingConfig
}

// DefaultLLMModel is the chat model used when LLM_MODEL is unset.
func DefaultLLMModel(provider string) string {
	switch provider {
	case "huggingface":
		return "meta-llama/Llama-3.1-8B-Instruct"
	case "openai":
		return "gpt-4o-mini"
	default:
		return "llama-3.1-70b-versatile"
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
