package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Pipeline PipelineConfig
	Models   ModelsConfig
	LLM      LLMConfig
	Audit    AuditConfig
	Log      LogConfig
}

// ServerConfig holds HTTP and gRPC listener configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	StaticDir       string
	AllowedOrigins  []string
	MaxBodyBytes    int64
	RateLimit       int // requests per RateWindow per client IP; 0 disables
	RateWindow      time.Duration
	ShutdownTimeout time.Duration
}

// PipelineConfig holds extraction pipeline limits
type PipelineConfig struct {
	RequestTimeout       time.Duration
	SummaryMaxInputChars int
	SummaryMaxSentences  int
}

// ModelsConfig selects model backends, loaded once at process start
type ModelsConfig struct {
	NERBackend        string // lexicon | openai | none
	SummarizerBackend string // openai | lead | none
	LexiconPath       string // optional JSON lexicon replacing the embedded one
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model             string
	APIKey            string
	BaseURL           string
	Temperature       float32
	Timeout           time.Duration
	RequestsPerSecond float64
}

// AuditConfig holds the optional run-audit store configuration
type AuditConfig struct {
	DSN         string // postgres://... or sqlite:path; empty disables auditing
	MaxConns    int32
	MinConns    int32
	DialTimeout time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables, after applying
// any .env file found in the working directory.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":5000"),
			GRPCAddr:        getEnv("GRPC_ADDR", ""),
			StaticDir:       getEnv("STATIC_DIR", ""),
			AllowedOrigins:  getEnvAsList("CORS_ORIGINS", []string{"*"}),
			MaxBodyBytes:    int64(getEnvAsInt("MAX_BODY_BYTES", 1<<20)),
			RateLimit:       getEnvAsInt("RATE_LIMIT", 30),
			RateWindow:      getEnvAsDuration("RATE_WINDOW", time.Minute),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Pipeline: PipelineConfig{
			RequestTimeout:       getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
			SummaryMaxInputChars: getEnvAsInt("SUMMARY_MAX_INPUT_CHARS", 1024),
			SummaryMaxSentences:  getEnvAsInt("SUMMARY_MAX_SENTENCES", 3),
		},
		Models: ModelsConfig{
			NERBackend:        strings.ToLower(getEnv("NER_BACKEND", constants.BackendLexicon)),
			SummarizerBackend: strings.ToLower(getEnv("SUMMARIZER_BACKEND", constants.BackendLead)),
			LexiconPath:       getEnv("LEXICON_PATH", ""),
		},
		LLM: LLMConfig{
			Model:             getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:            getEnv("OPENAI_API_KEY", ""),
			BaseURL:           getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature:       getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:           getEnvAsDuration("OPENAI_TIMEOUT", 20*time.Second),
			RequestsPerSecond: getEnvAsFloat64("OPENAI_RPS", 5),
		},
		Audit: AuditConfig{
			DSN:         getEnv("AUDIT_DB_URL", ""),
			MaxConns:    getEnvAsInt32("AUDIT_DB_MAX_CONNS", 5),
			MinConns:    getEnvAsInt32("AUDIT_DB_MIN_CONNS", 0),
			DialTimeout: getEnvAsDuration("AUDIT_DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Models.NERBackend {
	case constants.BackendLexicon, constants.BackendOpenAI, constants.BackendNone:
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown NER_BACKEND %q", c.Models.NERBackend), ErrInvalidInput)
	}
	switch c.Models.SummarizerBackend {
	case constants.BackendOpenAI, constants.BackendLead, constants.BackendNone:
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown SUMMARIZER_BACKEND %q", c.Models.SummarizerBackend), ErrInvalidInput)
	}
	if c.Pipeline.RequestTimeout <= 0 {
		return NewAppError("CONFIG_ERROR", "REQUEST_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.Pipeline.SummaryMaxInputChars < 64 {
		return NewAppError("CONFIG_ERROR", "SUMMARY_MAX_INPUT_CHARS must be at least 64", ErrInvalidInput)
	}
	if c.Pipeline.SummaryMaxSentences < 1 {
		return NewAppError("CONFIG_ERROR", "SUMMARY_MAX_SENTENCES must be at least 1", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" && c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR or GRPC_ADDR is required", ErrInvalidInput)
	}
	return nil
}
