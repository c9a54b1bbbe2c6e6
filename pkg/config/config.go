// Package config loads the engine's construction parameters from the
// environment or a JSON file. Adapted from the teacher's pkg/core/config.go
// LoadConfigFromEnv/LoadConfigFromEnvFile/LoadConfigFromJSON/FindEnvFile,
// narrowed from the teacher's multi-provider/multi-backend surface to
// spec.md §6's external interface: (provider_type, api_key, endpoint) per
// provider, (backend_type, endpoint, credentials) per store.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/oblabs/memlifecycle/pkg/errs"
	"github.com/oblabs/memlifecycle/pkg/secureconfig"
)

// ProviderConfig is the (provider_type, api_key, endpoint?) tuple spec.md
// §6 names for the LLM and embedding providers. APIKey is wrapped in a
// secureconfig.SecretString so that logging or dumping a Config never
// leaks the raw credential; callers that need the real value call
// APIKey.Reveal() at the point they hand it to a provider client.
type ProviderConfig struct {
	Provider string                     `json:"provider"`
	APIKey   *secureconfig.SecretString `json:"api_key"`
	Model    string                     `json:"model,omitempty"`
	Endpoint string                     `json:"endpoint,omitempty"`
}

// StoreConfig is the (backend_type, endpoint?, credentials?) tuple spec.md
// §6 names for the vector and graph stores. BackendType is "inmemory" or
// "external"; the engine mandates only the inmemory reference stores, so
// "external" is accepted but left for the caller to wire.
type StoreConfig struct {
	BackendType string            `json:"backend_type"`
	Endpoint    string            `json:"endpoint,omitempty"`
	Credentials map[string]string `json:"credentials,omitempty"`
}

// Config is the full set of parameters needed to construct an Engine.
type Config struct {
	LLM         ProviderConfig `json:"llm"`
	Embedder    ProviderConfig `json:"embedder"`
	VectorStore StoreConfig    `json:"vector_store"`
	GraphStore  StoreConfig    `json:"graph_store"`
}

// Validate checks that every provider/store type is specified.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" || c.Embedder.Provider == "" {
		return errs.New("config.Validate", errs.KindFatal, errs.ErrFatal)
	}
	if c.VectorStore.BackendType == "" || c.GraphStore.BackendType == "" {
		return errs.New("config.Validate", errs.KindFatal, errs.ErrFatal)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables, first
// searching for a .env file the same way the teacher's FindEnvFile does.
//
// Recognized variables:
//   - LLM_PROVIDER, LLM_API_KEY, LLM_MODEL, LLM_BASE_URL
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL, EMBEDDING_BASE_URL, EMBEDDING_DIMENSIONS
//   - VECTOR_STORE_PROVIDER (inmemory|external), VECTOR_STORE_ENDPOINT
//   - GRAPH_STORE_PROVIDER (inmemory|external), GRAPH_STORE_ENDPOINT
func LoadFromEnv() (*Config, error) {
	if envPath, found := findEnvFile(); found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		LLM: ProviderConfig{
			Provider: getEnvOrDefault("LLM_PROVIDER", "openai"),
			APIKey:   secureconfig.NewSecretString(os.Getenv("LLM_API_KEY")),
			Model:    getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
			Endpoint: os.Getenv("LLM_BASE_URL"),
		},
		Embedder: ProviderConfig{
			Provider: getEnvOrDefault("EMBEDDING_PROVIDER", "openai"),
			APIKey:   secureconfig.NewSecretString(os.Getenv("EMBEDDING_API_KEY")),
			Model:    getEnvOrDefault("EMBEDDING_MODEL", "text-embedding-ada-002"),
			Endpoint: os.Getenv("EMBEDDING_BASE_URL"),
		},
		VectorStore: StoreConfig{
			BackendType: getEnvOrDefault("VECTOR_STORE_PROVIDER", "inmemory"),
			Endpoint:    os.Getenv("VECTOR_STORE_ENDPOINT"),
		},
		GraphStore: StoreConfig{
			BackendType: getEnvOrDefault("GRAPH_STORE_PROVIDER", "inmemory"),
			Endpoint:    os.Getenv("GRAPH_STORE_ENDPOINT"),
		},
	}

	return cfg, nil
}

// EmbeddingDimensions returns EMBEDDING_DIMENSIONS, defaulting to 1536.
func EmbeddingDimensions() int {
	dims, err := strconv.Atoi(getEnvOrDefault("EMBEDDING_DIMENSIONS", "1536"))
	if err != nil {
		return 1536
	}
	return dims
}

// LoadFromEnvFile loads a specific .env file, then delegates to LoadFromEnv.
func LoadFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, errs.New("config.LoadFromEnvFile", errs.KindFatal, err)
	}
	return LoadFromEnv()
}

// LoadFromJSON loads configuration from a JSON file.
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New("config.LoadFromJSON", errs.KindFatal, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errs.New("config.LoadFromJSON", errs.KindFatal, err)
	}
	return &cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// findEnvFile mirrors the teacher's FindEnvFile: current directory, then up
// to 4 parent directories.
func findEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}
