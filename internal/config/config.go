package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Transcriber  TranscriberConfig `yaml:"transcriber"`
	EmbedLLM     LLMConfig         `yaml:"embed_llm" envPrefix:"EMBED_"`
	InferenceLLM LLMConfig         `yaml:"inference_llm" envPrefix:"INFERENCE_"`
	Database     DatabaseConfig    `yaml:"database"`
	VectorStore  VectorStoreConfig `yaml:"vector_store"`
	RAG          RAGConfig         `yaml:"rag"`
	Server       ServerConfig      `yaml:"server"`
}

type TranscriberConfig struct {
	Endpoint   string `yaml:"endpoint" env:"TRANSCRIBE_ENDPOINT"`
	APIKey     string `yaml:"api_key" env:"TRANSCRIBE_API_KEY"`
	Model      string `yaml:"model" env:"TRANSCRIBE_MODEL"`
	TimeoutSec int    `yaml:"timeout_sec" env:"TRANSCRIBE_TIMEOUT_SEC"`
	MaxRetries int    `yaml:"max_retries" env:"TRANSCRIBE_MAX_RETRIES"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url" env:"LLM_BASE_URL"`
	Key     string `yaml:"key" env:"LLM_KEY"`
	Model   string `yaml:"model" env:"LLM_MODEL"`
}

type DatabaseConfig struct {
	DSN        string `yaml:"dsn" env:"DATABASE_DSN"`
	Password   string `yaml:"password" env:"DATABASE_PASSWORD"`
	VectorSize int    `yaml:"vector_size" env:"DATABASE_VECTOR_SIZE"`
	Debug      bool   `yaml:"debug" env:"DATABASE_DEBUG"`
}

type VectorStoreConfig struct {
	Path          string `yaml:"path" env:"VECTOR_STORE_PATH"`
	Collection    string `yaml:"collection" env:"VECTOR_STORE_COLLECTION"`
	InMemory      bool   `yaml:"in_memory" env:"VECTOR_STORE_IN_MEMORY"`
	EncryptionKey string `yaml:"encryption_key" env:"VECTOR_STORE_ENCRYPTION_KEY"`
}

type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size" env:"CHUNK_SIZE"`
	ChunkOverlap int `yaml:"chunk_overlap" env:"CHUNK_OVERLAP"`
	TopK         int `yaml:"top_k" env:"RAG_TOP_K"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"SERVER_ADDR"`
}

// LoadConfig reads the YAML file at path, then applies environment
// variable overrides on top. Defaults are established before the file
// is decoded, so an explicitly configured value always wins over a
// default, including an explicit zero (chunk_overlap: 0 is a valid
// setting and must not come back as 200). A missing file is not an
// error so the binary can run from environment alone.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Transcriber: TranscriberConfig{
			Model:      "whisper-1",
			TimeoutSec: 120,
			MaxRetries: 3,
		},
		Database: DatabaseConfig{
			VectorSize: 768,
		},
		VectorStore: VectorStoreConfig{
			Path:       "./chromemdb",
			Collection: "transcripts",
		},
		RAG: RAGConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         5,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
