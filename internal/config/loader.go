package config

import (
	"os"
	"strconv"
	"time"
)

// Load loads configuration from environment variables with defaults,
// applies them, and validates the result.
//
// Server:
//   - SERVER_PORT (default 9090)
//   - SERVER_SHUTDOWN_TIMEOUT (default 10s)
//
// Vector database:
//   - QDRANT_HOST (default localhost)
//   - QDRANT_PORT (default 6334)
//   - QDRANT_HTTP_PORT (default 6333)
//   - VECTOR_SIZE (default 1536)
//   - SPARSE_VECTORS_ENABLED (default false)
//   - SEPARATE_COLLECTIONS (default true)
//   - LEGACY_CODEBASE_COLLECTION (default false)
//
// Embeddings:
//   - EMBEDDING_BASE_URL (default http://localhost:8080)
//   - EMBEDDINGS_MODEL (default text-embedding-3-small)
//
// LLM (context-pack reranking):
//   - ANTHROPIC_API_KEY (no default; required only if the LLM reranker is used)
//   - ANTHROPIC_MODEL (default empty; the reranker's Anthropic client then uses claude-3-5-haiku-20241022)
//   - ANTHROPIC_BASE_URL (default empty; the client then uses https://api.anthropic.com)
//   - ANTHROPIC_TIMEOUT (default 30s)
//
// Agent (reranking/agent call bounds):
//   - AGENT_TIMEOUT (default 30s)
//   - AGENT_MAX_ITERATIONS (default 3)
//
// Telemetry:
//   - OTEL_ENABLE (default false)
//   - OTEL_SERVICE_NAME (default codegraph)
//
// Production:
//   - CONTEXTD_PRODUCTION_MODE, CONTEXTD_LOCAL_MODE (default false)
func Load() (*Config, error) {
	cfg := &Config{
		Production: ProductionConfig{
			Enabled:               getEnvBool("CONTEXTD_PRODUCTION_MODE", false),
			LocalModeAcknowledged: getEnvBool("CONTEXTD_LOCAL_MODE", false),
			RequireAuthentication: getEnvBool("CONTEXTD_REQUIRE_AUTH", false),
			RequireTLS:            getEnvBool("CONTEXTD_REQUIRE_TLS", false),
			AllowNoIsolation:      getEnvBool("CONTEXTD_ALLOW_NO_ISOLATION", false),
		},
		Server: ServerConfig{
			Port:            getEnvInt("SERVER_PORT", 9090),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Observability: ObservabilityConfig{
			EnableTelemetry: getEnvBool("OTEL_ENABLE", false),
			ServiceName:     getEnvString("OTEL_SERVICE_NAME", "codegraph"),
			OTLPEndpoint:    getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			OTLPProtocol:    getEnvString("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			OTLPInsecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
		VectorDB: VectorDBConfig{
			Host:                     getEnvString("QDRANT_HOST", "localhost"),
			Port:                     getEnvInt("QDRANT_PORT", 6334),
			HTTPPort:                 getEnvInt("QDRANT_HTTP_PORT", 6333),
			VectorSize:               getEnvInt("VECTOR_SIZE", 1536),
			SparseVectorsEnabled:     getEnvBool("SPARSE_VECTORS_ENABLED", false),
			SeparateCollections:      getEnvBool("SEPARATE_COLLECTIONS", true),
			LegacyCodebaseCollection: getEnvBool("LEGACY_CODEBASE_COLLECTION", false),
		},
		Embeddings: EmbeddingsConfig{
			BaseURL: getEnvString("EMBEDDING_BASE_URL", "http://localhost:8080"),
			Model:   getEnvString("EMBEDDINGS_MODEL", "text-embedding-3-small"),
		},
		LLM: LLMConfig{
			APIKey:  Secret(getEnvString("ANTHROPIC_API_KEY", "")),
			Model:   getEnvString("ANTHROPIC_MODEL", ""),
			BaseURL: getEnvString("ANTHROPIC_BASE_URL", ""),
			Timeout: getEnvDuration("ANTHROPIC_TIMEOUT", 30*time.Second),
		},
		Agent: AgentConfig{
			Timeout:       getEnvDuration("AGENT_TIMEOUT", 30*time.Second),
			MaxIterations: getEnvInt("AGENT_MAX_ITERATIONS", 3),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
