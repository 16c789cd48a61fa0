// Package config provides configuration loading for the retrieval engine.
//
// Configuration is loaded from environment variables with sensible
// defaults; there is no config-file layer. CLI wiring, HTTP transport,
// and auth are external collaborators this package does not address.
package config

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
)

// Config holds the complete configuration.
type Config struct {
	Production    ProductionConfig
	Server        ServerConfig
	Observability ObservabilityConfig
	VectorDB      VectorDBConfig
	Embeddings    EmbeddingsConfig
	LLM           LLMConfig
	Agent         AgentConfig
}

// ServerConfig holds HTTP server configuration for the tool-dispatch
// frontend (wired outside this package).
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// ObservabilityConfig holds OpenTelemetry/metrics configuration.
type ObservabilityConfig struct {
	EnableTelemetry   bool
	ServiceName       string
	OTLPEndpoint      string
	OTLPProtocol      string
	OTLPInsecure      bool
	OTLPTLSSkipVerify bool
}

// ProductionConfig holds production-mode safety gates.
type ProductionConfig struct {
	Enabled                  bool
	LocalModeAcknowledged    bool
	RequireAuthentication    bool
	AuthenticationConfigured bool
	RequireTLS               bool
	AllowNoIsolation         bool
}

// IsProduction returns true if running in production mode.
func (c *ProductionConfig) IsProduction() bool {
	return c.Enabled
}

// IsLocal returns true if local mode is acknowledged.
func (c *ProductionConfig) IsLocal() bool {
	return c.LocalModeAcknowledged
}

// Validate checks production configuration for security issues.
func (c *ProductionConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.AllowNoIsolation {
		return errors.New("SECURITY: NoIsolation mode cannot be enabled in production")
	}
	if c.RequireAuthentication && !c.AuthenticationConfigured {
		return errors.New("SECURITY: RequireAuthentication enabled but authentication not configured")
	}
	return nil
}

// VectorDBConfig holds the external vector database connection and the
// options spec.md §6 names as recognized configuration.
type VectorDBConfig struct {
	Host     string
	Port     int
	HTTPPort int

	// VectorSize is the dense embedding width (VECTOR_SIZE).
	VectorSize int

	// SparseVectorsEnabled toggles the named-sparse-vector path
	// (SPARSE_VECTORS_ENABLED).
	SparseVectorsEnabled bool

	// SeparateCollections routes chunks to typed collections instead of
	// the legacy union collection (SEPARATE_COLLECTIONS).
	SeparateCollections bool

	// LegacyCodebaseCollection also writes to {project}_codebase when
	// true (LEGACY_CODEBASE_COLLECTION).
	LegacyCodebaseCollection bool
}

// EmbeddingsConfig holds the embedding provider endpoint.
type EmbeddingsConfig struct {
	BaseURL string
	Model   string
}

// LLMConfig holds the completion provider used for context-pack
// reranking.
type LLMConfig struct {
	APIKey  Secret
	Model   string
	BaseURL string
	Timeout time.Duration
}

// AgentConfig bounds reranking/agent calls (AGENT_TIMEOUT,
// AGENT_MAX_ITERATIONS).
type AgentConfig struct {
	Timeout       time.Duration
	MaxIterations int
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}
	if err := validateHostname(c.VectorDB.Host); err != nil {
		return fmt.Errorf("invalid QDRANT_HOST: %w", err)
	}
	if c.VectorDB.VectorSize <= 0 {
		return fmt.Errorf("VECTOR_SIZE must be positive, got %d", c.VectorDB.VectorSize)
	}
	if c.Embeddings.BaseURL != "" {
		if err := validateURL(c.Embeddings.BaseURL); err != nil {
			return fmt.Errorf("invalid EMBEDDING_BASE_URL: %w", err)
		}
	}
	if c.LLM.BaseURL != "" {
		if err := validateURL(c.LLM.BaseURL); err != nil {
			return fmt.Errorf("invalid ANTHROPIC_BASE_URL: %w", err)
		}
	}
	if c.Agent.MaxIterations < 0 {
		return fmt.Errorf("AGENT_MAX_ITERATIONS must be non-negative, got %d", c.Agent.MaxIterations)
	}
	if err := c.Production.Validate(); err != nil {
		return fmt.Errorf("production config validation failed: %w", err)
	}
	return nil
}

// validateHostname checks if a hostname is safe (no command injection
// attempts). Uses positive validation with net.ParseIP for IP
// addresses and regexp for hostnames.
func validateHostname(host string) error {
	if host == "" {
		return nil
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	hostnameRegex := regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
	if !hostnameRegex.MatchString(host) {
		return fmt.Errorf("invalid hostname format: %s", host)
	}
	invalidChars := []string{";", "\n", "\r", "$", "`", "|", "&", "<", ">", "(", ")"}
	for _, char := range invalidChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("invalid hostname: contains forbidden character %q", char)
		}
	}
	return nil
}

// validateURL checks if a URL uses allowed schemes (http/https only).
func validateURL(urlStr string) error {
	if !strings.HasPrefix(urlStr, "http://") && !strings.HasPrefix(urlStr, "https://") {
		return fmt.Errorf("URL must use http:// or https:// scheme, got: %s", urlStr)
	}
	return nil
}
