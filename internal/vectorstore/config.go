package vectorstore

import (
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

// Config holds configuration for the Qdrant gRPC client used by the
// vector store facade.
type Config struct {
	// Host is the Qdrant server hostname or IP address.
	Host string

	// Port is the Qdrant gRPC port (not the HTTP REST port).
	Port int

	// VectorSize is the dense embedding width; MUST match the configured
	// embedding provider's Dimension().
	VectorSize uint64

	// Distance is the similarity metric for dense vectors.
	Distance qdrant.Distance

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool

	// MaxRetries bounds the retry loop for transient RPC failures.
	MaxRetries int

	// RetryBackoff is the initial backoff; doubles on each retry.
	RetryBackoff time.Duration

	// MaxMessageSize caps gRPC message size in bytes.
	MaxMessageSize int

	// CircuitBreakerThreshold is the failure count before the circuit
	// opens for an operation name.
	CircuitBreakerThreshold int

	// CircuitBreakerCooldown is how long the circuit stays open.
	CircuitBreakerCooldown time.Duration
}

// ApplyDefaults fills zero-valued fields with production defaults.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Distance == 0 {
		c.Distance = qdrant.Distance_Cosine
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = time.Second
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 50 * 1024 * 1024
	}
	if c.CircuitBreakerThreshold == 0 {
		c.CircuitBreakerThreshold = 5
	}
	if c.CircuitBreakerCooldown == 0 {
		c.CircuitBreakerCooldown = 30 * time.Second
	}
}

// Validate checks that required fields are set.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, c.Port)
	}
	if c.VectorSize == 0 {
		return fmt.Errorf("%w: vector size required", ErrInvalidConfig)
	}
	return nil
}

const (
	// MaxDenseUpsertBatch is the hard ceiling on dense points per Upsert call.
	MaxDenseUpsertBatch = 100

	// MaxSparseUpsertBatch is the hard ceiling on sparse points per UpsertSparse call.
	MaxSparseUpsertBatch = 50

	// ClearPageSize is the page size used by Clear's scroll-delete loop.
	ClearPageSize = 1000

	// AggregateStatsScrollLimit bounds the scroll used by AggregateStats.
	AggregateStatsScrollLimit = 5000

	// RRFConstant is the k constant in the Reciprocal Rank Fusion formula.
	RRFConstant = 60

	// DenseVectorName is the named-vector key used when a collection has
	// both dense and sparse vectors.
	DenseVectorName = "dense"

	// SparseVectorName is the named sparse-vector key.
	SparseVectorName = "sparse"
)
