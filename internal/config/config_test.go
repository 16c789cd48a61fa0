package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	originalEnv := saveEnv()
	defer restoreEnv(originalEnv)

	tests := []struct {
		name     string
		env      map[string]string
		validate func(*testing.T, *Config)
	}{
		{
			name: "default values",
			env:  map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 9090 {
					t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
				}
				if cfg.Server.ShutdownTimeout != 10*time.Second {
					t.Errorf("Server.ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
				}
				if cfg.Observability.EnableTelemetry {
					t.Error("Observability.EnableTelemetry = true, want false (disabled by default)")
				}
				if cfg.Observability.ServiceName != "codegraph" {
					t.Errorf("Observability.ServiceName = %q, want codegraph", cfg.Observability.ServiceName)
				}
				if cfg.VectorDB.Host != "localhost" {
					t.Errorf("VectorDB.Host = %q, want localhost", cfg.VectorDB.Host)
				}
				if cfg.VectorDB.VectorSize != 1536 {
					t.Errorf("VectorDB.VectorSize = %d, want 1536", cfg.VectorDB.VectorSize)
				}
				if cfg.VectorDB.SparseVectorsEnabled {
					t.Error("VectorDB.SparseVectorsEnabled = true, want false")
				}
				if !cfg.VectorDB.SeparateCollections {
					t.Error("VectorDB.SeparateCollections = false, want true")
				}
				if cfg.VectorDB.LegacyCodebaseCollection {
					t.Error("VectorDB.LegacyCodebaseCollection = true, want false")
				}
				if cfg.Agent.Timeout != 30*time.Second {
					t.Errorf("Agent.Timeout = %v, want 30s", cfg.Agent.Timeout)
				}
				if cfg.Agent.MaxIterations != 3 {
					t.Errorf("Agent.MaxIterations = %d, want 3", cfg.Agent.MaxIterations)
				}
			},
		},
		{
			name: "environment variable overrides",
			env: map[string]string{
				"SERVER_PORT":             "8080",
				"SERVER_SHUTDOWN_TIMEOUT": "5s",
				"OTEL_ENABLE":             "true",
				"OTEL_SERVICE_NAME":       "test-service",
				"VECTOR_SIZE":             "768",
				"SPARSE_VECTORS_ENABLED":  "true",
				"AGENT_MAX_ITERATIONS":    "5",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 8080 {
					t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
				}
				if cfg.Server.ShutdownTimeout != 5*time.Second {
					t.Errorf("Server.ShutdownTimeout = %v, want 5s", cfg.Server.ShutdownTimeout)
				}
				if !cfg.Observability.EnableTelemetry {
					t.Error("Observability.EnableTelemetry = false, want true")
				}
				if cfg.Observability.ServiceName != "test-service" {
					t.Errorf("Observability.ServiceName = %q, want test-service", cfg.Observability.ServiceName)
				}
				if cfg.VectorDB.VectorSize != 768 {
					t.Errorf("VectorDB.VectorSize = %d, want 768", cfg.VectorDB.VectorSize)
				}
				if !cfg.VectorDB.SparseVectorsEnabled {
					t.Error("VectorDB.SparseVectorsEnabled = false, want true")
				}
				if cfg.Agent.MaxIterations != 5 {
					t.Errorf("Agent.MaxIterations = %d, want 5", cfg.Agent.MaxIterations)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v, want nil", err)
			}

			tt.validate(t, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: &Config{
				Server:        ServerConfig{Port: 8080, ShutdownTimeout: 10 * time.Second},
				Observability: ObservabilityConfig{EnableTelemetry: true, ServiceName: "codegraph"},
				VectorDB:      VectorDBConfig{Host: "localhost", VectorSize: 1536},
			},
			wantErr: false,
		},
		{
			name: "invalid port - too low",
			cfg: &Config{
				Server:   ServerConfig{Port: 0, ShutdownTimeout: 10 * time.Second},
				VectorDB: VectorDBConfig{Host: "localhost", VectorSize: 1536},
			},
			wantErr: true,
		},
		{
			name: "invalid port - too high",
			cfg: &Config{
				Server:   ServerConfig{Port: 70000, ShutdownTimeout: 10 * time.Second},
				VectorDB: VectorDBConfig{Host: "localhost", VectorSize: 1536},
			},
			wantErr: true,
		},
		{
			name: "invalid shutdown timeout",
			cfg: &Config{
				Server:   ServerConfig{Port: 8080, ShutdownTimeout: 0},
				VectorDB: VectorDBConfig{Host: "localhost", VectorSize: 1536},
			},
			wantErr: true,
		},
		{
			name: "empty service name with telemetry enabled",
			cfg: &Config{
				Server:        ServerConfig{Port: 8080, ShutdownTimeout: 10 * time.Second},
				Observability: ObservabilityConfig{EnableTelemetry: true, ServiceName: ""},
				VectorDB:      VectorDBConfig{Host: "localhost", VectorSize: 1536},
			},
			wantErr: true,
		},
		{
			name: "non-positive vector size",
			cfg: &Config{
				Server:   ServerConfig{Port: 8080, ShutdownTimeout: 10 * time.Second},
				VectorDB: VectorDBConfig{Host: "localhost", VectorSize: 0},
			},
			wantErr: true,
		},
		{
			name: "negative agent max iterations",
			cfg: &Config{
				Server:   ServerConfig{Port: 8080, ShutdownTimeout: 10 * time.Second},
				VectorDB: VectorDBConfig{Host: "localhost", VectorSize: 1536},
				Agent:    AgentConfig{MaxIterations: -1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func saveEnv() map[string]string {
	env := make(map[string]string)
	for _, e := range os.Environ() {
		env[e] = os.Getenv(e)
	}
	return env
}

func restoreEnv(env map[string]string) {
	os.Clearenv()
	for k, v := range env {
		os.Setenv(k, v)
	}
}
