package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeRetrier runs the automatic retry sweep.
	ServiceModeRetrier ServiceMode = "retrier"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeRetrier}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	parts := strings.Split(servicesStr, ",")
	for _, part := range parts {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeRetrier:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, retrier)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// IngestConfig contains ingestion orchestration configuration.
type IngestConfig struct {
	// ExecuteTimeout bounds a single downstream execution.
	ExecuteTimeout time.Duration `env:"INGEST_EXECUTE_TIMEOUT" envDefault:"2m"`
}

// Sanitize applies guardrails to ingestion configuration values.
func (c *IngestConfig) Sanitize() {
	if c.ExecuteTimeout < 10*time.Second {
		c.ExecuteTimeout = 10 * time.Second
	}
}

// RetrierConfig contains retry sweep configuration.
type RetrierConfig struct {
	// Interval is the sweep tick interval.
	Interval time.Duration `env:"RETRIER_INTERVAL" envDefault:"60s"`

	// Pacing is the delay inserted between consecutive dispatches within a sweep.
	Pacing time.Duration `env:"RETRIER_PACING" envDefault:"1s"`

	// BatchLimit is the maximum number of failed ingestions considered per sweep.
	BatchLimit int `env:"RETRIER_BATCH_LIMIT" envDefault:"200"`
}

// Sanitize applies guardrails to retrier configuration values.
func (c *RetrierConfig) Sanitize() {
	// Enforce minimum intervals to prevent excessive database load
	if c.Interval < time.Second {
		c.Interval = time.Second
	}
	if c.Pacing < 0 {
		c.Pacing = 0
	}
	if c.BatchLimit < 1 {
		c.BatchLimit = 1
	}
	if c.BatchLimit > 10000 {
		c.BatchLimit = 10000
	}
}

// ExecutorConfig contains simulated downstream executor configuration.
type ExecutorConfig struct {
	// MinLatency is the lower bound of simulated execution latency.
	MinLatency time.Duration `env:"EXECUTOR_MIN_LATENCY" envDefault:"1s"`

	// MaxLatency is the upper bound of simulated execution latency.
	MaxLatency time.Duration `env:"EXECUTOR_MAX_LATENCY" envDefault:"5s"`

	// SuccessRate is the probability of a simulated execution succeeding (0-1).
	SuccessRate float64 `env:"EXECUTOR_SUCCESS_RATE" envDefault:"0.8"`
}

// Sanitize applies guardrails to executor configuration values.
func (c *ExecutorConfig) Sanitize() {
	if c.MinLatency < 0 {
		c.MinLatency = 0
	}
	if c.MaxLatency < c.MinLatency {
		c.MaxLatency = c.MinLatency
	}
	if c.SuccessRate < 0 {
		c.SuccessRate = 0
	}
	if c.SuccessRate > 1 {
		c.SuccessRate = 1
	}
}
