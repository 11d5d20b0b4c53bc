// Package extractor pulls attack observations from honeypot sensors and
// turns them into aggregated IOC records for the ingestion jobs.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/regulartim/GreedyBear/internal/config"
)

// SensorClient wraps an HTTP client with circuit breaker and retry logic
// for sensor API calls. Sensors live on flaky links, so transient failures
// are retried and a persistently dead sensor trips the breaker instead of
// stalling every extraction run.
type SensorClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	config  SensorClientConfig
}

// SensorClientConfig holds configuration for the resilient sensor client.
type SensorClientConfig struct {
	MaxFailures     uint32
	CircuitTimeout  time.Duration
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultSensorClientConfig returns default configuration values,
// overridable from the environment.
func DefaultSensorClientConfig() SensorClientConfig {
	return SensorClientConfig{
		MaxFailures:     uint32(getEnvInt("SENSOR_CIRCUIT_BREAKER_MAX_FAILURES", 5)),
		CircuitTimeout:  config.GetEnvDuration("SENSOR_CIRCUIT_BREAKER_TIMEOUT", 30*time.Second),
		MaxRetries:      getEnvInt("SENSOR_RETRY_MAX_ATTEMPTS", 3),
		InitialInterval: config.GetEnvDuration("SENSOR_RETRY_INITIAL_INTERVAL", 500*time.Millisecond),
		MaxInterval:     config.GetEnvDuration("SENSOR_RETRY_MAX_INTERVAL", 5*time.Second),
	}
}

// NewSensorClient creates a new resilient sensor API client.
func NewSensorClient(timeout time.Duration, cfg SensorClientConfig) *SensorClient {
	settings := gobreaker.Settings{
		Name:        "sensor-api",
		MaxRequests: 1,
		Timeout:     cfg.CircuitTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	}

	return &SensorClient{
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		config:  cfg,
	}
}

// GetJSON fetches url and decodes the response body into out, going through
// the circuit breaker and retrying transient failures with exponential
// backoff.
func (c *SensorClient) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.breaker.Execute(func() (any, error) {
		return c.getWithRetry(ctx, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return fmt.Errorf("circuit breaker is open: %w", err)
		}
		return err
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return fmt.Errorf("decoding sensor response from %s: %w", url, err)
	}
	return nil
}

func (c *SensorClient) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.config.InitialInterval
	expBackoff.MaxInterval = c.config.MaxInterval
	expBackoff.MaxElapsedTime = 0 // bounded by max retries, not elapsed time

	var retryBackoff backoff.BackOff = backoff.WithMaxRetries(expBackoff, uint64(c.config.MaxRetries))
	retryBackoff = backoff.WithContext(retryBackoff, ctx)

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if shouldRetry(err, nil) {
				return err
			}
			return backoff.Permanent(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
			if shouldRetry(nil, resp) {
				return err
			}
			return backoff.Permanent(err)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	if err := backoff.Retry(operation, retryBackoff); err != nil {
		return nil, fmt.Errorf("sensor request to %s failed after retries: %w", url, err)
	}
	return body, nil
}

// getEnvInt reads an integer from an environment variable or returns the
// default.
func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// shouldRetry determines if an error or response should trigger a retry.
func shouldRetry(err error, resp *http.Response) bool {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		return strings.Contains(err.Error(), "connection refused") ||
			strings.Contains(err.Error(), "connection reset") ||
			strings.Contains(err.Error(), "EOF")
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}
