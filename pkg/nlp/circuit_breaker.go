package nlp

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/biograph/pkg/types"
)

// CircuitBreakerConfig holds configuration for circuit breaking around the
// completion provider.
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// CircuitBreakerClient wraps a Client with circuit breaking logic.
type CircuitBreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewCircuitBreakerClient creates a new circuit breaker client.
func NewCircuitBreakerClient(client Client, cfg CircuitBreakerConfig, logger *slog.Logger, name string) *CircuitBreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReadyToTripRatio <= 0 {
		cfg.ReadyToTripRatio = 0.6
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Warn("circuit breaker tripped",
					"name", name, "from", from.String(), "to", to.String())
			}
		},
	}

	return &CircuitBreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

// Chat implements Client.
func (c *CircuitBreakerClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Chat(ctx, messages)
	})
	if err != nil {
		return nil, err
	}
	return resp.(*types.Response), nil
}

// Close implements Client.
func (c *CircuitBreakerClient) Close() error {
	return c.client.Close()
}

var _ Client = (*CircuitBreakerClient)(nil)
