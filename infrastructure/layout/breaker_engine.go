package layout

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"mindgraph/application/ports"
	"mindgraph/domain/core/valueobjects"
)

// BreakerConfig holds configuration for the layout circuit breaker
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used by the binaries
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "layout",
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          20 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// BreakerEngine stops calling a failing engine for a while. While the
// breaker is open every call fails fast and the coordinator falls back to
// the existing positions.
type BreakerEngine struct {
	next   ports.LayoutEngine
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewBreakerEngine wraps next with a circuit breaker
func NewBreakerEngine(next ports.LayoutEngine, cfg BreakerConfig, logger *zap.Logger) *BreakerEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Layout circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A cancelled caller says nothing about the engine's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerEngine{next: next, cb: cb, logger: logger}
}

// State reports the breaker state
func (e *BreakerEngine) State() gobreaker.State {
	return e.cb.State()
}

// Layout implements ports.LayoutEngine
func (e *BreakerEngine) Layout(ctx context.Context, g ports.LayoutGraph) (map[valueobjects.NodeID]valueobjects.Position, error) {
	res, err := e.cb.Execute(func() (interface{}, error) {
		return e.next.Layout(ctx, g)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			e.logger.Debug("Layout rejected by circuit breaker", zap.Error(err))
		}
		return nil, err
	}
	return res.(map[valueobjects.NodeID]valueobjects.Position), nil
}
