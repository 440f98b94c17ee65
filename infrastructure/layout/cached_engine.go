package layout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"mindgraph/application/ports"
	"mindgraph/domain/core/valueobjects"
)

// CacheMetrics counts cache lookups
type CacheMetrics interface {
	CacheHit()
	CacheMiss()
}

// CachedEngine memoizes layout results by input graph. Identical graphs
// (same nodes, sizes, edges, spacing and direction) reuse the previous
// result until the entry expires.
type CachedEngine struct {
	next    ports.LayoutEngine
	cache   ports.Cache
	ttl     time.Duration
	metrics CacheMetrics
	logger  *zap.Logger
}

func NewCachedEngine(next ports.LayoutEngine, cache ports.Cache, ttl time.Duration, metrics CacheMetrics, logger *zap.Logger) *CachedEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEngine{next: next, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

// Layout implements ports.LayoutEngine
func (e *CachedEngine) Layout(ctx context.Context, g ports.LayoutGraph) (map[valueobjects.NodeID]valueobjects.Position, error) {
	key, err := cacheKey(g)
	if err != nil {
		return e.next.Layout(ctx, g)
	}

	if v, ok := e.cache.Get(ctx, key); ok {
		if cached, ok := v.(map[valueobjects.NodeID]valueobjects.Position); ok {
			if e.metrics != nil {
				e.metrics.CacheHit()
			}
			return copyPositions(cached), nil
		}
	}
	if e.metrics != nil {
		e.metrics.CacheMiss()
	}

	out, err := e.next.Layout(ctx, g)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Set(ctx, key, copyPositions(out), e.ttl); err != nil {
		e.logger.Warn("Failed to cache layout result", zap.Error(err))
	}
	return out, nil
}

func cacheKey(g ports.LayoutGraph) (string, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return "layout:" + hex.EncodeToString(sum[:]), nil
}

func copyPositions(in map[valueobjects.NodeID]valueobjects.Position) map[valueobjects.NodeID]valueobjects.Position {
	out := make(map[valueobjects.NodeID]valueobjects.Position, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
