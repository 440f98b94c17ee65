package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindgraph/infrastructure/config"
	"mindgraph/infrastructure/layout"
	"mindgraph/infrastructure/messaging/logging"
	"mindgraph/infrastructure/persistence/memory"
	"mindgraph/pkg/observability"
)

func TestInitializeContainer_InMemory(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()

	c, err := InitializeContainer(ctx, cfg)
	require.NoError(t, err)
	defer c.Shutdown(ctx)

	rec := httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mindgraph_http_requests_total")
}

func TestInitializeContainer_MetricsDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Metrics.Enabled = false

	c, err := InitializeContainer(ctx, cfg)
	require.NoError(t, err)
	defer c.Shutdown(ctx)

	rec := httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitializeContainer_BadKeybinds(t *testing.T) {
	cfg := config.Default()
	cfg.Keybinds = map[string]string{"flyAway": "F9"}

	_, err := InitializeContainer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestProvideLayoutEngine_Decorators(t *testing.T) {
	cfg := config.Default()
	cache := NewInMemoryCache(8, 0)
	collector := observability.NewCollector("test")
	tracer := observability.NewNoopTracer()
	logger := zap.NewNop()

	engine := ProvideLayoutEngine(cfg, cache, collector, tracer, logger)
	assert.IsType(t, &layout.CachedEngine{}, engine)

	cfg.Layout.CacheEnabled = false
	engine = ProvideLayoutEngine(cfg, cache, collector, tracer, logger)
	assert.IsType(t, &layout.BreakerEngine{}, engine)

	cfg.Layout.BreakerEnabled = false
	engine = ProvideLayoutEngine(cfg, cache, collector, tracer, logger)
	assert.IsType(t, &layout.TracedEngine{}, engine)
}

func TestProvideAdapters_DefaultDrivers(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	require.NoError(t, err)

	assert.IsType(t, &memory.MapRepository{}, ProvideMapRepository(cfg, awsCfg, zap.NewNop()))
	assert.IsType(t, &logging.Publisher{}, ProvideEventPublisher(cfg, awsCfg, zap.NewNop()))
	assert.Nil(t, ProvideCloudWatchMetrics(cfg, awsCfg, zap.NewNop()))
}

func TestContainer_ReloadKeybinds(t *testing.T) {
	ctx := context.Background()
	c, err := InitializeContainer(ctx, config.Default())
	require.NoError(t, err)
	defer c.Shutdown(ctx)

	next := config.Default()
	next.Keybinds = map[string]string{"undo": "Ctrl+u"}
	c.ReloadKeybinds(next)
	assert.Equal(t, "Ctrl+u", c.Keybinds.Bindings()["undo"])

	// invalid overrides leave the bindings alone
	next.Keybinds = map[string]string{"flyAway": "F9"}
	c.ReloadKeybinds(next)
	assert.Equal(t, "Ctrl+u", c.Keybinds.Bindings()["undo"])
}
