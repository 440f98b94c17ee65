package di

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"mindgraph/application/commands/bus"
	"mindgraph/application/keybinds"
	querybus "mindgraph/application/queries/bus"
	"mindgraph/application/services"
	"mindgraph/infrastructure/config"
	"mindgraph/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Collector      *observability.Collector
	TracerShutdown TracerShutdown
	Cache          *InMemoryCache
	Store          *services.GraphStore
	Editor         *services.EditorService
	Documents      *services.DocumentService
	Keybinds       *keybinds.Registry
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	Router         http.Handler
}

// Shutdown releases background resources
func (c *Container) Shutdown(ctx context.Context) error {
	c.Cache.Stop()
	err := c.TracerShutdown(ctx)
	_ = c.Logger.Sync()
	return err
}

// ReloadKeybinds applies the keybind overrides of cfg. Invalid overrides
// are logged and the current bindings stay.
func (c *Container) ReloadKeybinds(cfg *config.Config) {
	if err := c.Keybinds.Load(cfg.Keybinds); err != nil {
		c.Logger.Warn("Ignoring keybind overrides", zap.Error(err))
		return
	}
	c.Logger.Info("Keybinds reloaded", zap.Int("overrides", len(cfg.Keybinds)))
}
