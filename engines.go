package main

import (
	"context"
	"sync"

	"github.com/ryanmoran/dockertask/internal"
	"github.com/ryanmoran/dockertask/internal/dispatch"
)

// engineCache opens one engine per distinct daemon configuration and
// registers each for cleanup.
type engineCache struct {
	connect connector
	base    internal.DaemonConfig
	cleanup *internal.CleanupManager

	mu      sync.Mutex
	engines map[internal.DaemonConfig]dispatch.Engine
}

func newEngineCache(connect connector, base internal.DaemonConfig, cleanup *internal.CleanupManager) *engineCache {
	return &engineCache{
		connect: connect,
		base:    base,
		cleanup: cleanup,
		engines: map[internal.DaemonConfig]dispatch.Engine{},
	}
}

func (c *engineCache) get(ctx context.Context, config internal.DaemonConfig) (dispatch.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if engine, ok := c.engines[config]; ok {
		return engine, nil
	}

	engine, release, err := c.connect(ctx, config)
	if err != nil {
		return nil, err
	}
	c.cleanup.Add("docker-client "+config.Host, release)
	c.engines[config] = engine

	return engine, nil
}

// resolve applies a task's daemon overrides to the configured daemon.
func (c *engineCache) resolve(ctx context.Context, daemon internal.Options) (dispatch.Engine, error) {
	config, err := c.base.Override(daemon)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, config)
}
