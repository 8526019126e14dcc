package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"videoengine/internal/config"
	"videoengine/internal/deps"
	"videoengine/internal/engine"
	"videoengine/internal/history"
	"videoengine/internal/logging"
	"videoengine/internal/media/ffprobe"
	"videoengine/internal/metrics"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) prober(cfg *config.Config) *ffprobe.Client {
	return ffprobe.NewClient(deps.ResolveFFprobe(cfg.FFmpegBinary(), cfg.FFprobeBinary()), nil)
}

// openHistory returns nil when the ledger is disabled.
func (c *commandContext) openHistory(cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// newEngine builds an engine wired to the configured binaries, metrics, and
// history ledger. The returned cleanup closes the ledger.
func (c *commandContext) newEngine() (*engine.Engine, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	store, err := c.openHistory(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithProber(c.prober(cfg)),
		engine.WithObserver(metrics.NewObserver()),
	}
	if store != nil {
		opts = append(opts, engine.WithRecorder(store))
	}
	cleanup := func() {
		if store != nil {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close history", logging.Error(err))
			}
		}
	}
	return engine.New(cfg, opts...), cleanup, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationSkipConfig] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
