// Package app wires the rebind daemon: the component container, the
// rebind coordinator, configuration change sources, and the admin server.
package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/kart-io/logger"
	"github.com/spf13/viper"

	"github.com/kart-io/rebind/pkg/admin"
	"github.com/kart-io/rebind/pkg/app"
	"github.com/kart-io/rebind/pkg/config"
	"github.com/kart-io/rebind/pkg/container"
	"github.com/kart-io/rebind/pkg/rebind"
)

const (
	appName        = "rebindd"
	appDescription = `Rebind daemon

Tracks configuration-backed components and re-applies external
configuration to them in place when it changes, without restarting
the process or recreating the components.

This daemon provides:
  - A component container with post-init registration hooks
  - File-based configuration watching (viper/fsnotify)
  - An optional etcd-backed remote configuration source
  - Admin HTTP endpoints to trigger and inspect rebinds

Examples:
  # Start with default configuration
  rebindd

  # Use a config file
  rebindd -c /etc/rebindd/rebindd.yaml

  # Enable the etcd configuration source
  rebindd --etcd.enabled --etcd.endpoints=127.0.0.1:2379

  # Enable debug logging
  rebindd --log.level=DEBUG

Configuration:
  Configuration can be provided via:
  - Command-line flags (highest priority)
  - Environment variables (prefix: REBINDD_)
  - Configuration file (YAML)
  - Default values (lowest priority)`
)

// shutdownTimeout bounds graceful admin server shutdown.
const shutdownTimeout = 10 * time.Second

// NewApp creates the daemon application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithShortDescription("Live configuration rebind daemon"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run runs the daemon with the given options.
func Run(opts *Options) error {
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Flush() }()

	logger.Infow("Starting rebind daemon",
		"app", appName,
		"version", app.GetVersion(),
		"admin_addr", opts.Server.Addr,
		"etcd_enabled", opts.Etcd.Enabled,
	)

	v := viper.GetViper()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Component container with a managed refresh scope and the rebind
	// registration hook. Components defined with a config key are picked
	// up for rebinding as they are constructed.
	c := container.New()
	c.RegisterScope("refresh", container.NewRefreshScope())

	registry := rebind.NewRegistry(c)
	c.AddPostInitHook(registry.Hook())

	rebinder := rebind.New(registry, c, rebind.NewViperBinder(v, nil),
		rebind.WithScopeRegistry(c))

	// The daemon's own logger options are a rebindable component: changing
	// the log section re-binds the options and Init re-creates the global
	// logger with the new level and format.
	if err := c.Define("logger", container.Definition{
		ConfigKey: "log",
		New: func(*container.Container) (interface{}, error) {
			return opts.Log, nil
		},
	}); err != nil {
		return err
	}
	if _, err := c.Get("logger"); err != nil {
		return fmt.Errorf("failed to register logger component: %w", err)
	}

	// Change notification: file watching always, etcd when enabled.
	watcher := config.NewWatcher(v)
	rebinder.RegisterWithWatcher(watcher, "rebinder")
	watcher.Start()
	defer watcher.Stop()

	if opts.Etcd.Enabled {
		source, err := config.NewEtcdSource(opts.Etcd, v, watcher)
		if err != nil {
			return fmt.Errorf("failed to create etcd config source: %w", err)
		}
		if err := source.Start(ctx); err != nil {
			return fmt.Errorf("failed to start etcd config source: %w", err)
		}
		defer func() { _ = source.Close() }()
	}

	adminSrv := admin.NewServer(opts.Server, rebinder)
	if err := adminSrv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start admin server: %w", err)
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-adminSrv.Errors():
		return fmt.Errorf("admin server failed: %w", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return adminSrv.Stop(stopCtx)
}
