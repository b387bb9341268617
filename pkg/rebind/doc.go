// Package rebind re-applies external configuration to live, named,
// in-process components without restarting them.
//
// A Registry tracks components that were constructed from external
// configuration. When a change signal arrives, the Rebinder walks the
// registry, skips components whose lifecycle is owned by a
// refresh-managed scope, and for each remaining component re-binds
// current configuration values into the live instance in place, then
// re-runs its initialization phase. Other holders of the instance
// reference observe the update immediately.
//
// Typical wiring:
//
//	c := container.New()
//	binder := rebind.NewViperBinder(v, validator.Global())
//	registry := rebind.NewRegistry(c)
//	c.AddPostInitHook(registry.Hook())
//
//	rebinder := rebind.New(registry, c, binder,
//	    rebind.WithScopeRegistry(c))
//
//	watcher := config.NewWatcher(v)
//	rebinder.RegisterWithWatcher(watcher, "rebinder")
//	watcher.Start()
package rebind
