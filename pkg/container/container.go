// Package container provides a minimal named-component container.
//
// Components are declared with Define and constructed lazily on first Get.
// Each definition may name a config key (the section of external
// configuration bound into the instance) and a scope (the lifecycle owner
// of the instance). Singleton components are cached by the container
// itself; scoped components are delegated to the registered scope.
//
// The container deliberately does no reflection-based wiring. Factories
// receive the container and pull their collaborators explicitly.
package container

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kart-io/logger"
)

// Definition describes how a named component is built and managed.
type Definition struct {
	// New constructs the component instance.
	New func(c *Container) (interface{}, error)

	// ConfigKey names the external configuration section bound into the
	// instance. Empty means the component carries no external config.
	ConfigKey string

	// Scope names the scope that owns the instance lifecycle.
	// Empty means container-managed singleton.
	Scope string
}

// Initializer is implemented by components with an initialization phase.
// Initialize re-runs Init, so implementations must be idempotent.
type Initializer interface {
	Init() error
}

// PostInitHook runs after a component is constructed and initialized.
// The rebind registry attaches itself through this hook so that
// config-carrying components are tracked automatically.
type PostInitHook func(name string, instance interface{})

// Container holds component definitions, singleton instances, and the
// scope registry.
type Container struct {
	mu          sync.RWMutex
	definitions map[string]Definition
	instances   map[string]interface{}
	scopes      map[string]Scope
	hooks       []PostInitHook
}

// New creates an empty container.
func New() *Container {
	return &Container{
		definitions: make(map[string]Definition),
		instances:   make(map[string]interface{}),
		scopes:      make(map[string]Scope),
	}
}

// Define registers a component definition under the given name.
// Redefining a name replaces the previous definition but not an already
// constructed singleton.
func (c *Container) Define(name string, def Definition) error {
	if name == "" {
		return fmt.Errorf("container: component name cannot be empty")
	}
	if def.New == nil {
		return fmt.Errorf("container: definition for %q has no factory", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.definitions[name] = def
	return nil
}

// AddPostInitHook registers a hook invoked after each component is
// constructed and initialized.
func (c *Container) AddPostInitHook(h PostInitHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
}

// Contains reports whether a definition or live instance exists for name.
func (c *Container) Contains(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.definitions[name]; ok {
		return true
	}
	_, ok := c.instances[name]
	return ok
}

// Get returns the component instance for name, constructing it on first
// use. Scoped components are resolved through their scope.
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.RLock()
	def, defined := c.definitions[name]
	instance, cached := c.instances[name]
	c.mu.RUnlock()

	if !defined {
		if cached {
			return instance, nil
		}
		return nil, fmt.Errorf("container: component %q is not defined", name)
	}

	if def.Scope != "" {
		scope, ok := c.lookupScope(def.Scope)
		if !ok {
			return nil, fmt.Errorf("container: component %q declares unregistered scope %q", name, def.Scope)
		}
		return scope.Get(name, func() (interface{}, error) {
			return c.construct(name, def)
		})
	}

	if cached {
		return instance, nil
	}

	built, err := c.construct(name, def)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Another goroutine may have raced the construction; first one wins.
	if existing, ok := c.instances[name]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.instances[name] = built
	c.mu.Unlock()

	return built, nil
}

// construct builds, initializes, and announces a new instance.
func (c *Container) construct(name string, def Definition) (interface{}, error) {
	instance, err := def.New(c)
	if err != nil {
		return nil, fmt.Errorf("container: constructing %q: %w", name, err)
	}

	if err := c.Initialize(instance, name); err != nil {
		return nil, err
	}

	c.mu.RLock()
	hooks := make([]PostInitHook, len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.RUnlock()

	for _, h := range hooks {
		h(name, instance)
	}

	return instance, nil
}

// Initialize runs the initialization phase for an instance. Components
// implementing Initializer get their Init method called; others are
// passed through untouched.
func (c *Container) Initialize(instance interface{}, name string) error {
	init, ok := instance.(Initializer)
	if !ok {
		return nil
	}
	if err := init.Init(); err != nil {
		return fmt.Errorf("container: initializing %q: %w", name, err)
	}
	logger.Debugw("Component initialized", "component", name)
	return nil
}

// ConfigKeyFor returns the config key declared for name, if any.
func (c *Container) ConfigKeyFor(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.definitions[name]
	if !ok || def.ConfigKey == "" {
		return "", false
	}
	return def.ConfigKey, true
}

// DefinitionScope returns the scope name declared for name.
// The second return is false when no definition exists.
func (c *Container) DefinitionScope(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.definitions[name]
	if !ok {
		return "", false
	}
	return def.Scope, true
}

// Names returns a sorted snapshot of all defined component names.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.definitions))
	for name := range c.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
