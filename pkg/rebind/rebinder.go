package rebind

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kart-io/logger"
	"github.com/spf13/viper"

	"github.com/kart-io/rebind/pkg/config"
)

// Factory is the component lookup capability the rebinder consumes.
// The container satisfies this interface.
type Factory interface {
	// Contains reports whether a live component or definition exists.
	Contains(name string) bool

	// Get returns the live component instance for name.
	Get(name string) (interface{}, error)

	// Initialize re-runs the initialization phase on an instance so that
	// initialization-time side effects fire against the new configuration.
	Initialize(instance interface{}, name string) error
}

// Rebinder coordinates re-application of configuration to registered
// components. Rebinding mutates instances in place: any holder of a
// component reference observes updated fields immediately.
type Rebinder struct {
	registry   *Registry
	factory    Factory
	binder     Binder
	classifier *ScopeClassifier

	// nameLocks serializes concurrent rebinds of the same component.
	nameMu    sync.Mutex
	nameLocks map[string]*sync.Mutex
}

// Option configures a Rebinder.
type Option func(*Rebinder)

// WithScopeRegistry attaches a scope registry so that components owned
// by a managed-refresh scope are skipped. Without it, everything is
// rebindable.
func WithScopeRegistry(scopes ScopeRegistry) Option {
	return func(r *Rebinder) {
		r.classifier = NewScopeClassifier(scopes)
	}
}

// New creates a Rebinder over the given registry, factory, and binder.
func New(registry *Registry, factory Factory, binder Binder, opts ...Option) *Rebinder {
	r := &Rebinder{
		registry:   registry,
		factory:    factory,
		binder:     binder,
		classifier: NewScopeClassifier(nil),
		nameLocks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RebindAll rebinds every registered component. Individual failures do
// not stop the pass; they are aggregated into the returned error so one
// bad component cannot block rebinding of healthy ones.
func (r *Rebinder) RebindAll() error {
	names := r.registry.Names()

	var errs []error
	rebound := 0
	for _, name := range names {
		ok, err := r.Rebind(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if ok {
			rebound++
		}
	}

	logger.Infow("Rebind pass finished",
		"tracked", len(names), "rebound", rebound, "failed", len(errs))
	return errors.Join(errs...)
}

// Rebind rebinds a single component by name. It is a benign no-op,
// returning (false, nil), when the name is not registered, not resolvable to a
// live component, or excluded because a managed-refresh scope owns its
// lifecycle. Binding and re-initialization errors propagate.
func (r *Rebinder) Rebind(name string) (bool, error) {
	rec, ok := r.registry.lookup(name)
	if !ok {
		return false, nil
	}

	lock := r.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	if !r.factory.Contains(name) {
		return false, nil
	}
	if r.classifier.IsExcluded(name) {
		logger.Debugw("Rebind skipped: managed-refresh scope owns component", "component", name)
		return false, nil
	}

	instance, err := r.factory.Get(name)
	if err != nil {
		return false, fmt.Errorf("resolve component: %w", err)
	}
	if instance == nil {
		return false, nil
	}

	if err := r.binder.Bind(instance, rec.configKey); err != nil {
		return false, err
	}
	if err := r.factory.Initialize(instance, name); err != nil {
		return false, fmt.Errorf("reinitialize component: %w", err)
	}

	r.registry.replaceInstance(name, instance)
	logger.Infow("Component rebound", "component", name, "config_key", rec.configKey)
	return true, nil
}

// Names returns a defensive snapshot of the registered component names.
func (r *Rebinder) Names() []string {
	return r.registry.Names()
}

// IsRegistered reports whether a component is tracked for rebinding.
func (r *Rebinder) IsRegistered(name string) bool {
	_, ok := r.registry.lookup(name)
	return ok
}

// lockFor returns the per-name mutex, creating it on first use.
func (r *Rebinder) lockFor(name string) *sync.Mutex {
	r.nameMu.Lock()
	defer r.nameMu.Unlock()

	lock, ok := r.nameLocks[name]
	if !ok {
		lock = &sync.Mutex{}
		r.nameLocks[name] = lock
	}
	return lock
}

// RegisterWithWatcher subscribes the rebinder to a configuration watcher
// so that every change signal triggers a full rebind pass.
func (r *Rebinder) RegisterWithWatcher(watcher *config.Watcher, handlerID string) {
	watcher.Subscribe(handlerID, func(*viper.Viper) error {
		return r.RebindAll()
	})
}
