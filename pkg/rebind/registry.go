package rebind

import (
	"sort"
	"sync"

	"github.com/kart-io/logger"
)

// Configurable is the opt-in capability tag for components bound to
// external configuration. ConfigKey names the configuration section the
// component's fields are populated from.
type Configurable interface {
	ConfigKey() string
}

// Metadata supplies config keys for components whose type does not
// implement Configurable, typically from factory definitions.
// The container satisfies this interface.
type Metadata interface {
	ConfigKeyFor(name string) (string, bool)
}

// record tracks one registered component.
type record struct {
	instance  interface{}
	configKey string
}

// Registry tracks named components that carry external configuration.
// Entries live for the process lifetime; re-registering a name replaces
// its instance (latest registration wins).
type Registry struct {
	mu       sync.RWMutex
	records  map[string]*record
	metadata Metadata
}

// NewRegistry creates a registry. metadata may be nil, in which case only
// components implementing Configurable are accepted.
func NewRegistry(metadata Metadata) *Registry {
	return &Registry{
		records:  make(map[string]*record),
		metadata: metadata,
	}
}

// Register records the component if it carries an external-configuration
// schema: either the instance implements Configurable, or the metadata
// source reports a config key for the name. Returns true when the
// component was recorded.
func (r *Registry) Register(name string, instance interface{}) bool {
	if instance == nil {
		return false
	}

	key, ok := r.configKey(name, instance)
	if !ok {
		return false
	}

	r.mu.Lock()
	r.records[name] = &record{instance: instance, configKey: key}
	r.mu.Unlock()

	logger.Debugw("Rebind registry: component registered", "component", name, "config_key", key)
	return true
}

// configKey resolves the configuration key for an instance, preferring
// direct inspection over factory metadata.
func (r *Registry) configKey(name string, instance interface{}) (string, bool) {
	if c, ok := instance.(Configurable); ok {
		if key := c.ConfigKey(); key != "" {
			return key, true
		}
	}
	if r.metadata != nil {
		if key, ok := r.metadata.ConfigKeyFor(name); ok {
			return key, true
		}
	}
	return "", false
}

// Hook adapts Register to a container post-init hook so that
// config-carrying components are tracked as they are constructed.
func (r *Registry) Hook() func(name string, instance interface{}) {
	return func(name string, instance interface{}) {
		r.Register(name, instance)
	}
}

// lookup returns the record for name.
func (r *Registry) lookup(name string) (*record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[name]
	return rec, ok
}

// replaceInstance swaps the live instance reference for name.
func (r *Registry) replaceInstance(name string, instance interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[name]; ok {
		rec.instance = instance
	}
}

// Names returns a sorted defensive snapshot of registered names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.records))
	for name := range r.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
