package container

import (
	"sort"
	"sync"

	"github.com/kart-io/logger"
)

// Scope owns the lifecycle of component instances registered under it.
// The container delegates Get for scoped components to their scope.
type Scope interface {
	// Get returns the instance for name, invoking factory when the scope
	// holds no live instance.
	Get(name string, factory func() (interface{}, error)) (interface{}, error)

	// Remove drops the scope's instance for name, if present.
	Remove(name string)
}

// RegisterScope adds a scope under the given name. Registering an existing
// name replaces the previous scope.
func (c *Container) RegisterScope(name string, scope Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scopes[name] = scope
	logger.Infow("Scope registered", "scope", name)
}

// ScopeNames returns a sorted snapshot of registered scope names.
func (c *Container) ScopeNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.scopes))
	for name := range c.scopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupScope returns the scope registered under name. The result is
// typed as interface{} so that callers can probe scope capabilities
// without depending on this package's Scope type.
func (c *Container) LookupScope(name string) (interface{}, bool) {
	scope, ok := c.lookupScope(name)
	if !ok {
		return nil, false
	}
	return scope, true
}

func (c *Container) lookupScope(name string) (Scope, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	scope, ok := c.scopes[name]
	return scope, ok
}

// RefreshScope is a Scope whose instances are replaced, not rebound:
// Refresh discards the cached instance so the next Get constructs a fresh
// one from current configuration. Components in this scope are therefore
// excluded from the in-place rebind path.
type RefreshScope struct {
	mu    sync.Mutex
	cache map[string]interface{}
}

// NewRefreshScope creates an empty refresh scope.
func NewRefreshScope() *RefreshScope {
	return &RefreshScope{
		cache: make(map[string]interface{}),
	}
}

// ManagesRefresh marks this scope as owning instance refresh itself.
func (s *RefreshScope) ManagesRefresh() bool {
	return true
}

// Get returns the cached instance for name, constructing one when absent.
func (s *RefreshScope) Get(name string, factory func() (interface{}, error)) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if instance, ok := s.cache[name]; ok {
		return instance, nil
	}

	instance, err := factory()
	if err != nil {
		return nil, err
	}
	s.cache[name] = instance
	return instance, nil
}

// Remove drops the cached instance for name.
func (s *RefreshScope) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, name)
}

// Refresh discards the cached instance for name so the next Get rebuilds
// it. Returns true when an instance was actually discarded.
func (s *RefreshScope) Refresh(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache[name]; !ok {
		return false
	}
	delete(s.cache, name)
	logger.Infow("Refresh scope: instance discarded", "component", name)
	return true
}

// RefreshAll discards every cached instance and returns the names that
// were discarded.
func (s *RefreshScope) RefreshAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.cache))
	for name := range s.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	s.cache = make(map[string]interface{})
	return names
}
