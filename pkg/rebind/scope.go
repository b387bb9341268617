package rebind

import (
	"sync"

	"github.com/kart-io/logger"
)

// ManagedScope marks scope implementations that own instance refresh
// themselves. Components declared in such a scope are excluded from the
// in-place rebind path; their owning scope replaces instances wholesale.
type ManagedScope interface {
	ManagesRefresh() bool
}

// ScopeRegistry is the scope lookup capability the classifier consumes.
// The container satisfies this interface.
type ScopeRegistry interface {
	// ScopeNames lists all registered scope names.
	ScopeNames() []string

	// LookupScope returns the scope implementation registered under name.
	LookupScope(name string) (interface{}, bool)

	// DefinitionScope returns the scope name a component definition
	// declares; false when no definition exists for the component.
	DefinitionScope(name string) (string, bool)
}

// ScopeClassifier decides, per component name, whether rebinding is
// owned elsewhere. The managed-refresh scope name is resolved at most
// once per process run; when no managed scope is registered, every
// component is treated as rebindable.
type ScopeClassifier struct {
	scopes ScopeRegistry

	mu           sync.Mutex
	managedScope string
	resolved     bool
}

// NewScopeClassifier creates a classifier over the given scope registry.
// A nil registry yields a permissive classifier: nothing is excluded.
func NewScopeClassifier(scopes ScopeRegistry) *ScopeClassifier {
	return &ScopeClassifier{scopes: scopes}
}

// IsExcluded reports whether the named component's lifecycle is owned by
// the managed-refresh scope. Scope registry errors or absence are treated
// as "not excluded" so that rebinding everything wins over silently
// skipping components.
func (sc *ScopeClassifier) IsExcluded(name string) bool {
	if name == "" || sc.scopes == nil {
		return false
	}

	managed := sc.managedScopeName()
	if managed == "" {
		return false
	}

	declared, ok := sc.scopes.DefinitionScope(name)
	if !ok {
		return false
	}
	return declared == managed
}

// managedScopeName scans the scope registry once for a scope that
// manages its own refresh and memoizes the result, including a negative
// one.
func (sc *ScopeClassifier) managedScopeName() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.resolved {
		return sc.managedScope
	}
	sc.resolved = true

	for _, scopeName := range sc.scopes.ScopeNames() {
		scope, ok := sc.scopes.LookupScope(scopeName)
		if !ok {
			continue
		}
		if managed, ok := scope.(ManagedScope); ok && managed.ManagesRefresh() {
			sc.managedScope = scopeName
			logger.Infow("Scope classifier: managed-refresh scope detected", "scope", scopeName)
			break
		}
	}
	return sc.managedScope
}
