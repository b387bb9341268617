package container

import (
	"errors"
	"fmt"
	"testing"
)

type cacheComponent struct {
	TTL       int
	initCount int
}

func (c *cacheComponent) Init() error {
	c.initCount++
	return nil
}

func TestDefineValidation(t *testing.T) {
	c := New()

	if err := c.Define("", Definition{New: func(*Container) (interface{}, error) { return nil, nil }}); err == nil {
		t.Error("Define with empty name should fail")
	}
	if err := c.Define("cache", Definition{}); err == nil {
		t.Error("Define without factory should fail")
	}
}

func TestGetSingletonCached(t *testing.T) {
	c := New()
	built := 0
	err := c.Define("cache", Definition{
		New: func(*Container) (interface{}, error) {
			built++
			return &cacheComponent{TTL: 60}, nil
		},
	})
	if err != nil {
		t.Fatalf("Define: %v", err)
	}

	first, err := c.Get("cache")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := c.Get("cache")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if first != second {
		t.Error("singleton Get should return the same instance")
	}
	if built != 1 {
		t.Errorf("factory invoked %d times, want 1", built)
	}
}

func TestGetUndefined(t *testing.T) {
	c := New()
	if _, err := c.Get("missing"); err == nil {
		t.Error("Get of undefined component should fail")
	}
	if c.Contains("missing") {
		t.Error("Contains should be false for undefined component")
	}
}

func TestInitializeRunsInit(t *testing.T) {
	c := New()
	_ = c.Define("cache", Definition{
		New: func(*Container) (interface{}, error) { return &cacheComponent{}, nil },
	})

	instance, err := c.Get("cache")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	comp := instance.(*cacheComponent)
	if comp.initCount != 1 {
		t.Errorf("initCount = %d after construction, want 1", comp.initCount)
	}

	// Re-running initialization must re-fire Init.
	if err := c.Initialize(comp, "cache"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if comp.initCount != 2 {
		t.Errorf("initCount = %d after re-initialization, want 2", comp.initCount)
	}
}

func TestConstructionErrorPropagates(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	_ = c.Define("broken", Definition{
		New: func(*Container) (interface{}, error) { return nil, boom },
	})

	if _, err := c.Get("broken"); !errors.Is(err, boom) {
		t.Errorf("Get error = %v, want wrapped boom", err)
	}
}

func TestPostInitHooks(t *testing.T) {
	c := New()
	var seen []string
	c.AddPostInitHook(func(name string, instance interface{}) {
		seen = append(seen, name)
	})

	_ = c.Define("cache", Definition{
		New: func(*Container) (interface{}, error) { return &cacheComponent{}, nil },
	})

	if _, err := c.Get("cache"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := c.Get("cache"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Hook fires on construction only, not on cached lookups.
	if len(seen) != 1 || seen[0] != "cache" {
		t.Errorf("hooks fired for %v, want [cache]", seen)
	}
}

func TestConfigKeyFor(t *testing.T) {
	c := New()
	_ = c.Define("cache", Definition{
		New:       func(*Container) (interface{}, error) { return &cacheComponent{}, nil },
		ConfigKey: "cache",
	})
	_ = c.Define("plain", Definition{
		New: func(*Container) (interface{}, error) { return struct{}{}, nil },
	})

	if key, ok := c.ConfigKeyFor("cache"); !ok || key != "cache" {
		t.Errorf("ConfigKeyFor(cache) = (%q, %v)", key, ok)
	}
	if _, ok := c.ConfigKeyFor("plain"); ok {
		t.Error("ConfigKeyFor(plain) should report no config key")
	}
	if _, ok := c.ConfigKeyFor("missing"); ok {
		t.Error("ConfigKeyFor(missing) should report no config key")
	}
}

func TestNamesSorted(t *testing.T) {
	c := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_ = c.Define(name, Definition{
			New: func(*Container) (interface{}, error) { return struct{}{}, nil },
		})
	}

	names := c.Names()
	want := []string{"alpha", "mid", "zeta"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("Names = %v, want %v", names, want)
	}
}

func TestScopedComponent(t *testing.T) {
	c := New()
	scope := NewRefreshScope()
	c.RegisterScope("refresh", scope)

	built := 0
	_ = c.Define("session", Definition{
		New: func(*Container) (interface{}, error) {
			built++
			return &cacheComponent{TTL: built}, nil
		},
		Scope: "refresh",
	})

	first, err := c.Get("session")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, _ := c.Get("session")
	if first != second {
		t.Error("scoped Get should return the cached instance")
	}

	// Refresh discards the instance; next Get constructs a fresh one.
	if !scope.Refresh("session") {
		t.Error("Refresh should report a discarded instance")
	}
	third, err := c.Get("session")
	if err != nil {
		t.Fatalf("Get after refresh: %v", err)
	}
	if third == first {
		t.Error("Get after Refresh should construct a new instance")
	}
	if built != 2 {
		t.Errorf("factory invoked %d times, want 2", built)
	}
}

func TestScopedComponentUnregisteredScope(t *testing.T) {
	c := New()
	_ = c.Define("session", Definition{
		New:   func(*Container) (interface{}, error) { return struct{}{}, nil },
		Scope: "refresh",
	})

	if _, err := c.Get("session"); err == nil {
		t.Error("Get should fail when the declared scope is not registered")
	}
}

func TestDefinitionScope(t *testing.T) {
	c := New()
	_ = c.Define("session", Definition{
		New:   func(*Container) (interface{}, error) { return struct{}{}, nil },
		Scope: "refresh",
	})

	scope, ok := c.DefinitionScope("session")
	if !ok || scope != "refresh" {
		t.Errorf("DefinitionScope = (%q, %v), want (refresh, true)", scope, ok)
	}
	if _, ok := c.DefinitionScope("missing"); ok {
		t.Error("DefinitionScope(missing) should be false")
	}
}

func TestRefreshScopeRefreshAll(t *testing.T) {
	scope := NewRefreshScope()
	for _, name := range []string{"b", "a"} {
		_, _ = scope.Get(name, func() (interface{}, error) { return struct{}{}, nil })
	}

	discarded := scope.RefreshAll()
	if fmt.Sprint(discarded) != fmt.Sprint([]string{"a", "b"}) {
		t.Errorf("RefreshAll = %v, want [a b]", discarded)
	}
	if scope.Refresh("a") {
		t.Error("Refresh after RefreshAll should find nothing")
	}
}
