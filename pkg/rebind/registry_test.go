package rebind

import (
	"fmt"
	"testing"
)

type taggedComponent struct {
	key     string
	Retries int
}

func (c *taggedComponent) ConfigKey() string { return c.key }

type plainComponent struct {
	Retries int
}

type mapMetadata map[string]string

func (m mapMetadata) ConfigKeyFor(name string) (string, bool) {
	key, ok := m[name]
	return key, ok
}

func TestRegisterConfigurable(t *testing.T) {
	r := NewRegistry(nil)

	if !r.Register("cfg-a", &taggedComponent{key: "cache"}) {
		t.Fatal("Register should accept a Configurable component")
	}

	rec, ok := r.lookup("cfg-a")
	if !ok {
		t.Fatal("registered component not found")
	}
	if rec.configKey != "cache" {
		t.Errorf("configKey = %q, want cache", rec.configKey)
	}
}

func TestRegisterWithoutSchema(t *testing.T) {
	r := NewRegistry(nil)

	if r.Register("plain", &plainComponent{}) {
		t.Error("Register should reject a component without a config schema")
	}
	if r.Register("nil", nil) {
		t.Error("Register should reject nil instances")
	}
	if r.Register("empty-key", &taggedComponent{key: ""}) {
		t.Error("Register should reject an empty config key")
	}

	if len(r.Names()) != 0 {
		t.Errorf("Names = %v, want empty", r.Names())
	}
}

func TestRegisterMetadataFallback(t *testing.T) {
	r := NewRegistry(mapMetadata{"plain": "server"})

	if !r.Register("plain", &plainComponent{}) {
		t.Fatal("Register should fall back to factory metadata")
	}

	rec, _ := r.lookup("plain")
	if rec.configKey != "server" {
		t.Errorf("configKey = %q, want server", rec.configKey)
	}

	if r.Register("unknown", &plainComponent{}) {
		t.Error("Register should reject names the metadata does not cover")
	}
}

func TestRegisterLatestWins(t *testing.T) {
	r := NewRegistry(nil)

	first := &taggedComponent{key: "cache"}
	second := &taggedComponent{key: "cache"}
	r.Register("cfg-a", first)
	r.Register("cfg-a", second)

	rec, _ := r.lookup("cfg-a")
	if rec.instance != second {
		t.Error("latest registration should win")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestNamesSortedSnapshot(t *testing.T) {
	r := NewRegistry(nil)
	for _, name := range []string{"zeta", "alpha"} {
		r.Register(name, &taggedComponent{key: name})
	}

	names := r.Names()
	if fmt.Sprint(names) != fmt.Sprint([]string{"alpha", "zeta"}) {
		t.Errorf("Names = %v, want sorted [alpha zeta]", names)
	}

	// Mutating the snapshot must not affect the registry.
	names[0] = "mutated"
	if r.Names()[0] != "alpha" {
		t.Error("Names must return a defensive copy")
	}
}
