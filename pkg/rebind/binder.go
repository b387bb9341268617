package rebind

import (
	"fmt"
	"reflect"

	"github.com/spf13/viper"

	"github.com/kart-io/rebind/pkg/validator"
)

// Binder applies current external configuration values to a live
// component instance. Bind mutates the target in place; it must be
// idempotent when the underlying configuration has not changed.
type Binder interface {
	Bind(target interface{}, key string) error
}

// Completable is implemented by configuration targets that derive
// defaults after binding, before validation.
type Completable interface {
	Complete() error
}

// Validatable is implemented by configuration targets with validation
// logic beyond struct tags.
type Validatable interface {
	Validate() error
}

// ViperBinder binds configuration sections from a viper instance into
// component instances. After unmarshalling it runs the target's Complete
// method (when implemented), struct-tag validation, and the target's own
// Validate method (when implemented).
type ViperBinder struct {
	viper     *viper.Viper
	validator *validator.Validator
}

// NewViperBinder creates a binder over the given viper instance.
// A nil validator falls back to the global one.
func NewViperBinder(v *viper.Viper, val *validator.Validator) *ViperBinder {
	if val == nil {
		val = validator.Global()
	}
	return &ViperBinder{viper: v, validator: val}
}

// Bind unmarshals the configuration section at key into target and
// validates the result. The target is mutated in place; on validation
// failure some fields may already hold new values, so callers decide
// whether a failed component stays in service.
func (b *ViperBinder) Bind(target interface{}, key string) error {
	if err := b.viper.UnmarshalKey(key, target); err != nil {
		return fmt.Errorf("unmarshal config key %q: %w", key, err)
	}

	if c, ok := target.(Completable); ok {
		if err := c.Complete(); err != nil {
			return fmt.Errorf("complete config for key %q: %w", key, err)
		}
	}

	// Struct-tag validation only applies to struct targets.
	if isStruct(target) {
		if verrs := b.validator.ValidateWithLang(target, validator.LangEN); verrs.HasErrors() {
			return fmt.Errorf("validate config for key %q: %w", key, verrs)
		}
	}

	if v, ok := target.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validate config for key %q: %w", key, err)
		}
	}

	return nil
}

func isStruct(target interface{}) bool {
	t := reflect.TypeOf(target)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}
