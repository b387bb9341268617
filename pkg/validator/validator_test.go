package validator

import (
	"strings"
	"testing"
)

type httpConfig struct {
	Addr    string `mapstructure:"addr" validate:"required"`
	Retries int    `mapstructure:"retries" validate:"gte=0,lte=10"`
	Mode    string `mapstructure:"mode" validate:"omitempty,oneof=debug release"`
}

func TestValidateOK(t *testing.T) {
	v := New()
	cfg := &httpConfig{Addr: ":8080", Retries: 3, Mode: "release"}
	if err := v.Validate(cfg); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateMissingRequired(t *testing.T) {
	v := New()
	cfg := &httpConfig{Retries: 3}

	verrs := v.ValidateWithLang(cfg, LangEN)
	if !verrs.HasErrors() {
		t.Fatal("expected validation errors for missing addr")
	}
	if verrs.Errors[0].Field != "addr" {
		t.Errorf("Field = %q, want mapstructure tag name", verrs.Errors[0].Field)
	}
}

func TestValidateRange(t *testing.T) {
	v := New()
	cfg := &httpConfig{Addr: ":8080", Retries: 42}

	verrs := v.ValidateWithLang(cfg, LangEN)
	if !verrs.HasErrors() {
		t.Fatal("expected validation errors for retries out of range")
	}
	if !strings.Contains(verrs.Error(), "retries") {
		t.Errorf("Error() = %q, want mention of retries", verrs.Error())
	}
}

func TestTranslatorFallback(t *testing.T) {
	v := New()
	if v.GetTranslator("fr") != v.GetTranslator(LangEN) {
		t.Error("unknown language should fall back to English")
	}
}

func TestGlobalSingleton(t *testing.T) {
	if Global() != Global() {
		t.Error("Global must return the same instance")
	}
}
