// Package etcd provides etcd configuration-source options.
package etcd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// redactedPassword is the placeholder used when serializing passwords.
const redactedPassword = "[REDACTED]"

// Options defines configuration options for the etcd change source.
type Options struct {
	// Enabled turns the etcd configuration source on.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Endpoints lists the etcd cluster endpoints.
	Endpoints []string `json:"endpoints" mapstructure:"endpoints"`

	// Prefix is the key prefix holding configuration documents. Each key
	// under the prefix maps to one configuration section.
	Prefix string `json:"prefix" mapstructure:"prefix"`

	Username       string        `json:"username" mapstructure:"username"`
	Password       string        `json:"-" mapstructure:"password"` // Excluded from JSON serialization
	DialTimeout    time.Duration `json:"dial-timeout" mapstructure:"dial-timeout"`
	RequestTimeout time.Duration `json:"request-timeout" mapstructure:"request-timeout"`
}

// optionsForJSON is used for JSON marshaling with password redacted.
type optionsForJSON struct {
	Enabled        bool          `json:"enabled"`
	Endpoints      []string      `json:"endpoints"`
	Prefix         string        `json:"prefix"`
	Username       string        `json:"username"`
	Password       string        `json:"password"`
	DialTimeout    time.Duration `json:"dial-timeout"`
	RequestTimeout time.Duration `json:"request-timeout"`
}

// MarshalJSON implements json.Marshaler with password redaction.
// This prevents accidental password exposure in logs or debug output.
func (o *Options) MarshalJSON() ([]byte, error) {
	password := redactedPassword
	if o.Password == "" {
		password = ""
	}

	return json.Marshal(optionsForJSON{
		Enabled:        o.Enabled,
		Endpoints:      o.Endpoints,
		Prefix:         o.Prefix,
		Username:       o.Username,
		Password:       password,
		DialTimeout:    o.DialTimeout,
		RequestTimeout: o.RequestTimeout,
	})
}

// String returns a string representation with password redacted.
// Safe for logging and debugging.
func (o *Options) String() string {
	password := redactedPassword
	if o.Password == "" {
		password = ""
	}
	return fmt.Sprintf("Etcd{enabled=%v, endpoints=%v, prefix=%s, user=%s, password=%s}",
		o.Enabled, o.Endpoints, o.Prefix, o.Username, password)
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Enabled:        false,
		Endpoints:      []string{"127.0.0.1:2379"},
		Prefix:         "/rebind/config",
		DialTimeout:    5 * time.Second,
		RequestTimeout: 2 * time.Second,
	}
}

// Complete fills in any fields not set that are required to have valid
// data.
func (o *Options) Complete() error {
	if o.Password == "" {
		o.Password = os.Getenv("ETCD_PASSWORD")
	}
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if !o.Enabled {
		return nil
	}
	if len(o.Endpoints) == 0 {
		return fmt.Errorf("etcd: at least one endpoint is required")
	}
	if o.Prefix == "" {
		return fmt.Errorf("etcd: key prefix is required")
	}
	if o.DialTimeout <= 0 {
		return fmt.Errorf("etcd: dial timeout must be positive")
	}
	if o.RequestTimeout <= 0 {
		return fmt.Errorf("etcd: request timeout must be positive")
	}
	return nil
}

// AddFlags adds flags for etcd options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "etcd.enabled", o.Enabled, "Enable the etcd configuration source")
	fs.StringSliceVar(&o.Endpoints, "etcd.endpoints", o.Endpoints, "Etcd cluster endpoints")
	fs.StringVar(&o.Prefix, "etcd.prefix", o.Prefix, "Key prefix holding configuration documents")
	fs.StringVar(&o.Username, "etcd.username", o.Username, "Etcd username")
	fs.StringVar(&o.Password, "etcd.password", o.Password, "Etcd password (or ETCD_PASSWORD env)")
	fs.DurationVar(&o.DialTimeout, "etcd.dial-timeout", o.DialTimeout, "Etcd dial timeout")
	fs.DurationVar(&o.RequestTimeout, "etcd.request-timeout", o.RequestTimeout, "Etcd request timeout")
}
