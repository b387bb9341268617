// Package server provides configuration options for the admin HTTP server.
package server

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

// Options contains admin HTTP server configuration.
type Options struct {
	// Addr is the address to listen on.
	Addr string `json:"addr" mapstructure:"addr"`
	// Mode is the gin run mode (debug, release, test).
	Mode string `json:"mode" mapstructure:"mode"`
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `json:"read-timeout" mapstructure:"read-timeout"`
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`
	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `json:"idle-timeout" mapstructure:"idle-timeout"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Addr:         ":8081",
		Mode:         gin.ReleaseMode,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// AddFlags adds flags for admin server options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "server.addr", o.Addr, "Admin HTTP server listen address")
	fs.StringVar(&o.Mode, "server.mode", o.Mode, "Gin run mode (debug, release, test)")
	fs.DurationVar(&o.ReadTimeout, "server.read-timeout", o.ReadTimeout, "Admin server read timeout")
	fs.DurationVar(&o.WriteTimeout, "server.write-timeout", o.WriteTimeout, "Admin server write timeout")
	fs.DurationVar(&o.IdleTimeout, "server.idle-timeout", o.IdleTimeout, "Admin server idle timeout")
}

// Validate validates the admin server options.
func (o *Options) Validate() error {
	if o.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if o.Mode != gin.DebugMode && o.Mode != gin.ReleaseMode && o.Mode != gin.TestMode {
		return fmt.Errorf("server.mode must be 'debug', 'release' or 'test'")
	}
	if o.ReadTimeout <= 0 {
		return fmt.Errorf("server.read-timeout must be positive")
	}
	if o.WriteTimeout <= 0 {
		return fmt.Errorf("server.write-timeout must be positive")
	}
	return nil
}

// Complete completes the admin server options with defaults.
func (o *Options) Complete() error {
	if o.Mode == "" {
		o.Mode = gin.ReleaseMode
	}
	return nil
}
