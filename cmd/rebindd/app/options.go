package app

import (
	"github.com/spf13/pflag"

	etcdopts "github.com/kart-io/rebind/pkg/options/etcd"
	logopts "github.com/kart-io/rebind/pkg/options/logger"
	serveropts "github.com/kart-io/rebind/pkg/options/server"
)

// Options aggregates all configuration for the rebind daemon.
type Options struct {
	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Server contains admin HTTP server configuration.
	Server *serveropts.Options `json:"server" mapstructure:"server"`

	// Etcd contains the remote configuration source settings.
	Etcd *etcdopts.Options `json:"etcd" mapstructure:"etcd"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		Log:    logopts.NewOptions(),
		Server: serveropts.NewOptions(),
		Etcd:   etcdopts.NewOptions(),
	}
}

// AddFlags adds all daemon flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Log.AddFlags(fs)
	o.Server.AddFlags(fs)
	o.Etcd.AddFlags(fs)
}

// Complete fills in defaults for unset values.
func (o *Options) Complete() error {
	if o.Log == nil {
		o.Log = logopts.NewOptions()
	}
	if o.Server == nil {
		o.Server = serveropts.NewOptions()
	}
	if o.Etcd == nil {
		o.Etcd = etcdopts.NewOptions()
	}

	if err := o.Log.Complete(); err != nil {
		return err
	}
	if err := o.Server.Complete(); err != nil {
		return err
	}
	return o.Etcd.Complete()
}

// Validate validates all option sections.
func (o *Options) Validate() error {
	if err := o.Log.Validate(); err != nil {
		return err
	}
	if err := o.Server.Validate(); err != nil {
		return err
	}
	return o.Etcd.Validate()
}
