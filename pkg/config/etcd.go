package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"github.com/spf13/viper"
	clientv3 "go.etcd.io/etcd/client/v3"

	etcdopts "github.com/kart-io/rebind/pkg/options/etcd"
	"github.com/kart-io/rebind/pkg/utils/json"
)

// watchBackoff is the delay before re-establishing a broken etcd watch.
const watchBackoff = 2 * time.Second

// EtcdSource feeds configuration from an etcd key prefix into a viper
// instance and fires the watcher's change signal whenever a key under the
// prefix changes. Each key under the prefix maps to one configuration
// section; values are JSON documents.
type EtcdSource struct {
	client  *clientv3.Client
	opts    *etcdopts.Options
	viper   *viper.Viper
	watcher *Watcher
}

// NewEtcdSource connects to etcd using the given options and returns a
// source bound to the viper instance and watcher.
func NewEtcdSource(opts *etcdopts.Options, v *viper.Viper, w *Watcher) (*EtcdSource, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid etcd options: %w", err)
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   opts.Endpoints,
		DialTimeout: opts.DialTimeout,
		Username:    opts.Username,
		Password:    opts.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create etcd client: %w", err)
	}

	return &EtcdSource{
		client:  client,
		opts:    opts,
		viper:   v,
		watcher: w,
	}, nil
}

// Start loads the current configuration from etcd and begins watching the
// prefix for changes until ctx is cancelled. The watch runs in its own
// goroutine; changes are merged into viper and then broadcast through the
// watcher.
func (s *EtcdSource) Start(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		return err
	}

	go s.watch(ctx)
	logger.Infow("Etcd config source started", "prefix", s.opts.Prefix)
	return nil
}

// Load reads every key under the prefix and merges the sections into the
// viper instance. It does not fire the change signal; callers decide when
// subscribers should react.
func (s *EtcdSource) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	resp, err := s.client.Get(ctx, s.opts.Prefix, clientv3.WithPrefix())
	if err != nil {
		return fmt.Errorf("load config from etcd prefix %q: %w", s.opts.Prefix, err)
	}

	for _, kv := range resp.Kvs {
		if err := s.merge(string(kv.Key), kv.Value); err != nil {
			logger.Warnw("Etcd config source: skipping malformed document",
				"key", string(kv.Key), "error", err)
		}
	}
	return nil
}

// watch re-establishes the etcd watch with backoff until ctx is
// cancelled.
func (s *EtcdSource) watch(ctx context.Context) {
	for {
		ch := s.client.Watch(ctx, s.opts.Prefix, clientv3.WithPrefix())
		for resp := range ch {
			if err := resp.Err(); err != nil {
				logger.Errorw("Etcd config source: watch error", "error", err)
				continue
			}
			s.apply(resp.Events)
		}

		select {
		case <-ctx.Done():
			logger.Info("Etcd config source: watch stopped")
			return
		case <-time.After(watchBackoff):
			logger.Warn("Etcd config source: watch channel closed, re-establishing")
		}
	}
}

// apply merges changed keys into viper and fires one change signal for
// the batch.
func (s *EtcdSource) apply(events []*clientv3.Event) {
	changed := false
	for _, ev := range events {
		switch ev.Type {
		case clientv3.EventTypePut:
			if err := s.merge(string(ev.Kv.Key), ev.Kv.Value); err != nil {
				logger.Warnw("Etcd config source: skipping malformed document",
					"key", string(ev.Kv.Key), "error", err)
				continue
			}
			changed = true
		case clientv3.EventTypeDelete:
			// Viper cannot unset keys; subscribers re-binding against the
			// remaining configuration is the closest achievable behavior.
			changed = true
		}
	}

	if changed {
		logger.Infow("Etcd config source: configuration changed", "prefix", s.opts.Prefix)
		s.watcher.Notify()
	}
}

// merge decodes one JSON configuration document and merges it into viper
// under the section named by the key's suffix.
func (s *EtcdSource) merge(key string, value []byte) error {
	section := strings.Trim(strings.TrimPrefix(key, s.opts.Prefix), "/")
	if section == "" {
		return fmt.Errorf("key %q has no section suffix", key)
	}

	var doc interface{}
	if err := json.Unmarshal(value, &doc); err != nil {
		return fmt.Errorf("decode JSON document: %w", err)
	}

	return s.viper.MergeConfigMap(map[string]interface{}{section: doc})
}

// Close releases the etcd client.
func (s *EtcdSource) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
