package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	pebblestore "github.com/rzbill/greetd/internal/storage/pebble"
	"github.com/rzbill/greetd/pkg/log"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	GRPCAddr string `json:"grpcAddr" yaml:"grpcAddr"`
	HTTPAddr string `json:"httpAddr" yaml:"httpAddr"`
	// StoreURL selects the message store backend. Empty means Pebble in DataDir.
	StoreURL   string          `json:"storeURL" yaml:"storeURL"`
	DataDir    string          `json:"dataDir" yaml:"dataDir"`
	Fsync      string          `json:"fsync" yaml:"fsync"`
	TLS        TLSConfig       `json:"tls" yaml:"tls"`
	Reflection bool            `json:"reflection" yaml:"reflection"`
	Broadcast  BroadcastConfig `json:"broadcast" yaml:"broadcast"`
	Relay      RelayConfig     `json:"relay" yaml:"relay"`
	Log        log.Config      `json:"log" yaml:"log"`
}

// TLSConfig points at PEM files. TLS is enabled when both are set.
type TLSConfig struct {
	CertFile string `json:"certFile" yaml:"certFile"`
	KeyFile  string `json:"keyFile" yaml:"keyFile"`
}

// Enabled reports whether both files are configured.
func (t TLSConfig) Enabled() bool { return t.CertFile != "" && t.KeyFile != "" }

// BroadcastConfig sizes the live feed.
type BroadcastConfig struct {
	SubscriberBuffer int `json:"subscriberBuffer" yaml:"subscriberBuffer"`
}

// RelayConfig sizes the per-connection queues of a streaming session.
type RelayConfig struct {
	OutboundBuffer int `json:"outboundBuffer" yaml:"outboundBuffer"`
	EffectsBuffer  int `json:"effectsBuffer" yaml:"effectsBuffer"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		GRPCAddr:   ":50051",
		HTTPAddr:   ":8080",
		DataDir:    DefaultDataDir(),
		Fsync:      "always",
		Reflection: true,
		Broadcast:  BroadcastConfig{SubscriberBuffer: 16},
		Relay:      RelayConfig{OutboundBuffer: 128, EffectsBuffer: 128},
		Log:        log.Config{Level: "info", Format: "text"},
	}
}

// Load reads configuration from a JSON or YAML file (by extension) on top of
// the defaults. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// ResolvedStoreURL returns the store URL the runtime should open.
func (c Config) ResolvedStoreURL() string {
	if c.StoreURL != "" {
		return c.StoreURL
	}
	return c.DataDir
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	var errs []error
	if c.GRPCAddr == "" {
		errs = append(errs, errors.New("grpcAddr is required"))
	}
	if c.ResolvedStoreURL() == "" {
		errs = append(errs, errors.New("storeURL or dataDir is required"))
	}
	if _, err := pebblestore.ParseFsyncMode(c.Fsync); err != nil {
		errs = append(errs, err)
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, errors.New("tls.certFile and tls.keyFile must be set together"))
	}
	if c.Broadcast.SubscriberBuffer < 0 {
		errs = append(errs, errors.New("broadcast.subscriberBuffer must not be negative"))
	}
	if c.Relay.OutboundBuffer < 0 || c.Relay.EffectsBuffer < 0 {
		errs = append(errs, errors.New("relay buffers must not be negative"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
