package config

import (
	"os"
	"strconv"
)

// FromEnv overlays GREETD_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("GREETD_GRPC_ADDR", &cfg.GRPCAddr)
	str("GREETD_HTTP_ADDR", &cfg.HTTPAddr)
	str("GREETD_STORE_URL", &cfg.StoreURL)
	str("GREETD_DATA_DIR", &cfg.DataDir)
	str("GREETD_FSYNC", &cfg.Fsync)
	str("GREETD_TLS_CERT_FILE", &cfg.TLS.CertFile)
	str("GREETD_TLS_KEY_FILE", &cfg.TLS.KeyFile)
	if v := os.Getenv("GREETD_REFLECTION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Reflection = b
		}
	}
	num("GREETD_BROADCAST_SUBSCRIBER_BUFFER", &cfg.Broadcast.SubscriberBuffer)
	num("GREETD_RELAY_OUTBOUND_BUFFER", &cfg.Relay.OutboundBuffer)
	num("GREETD_RELAY_EFFECTS_BUFFER", &cfg.Relay.EffectsBuffer)
	str("GREETD_LOG_LEVEL", &cfg.Log.Level)
	str("GREETD_LOG_FORMAT", &cfg.Log.Format)
	str("GREETD_LOG_OUTPUT", &cfg.Log.Output)
}
