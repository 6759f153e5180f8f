// Package config provides loading and environment overlay for greetd
// configuration. It exposes a Default() baseline, file loading (JSON or
// YAML), a GREETD_* environment overlay and validation.
//
// Example:
//
//	cfg, err := config.Load("/etc/greetd.yaml")
//	if err != nil {
//	    return err
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	rt, _ := runtime.Open(ctx, runtime.Options{Config: cfg})
//	defer rt.Close()
package config
