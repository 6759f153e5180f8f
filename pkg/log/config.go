package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config declares how the process-wide logger is built.
type Config struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	// Output is "stdout", "stderr" or a file path. Empty means stdout.
	Output string `json:"output" yaml:"output"`
}

// ApplyConfig builds a Logger from cfg.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		return NewLogger(), nil
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == "" {
		out = "stdout"
	}
	ws, _, err := zap.Open(out)
	if err != nil {
		return nil, fmt.Errorf("log: open output %q: %w", out, err)
	}
	lvl := zap.NewAtomicLevelAt(level.zap())
	core := zapcore.NewCore(newEncoder(format), ws, lvl)
	return &BaseLogger{z: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)), level: lvl}, nil
}
