// Package log holds the process-wide zap logger used by the wire packages.
// It defaults to a no-op logger so the library stays silent until the
// application installs one.
package log

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _globalL atomic.Value

func init() {
	_globalL.Store(zap.NewNop())
}

// L returns the global logger.
func L() *zap.Logger {
	return _globalL.Load().(*zap.Logger)
}

// ReplaceGlobals installs l as the global logger and returns a function that
// restores the previous one. A nil l installs a no-op logger.
func ReplaceGlobals(l *zap.Logger) func() {
	if l == nil {
		l = zap.NewNop()
	}
	prev := L()
	_globalL.Store(l)
	return func() { _globalL.Store(prev) }
}

// Config selects the logger built by Build.
type Config struct {
	// Level is a zap level name: debug, info, warn, error. Empty means info.
	Level string `json:"level"`
	// Development switches to console encoding with stack traces on warnings.
	Development bool `json:"development"`
}

// Build creates a zap logger from cfg.
func (cfg Config) Build(opts ...zap.Option) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if cfg.Level != "" {
		level := zapcore.InfoLevel
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, errors.Wrapf(err, "log: level %q", cfg.Level)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	l, err := zc.Build(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "log: build")
	}
	return l, nil
}
