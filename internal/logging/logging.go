// Package logging builds the zap logger used by the CLI and adapts it to the
// reporter interfaces of the runner and the browser backends.
package logging

import (
	"github.com/pkg/errors"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return log, nil
}

// Reporter writes progress messages at info level.
type Reporter struct {
	log *zap.Logger
}

func NewReporter(log *zap.Logger) *Reporter {
	return &Reporter{log: log}
}

func (r *Reporter) Report(msg string) {
	r.log.Info(msg)
}

// Logf adapts log to printf style driver logging at debug level.
func Logf(log *zap.Logger) func(format string, args ...any) {
	sugar := log.Sugar()
	return func(format string, args ...any) {
		sugar.Debugf(format, args...)
	}
}
