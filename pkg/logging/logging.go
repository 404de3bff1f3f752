package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rexliu/taintd/pkg/config"
)

// Logger wraps a zap SugaredLogger behind the Printf-style interface the ipc
// package expects.
type Logger struct {
	name  string
	sugar *zap.SugaredLogger
}

// New returns a console logger at info level; Configure applies profile settings.
func New(name string) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return &Logger{name: name, sugar: logger.Sugar().Named(name)}
}

// Configure rebuilds the logger from profile settings.
func (l *Logger) Configure(cfg config.LoggingConfig) error {
	if l == nil {
		return nil
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stdout"}
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o700); err != nil {
			return err
		}
		zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.FilePath)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return err
	}
	l.sugar = logger.Sugar().Named(l.name)
	return nil
}

// Printf logs at info level.
func (l *Logger) Printf(format string, v ...any) {
	l.sugar.Infof(format, v...)
}

// Println logs its arguments at info level.
func (l *Logger) Println(v ...any) {
	l.sugar.Info(v...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, v ...any) {
	l.sugar.Errorf(format, v...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}
