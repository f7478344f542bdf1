package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls the level and encoding of the process logger.
type Config struct {
	Level  string `mapstructure:"level" default:"info"`
	Format string `mapstructure:"format" default:"json"`
}

var (
	once   sync.Once
	mu     sync.RWMutex
	logger *zap.Logger
	sugar  *zap.SugaredLogger
)

// Init installs the process logger. Only the first call takes effect.
func Init(cfg ...Config) {
	once.Do(func() {
		c := Config{Level: "info", Format: "json"}
		if len(cfg) > 0 {
			c = cfg[0]
		}
		l, err := New(c)
		if err != nil {
			l = zap.NewExample()
		}
		Set(l)
	})
}

// New builds a zap logger for the given configuration.
func New(cfg Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Level == "debug" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		if lvl, err := zapcore.ParseLevel(cfg.Level); err == nil {
			zc.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	if cfg.Format == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	} else {
		zc.Encoding = "json"
	}

	zc.EncoderConfig.LevelKey = "level"
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.MessageKey = "message"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zc.Build()
}

// Set replaces the process logger. Tests use it to capture output.
// The printf helpers skip their own frame when reporting the caller.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
	sugar = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

// L returns the structured logger.
func L() *zap.Logger {
	if current() == nil {
		Init()
	}
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Sync flushes buffered entries.
func Sync() {
	if s := current(); s != nil {
		_ = s.Sync()
	}
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func get() *zap.SugaredLogger {
	if s := current(); s != nil {
		return s
	}
	Init()
	return current()
}

func Info(message string, v ...interface{}) {
	get().Infof(message, v...)
}

func Warn(message string, v ...interface{}) {
	get().Warnf(message, v...)
}

func Error(message string, v ...interface{}) {
	get().Errorf(message, v...)
}

func Debug(message string, v ...interface{}) {
	get().Debugf(message, v...)
}
