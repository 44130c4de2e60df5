package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()

	logFile *os.File
)

// InitLogging sets up logging based on configuration.
func InitLogging(debugMode bool, logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logPath == "" {
		return nil
	}

	err := os.MkdirAll(filepath.Dir(logPath), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	level := zapcore.InfoLevel
	if debugMode {
		level = zapcore.DebugLevel
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(f), zap.NewAtomicLevelAt(level))

	if logFile != nil {
		_ = logFile.Close()
	}

	logFile = f
	sugar = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()

	return nil
}

// Close flushes buffered entries and closes the log file if open.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	_ = sugar.Sync()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	sugar = zap.NewNop().Sugar()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()

	return sugar
}

func Infof(format string, v ...interface{}) {
	current().Infof(format, v...)
}

// Errorf logs an error message.
func Errorf(format string, v ...interface{}) {
	current().Errorf(format, v...)
}

func Debugf(format string, v ...interface{}) {
	current().Debugf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	current().Warnf(format, v...)
}
