package util

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger: structured JSON on stdout,
// ISO8601 timestamps. When logPath is non-empty the output is teed
// into that file as well, creating parent directories as needed.
func NewLogger(logPath string) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	consoleCore := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zap.InfoLevel)
	if logPath == "" {
		return zap.New(consoleCore), nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewTee(
		consoleCore,
		zapcore.NewCore(encoder, zapcore.AddSync(file), zap.InfoLevel),
	)
	return zap.New(core), nil
}
