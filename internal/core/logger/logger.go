package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger() *zap.Logger {
	return New("development", "debug")
}

// New builds the development config for local runs and the JSON production
// config otherwise. Unknown levels fall back to info.
func New(env string, level string) *zap.Logger {
	loggerConfig := zap.NewDevelopmentConfig()
	if env == "production" {
		loggerConfig = zap.NewProductionConfig()
	}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	loggerConfig.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := loggerConfig.Build()
	if nil != err {
		panic(err)
	}

	return logger
}
