package logging

import (
	"go.uber.org/zap"
)

// Logger is the process-wide logger used by the SDK when a client is not given its own.
var Logger = newDefaultLogger()

func newDefaultLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// SetLogger replaces the process-wide logger. A nil logger silences the SDK.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	Logger = logger
}
