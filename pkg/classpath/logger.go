package classpath

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the classpath package's logger. It is a no-op logger until
// SetLogger is called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the classpath package's logger.
func SetLogger(l *zap.Logger) {
	logger = l
}
