package duckbridge

import "go.uber.org/zap"

// Package logger, nop by default. Only library discovery and loading log
// anything; the data path stays silent.
var logger = zap.NewNop()

// SetLogger installs a logger for library loading diagnostics. Passing nil
// restores the nop logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
