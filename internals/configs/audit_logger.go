package configs

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	auditMu     sync.RWMutex
	auditLogger = zap.NewNop()
)

// InitAuditLogger builds the structured logger used for domain audit events
// (approvals, account provisioning, attendance, password changes).
func InitAuditLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug || strings.EqualFold(GetEnv("LOG_LEVEL"), "debug") {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	SetAuditLogger(l.Named("audit"))
	return l, nil
}

// SetAuditLogger swaps the audit logger. Tests install zap.NewNop().
func SetAuditLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	auditMu.Lock()
	auditLogger = l
	auditMu.Unlock()
}

func Audit() *zap.Logger {
	auditMu.RLock()
	defer auditMu.RUnlock()
	return auditLogger
}
