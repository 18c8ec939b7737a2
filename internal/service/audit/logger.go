package audit

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jwalitptl/hms-api/internal/config"
)

// Entry is one audited request.
type Entry struct {
	RequestID  string
	ActorID    string
	Role       string
	Action     string
	Resource   string
	ResourceID string
	Method     string
	Path       string
	Status     int
	IP         string
}

// Logger writes the audit trail as JSON lines, separate from the
// application log.
type Logger struct {
	zl *zap.Logger
}

func NewLogger(cfg config.AuditConfig) (*Logger, error) {
	if !cfg.Enabled {
		return &Logger{zl: zap.NewNop()}, nil
	}

	zc := zap.NewProductionConfig()
	zc.Sampling = nil
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableCaller = true
	zc.DisableStacktrace = true
	if cfg.Path != "" {
		zc.OutputPaths = []string{cfg.Path}
	}

	zl, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit logger: %w", err)
	}
	return &Logger{zl: zl.Named("audit")}, nil
}

func NewLoggerWith(zl *zap.Logger) *Logger {
	return &Logger{zl: zl}
}

func (l *Logger) Log(e Entry) {
	l.zl.Info("audit",
		zap.String("request_id", e.RequestID),
		zap.String("actor_id", e.ActorID),
		zap.String("role", e.Role),
		zap.String("action", e.Action),
		zap.String("resource", e.Resource),
		zap.String("resource_id", e.ResourceID),
		zap.String("method", e.Method),
		zap.String("path", e.Path),
		zap.Int("status", e.Status),
		zap.String("ip", e.IP),
	)
}

func (l *Logger) Sync() error {
	return l.zl.Sync()
}
