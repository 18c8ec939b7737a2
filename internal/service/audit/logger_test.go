package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jwalitptl/hms-api/internal/config"
)

func TestLogger_Log(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLoggerWith(zap.New(core))

	l.Log(Entry{
		ActorID:    "u-1",
		Role:       "RECEPTIONIST",
		Action:     "create",
		Resource:   "patients",
		ResourceID: "p-1",
		Method:     "POST",
		Path:       "/api/v1/patients",
		Status:     201,
	})

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "u-1", fields["actor_id"])
	assert.Equal(t, "create", fields["action"])
	assert.Equal(t, "patients", fields["resource"])
	assert.EqualValues(t, 201, fields["status"])
}

func TestNewLogger_Disabled(t *testing.T) {
	l, err := NewLogger(config.AuditConfig{Enabled: false})
	require.NoError(t, err)
	l.Log(Entry{Action: "delete"})
	assert.NoError(t, l.Sync())
}
