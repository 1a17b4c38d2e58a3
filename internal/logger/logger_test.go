package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"fatal", zapcore.InfoLevel, true},
		{"", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestComponentAndSessionFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Component(wrap(zap.New(core)), "catalog_loader")

	l.Info("loaded", Session("abc"), Uint64("version", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "catalog_loader", fields["component"])
	assert.Equal(t, "abc", fields["session"])
	assert.Equal(t, uint64(3), fields["version"])
}

func TestWithOnForeignLogger(t *testing.T) {
	var l Logger = foreign{}
	assert.Equal(t, l, With(l, String("k", "v")))
}

type foreign struct{ Logger }
