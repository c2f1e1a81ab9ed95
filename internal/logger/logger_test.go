package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		log, err := New(in)
		require.NoError(t, err, in)
		assert.True(t, log.Core().Enabled(want), in)
		if want > zapcore.DebugLevel {
			assert.False(t, log.Core().Enabled(want-1), in)
		}
	}
}
