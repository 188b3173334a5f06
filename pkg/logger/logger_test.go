package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		appEnv    string
		verbose   bool
		wantDebug bool
	}{
		{"development", false, false},
		{"development", true, true},
		{"production", false, false},
		{"production", true, true},
	}
	for _, tt := range tests {
		logger, err := New(tt.appEnv, tt.verbose)
		require.NoError(t, err)

		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel), tt.appEnv)
		assert.Equal(t, tt.wantDebug, logger.Core().Enabled(zapcore.DebugLevel), "%s verbose=%v", tt.appEnv, tt.verbose)
	}
}
