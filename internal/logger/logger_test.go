package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestInitialize_ProductionLevel(t *testing.T) {
	err := Initialize("warn", false)

	assert.NoError(t, err)
	assert.NotNil(t, Log)
	assert.False(t, Log.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Log.Desugar().Core().Enabled(zapcore.WarnLevel))
}

func TestInitialize_Development(t *testing.T) {
	err := Initialize("debug", true)

	assert.NoError(t, err)
	assert.True(t, Log.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestInitialize_BadLevel(t *testing.T) {
	err := Initialize("loud", false)

	assert.Error(t, err)
}
