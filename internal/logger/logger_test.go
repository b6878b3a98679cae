package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultIsNop(t *testing.T) {
	require.NotNil(t, L())
	assert.False(t, L().Core().Enabled(zap.ErrorLevel))
}

func TestSetAndRestore(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	Named("simd").Debug("dispatch ready", zap.String("level", "avx2"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "simd", entries[0].LoggerName)
	assert.Equal(t, "dispatch ready", entries[0].Message)

	Set(nil)
	assert.False(t, L().Core().Enabled(zap.ErrorLevel))
}

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "debug", Encoding: "json"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	_, err = New(Config{Level: "loud"})
	require.Error(t, err)
}
