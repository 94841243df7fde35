package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, dev := range []bool{true, false} {
		logger, err := New(dev)
		require.NoError(t, err)
		require.NotNil(t, logger)
		assert.Equal(t, dev, logger.Core().Enabled(zapcore.DebugLevel), "debug only in development")
		logger.Info("logger ready", zap.Bool("development", dev))
	}
}

func TestNewAppliesOptions(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger, err := New(false, zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))
	require.NoError(t, err)

	logger.Named("pipeline").Info("company processed", zap.String("company", "Acme"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "leadharvester.pipeline", entry.LoggerName)
	assert.Equal(t, "Acme", entry.ContextMap()["company"])
}

func TestSyncNop(t *testing.T) {
	t.Parallel()
	require.NoError(t, Sync(zap.NewNop()))
}
