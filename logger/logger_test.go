package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestForEnvironment(t *testing.T) {
	assert.Equal(t, "json", ForEnvironment("production", "info").Format)
	assert.Equal(t, "console", ForEnvironment("development", "debug").Format)
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intake.log")
	l := New(Config{Level: "info", Format: "json", Output: path})
	require.NotNil(t, l)

	l.Info("hello")
	_ = l.Sync()

	assert.FileExists(t, path)
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))

	fallback := zap.NewExample()
	assert.Same(t, fallback, FromContextOr(context.Background(), fallback))
	assert.Same(t, l, FromContextOr(WithContext(context.Background(), l), fallback))
}
