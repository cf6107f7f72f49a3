package logger

import (
	"context"
	"errors"
	"syscall"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const infoLevel int8 = 0

func TestGetReturnsSameInstance(t *testing.T) {
	first := Get(infoLevel)
	require.NotNil(t, first)
	assert.Same(t, first, Get(-1))
	assert.Same(t, first, GetGlobalLogger())
}

func TestGetFallsBackToNoop(t *testing.T) {
	Get(infoLevel)
	orig := globalLogrLogger
	globalLogrLogger = nil
	t.Cleanup(func() { globalLogrLogger = orig })

	assert.Same(t, &defaultNoopLogger, Get(infoLevel))
	assert.Same(t, &defaultNoopLogger, GetGlobalLogger())
	assert.Same(t, &defaultNoopLogger, FromContext(context.Background()))
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	lgr := Get(infoLevel)

	withLogger := WithLogger(ctx, lgr)
	assert.Same(t, lgr, FromContext(withLogger))
	assert.Equal(t, withLogger, WithLogger(withLogger, lgr), "same logger keeps the context")

	other := logr.Discard()
	replaced := WithLogger(withLogger, &other)
	assert.Same(t, &other, FromContext(replaced))
}

func TestFromContextDefaultsToGlobal(t *testing.T) {
	lgr := Get(infoLevel)
	assert.Same(t, lgr, FromContext(context.Background()))
}

func TestWithValues(t *testing.T) {
	base := logr.Discard()
	got := WithValues(&base, SourceKey, "doc.json")
	require.NotNil(t, got)
	assert.NotSame(t, &base, got)
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.True(t, isIgnorableSyncError(syscall.ENOTTY))
	assert.True(t, isIgnorableSyncError(syscall.EINVAL))
	assert.True(t, isIgnorableSyncError(errors.New("sync /dev/stderr: The handle is invalid.")))
	assert.False(t, isIgnorableSyncError(errors.New("disk full")))
}
