package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"syscall"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockLogLevel int8 = 0

func TestGetReturnsSameInstance(t *testing.T) {
	l1 := Get(mockLogLevel)
	l2 := Get(mockLogLevel)
	require.NotNil(t, l1)
	assert.Same(t, l1, l2)
}

func TestGetReturnsNoopLoggerIfGlobalLoggerNil(t *testing.T) {
	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	assert.Same(t, &defaultNoopLogger, Get(mockLogLevel))
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	lgr := New(&buf, -1)
	lgr.V(1).Info("rule matched", RuleKey, "static-member", CandidatesKey, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rule matched", entry[MessageKey])
	assert.Equal(t, "static-member", entry[RuleKey])
	assert.EqualValues(t, 2, entry[CandidatesKey])
	assert.Contains(t, entry, VersionKey)
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lgr := New(&buf, 0)
	lgr.V(1).Info("hidden")
	assert.Empty(t, buf.String())
	lgr.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	lgr := Get(mockLogLevel)

	withLgr := WithLogger(ctx, lgr)
	assert.Same(t, lgr, withLgr.Value(loggerContextKey{}))
	assert.Equal(t, withLgr, WithLogger(withLgr, lgr), "same logger keeps the context")

	other := logr.Discard()
	replaced := WithLogger(withLgr, &other)
	assert.Same(t, &other, replaced.Value(loggerContextKey{}))
}

func TestFromContext(t *testing.T) {
	lgr := Get(mockLogLevel)
	assert.Same(t, lgr, FromContext(WithLogger(context.Background(), lgr)))
	assert.Same(t, lgr, FromContext(context.Background()))

	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()
	assert.Same(t, &defaultNoopLogger, FromContext(context.Background()))
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, 0))
	Component(ctx, "engine").Info("hello")
	assert.Contains(t, buf.String(), `"component":"engine"`)
}

func TestSyncDoesNotPanicWhenGlobalZapLoggerIsNil(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	defer func() { globalZapLogger = orig }()
	assert.NotPanics(t, Sync)
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.True(t, isIgnorableSyncError(syscall.ENOTTY))
	assert.True(t, isIgnorableSyncError(errors.New("sync /dev/stderr: The handle is invalid.")))
	assert.False(t, isIgnorableSyncError(errors.New("disk full")))
}

func TestGetNoopLogger(t *testing.T) {
	assert.Same(t, &defaultNoopLogger, GetNoopLogger())
	assert.Same(t, GetNoopLogger(), GetNoopLogger())
	assert.False(t, GetNoopLogger().Enabled())
}

func TestWithValues(t *testing.T) {
	lgr := Get(mockLogLevel)
	nl := WithValues(lgr, "key", "value")
	require.NotNil(t, nl)
	assert.NotSame(t, lgr, nl)

	var nilLogger *logr.Logger
	assert.Panics(t, func() { _ = WithValues(nilLogger, "key", "value") })
}
