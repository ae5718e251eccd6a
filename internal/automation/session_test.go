package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkarlov/faretrack/pkg/logger"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	require.NoError(t, err)
	return NewSession(nil, log)
}

func step(calls *[]string, name string, err error) func(context.Context) error {
	return func(context.Context) error {
		*calls = append(*calls, name)
		return err
	}
}

func TestWithDialog_HappyPath(t *testing.T) {
	session := newTestSession(t)
	var calls []string

	err := session.WithDialog(context.Background(),
		step(&calls, "open", nil),
		step(&calls, "close", nil),
		step(&calls, "fn", nil))

	require.NoError(t, err)
	assert.Equal(t, []string{"open", "fn", "close"}, calls)
}

func TestWithDialog_OpenFailureSkipsBody(t *testing.T) {
	session := newTestSession(t)
	var calls []string
	openErr := errors.New("toggle not found")

	err := session.WithDialog(context.Background(),
		step(&calls, "open", openErr),
		step(&calls, "close", nil),
		step(&calls, "fn", nil))

	require.ErrorIs(t, err, openErr)
	assert.Equal(t, []string{"open"}, calls)
}

func TestWithDialog_BodyFailureStillCloses(t *testing.T) {
	session := newTestSession(t)
	var calls []string
	fnErr := errors.New("entry missing")

	err := session.WithDialog(context.Background(),
		step(&calls, "open", nil),
		step(&calls, "close", nil),
		step(&calls, "fn", fnErr))

	assert.ErrorIs(t, err, fnErr)
	assert.Equal(t, []string{"open", "fn", "close"}, calls)
}

func TestWithDialog_BodyErrorWinsOverCloseError(t *testing.T) {
	session := newTestSession(t)
	var calls []string
	fnErr := errors.New("entry missing")
	closeErr := errors.New("close button gone")

	err := session.WithDialog(context.Background(),
		step(&calls, "open", nil),
		step(&calls, "close", closeErr),
		step(&calls, "fn", fnErr))

	assert.ErrorIs(t, err, fnErr)
	assert.NotErrorIs(t, err, closeErr)
	assert.Equal(t, []string{"open", "fn", "close"}, calls)
}

func TestWithDialog_CloseFailureAfterSuccessIsAnError(t *testing.T) {
	session := newTestSession(t)
	var calls []string
	closeErr := errors.New("close button gone")

	err := session.WithDialog(context.Background(),
		step(&calls, "open", nil),
		step(&calls, "close", closeErr),
		step(&calls, "fn", nil))

	assert.ErrorIs(t, err, closeErr)
}
