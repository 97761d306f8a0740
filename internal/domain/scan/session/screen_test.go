// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/masadchattha/QRCodeHelper/internal/domain/scan/model"
)

func TestScreen_OpenReplacesActiveSession(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dev := &fakeDevice{}
	screen := NewScreen(context.Background(), Deps{Gate: newFakeGate(model.AuthGranted), Device: dev})

	first := screen.Open()
	require.NoError(t, first.Start())
	waitState(t, first, model.SessionRunning)
	firstPipe := dev.last()

	second := screen.Open()
	assert.Equal(t, model.SessionClosed, first.State(), "prior session is torn down first")
	assert.Equal(t, int32(1), firstPipe.releases.Load())
	assert.Same(t, second, screen.Active())
	assert.NotEqual(t, first.ID(), second.ID())

	require.NoError(t, screen.Close())
	assert.Nil(t, screen.Active())
	assert.Equal(t, model.SessionClosed, second.State())
	require.NoError(t, screen.Close())
}
