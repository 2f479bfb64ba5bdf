package input_test

import (
	"context"
	"os"
	"syscall"
	"testing"

	"github.com/rook-computer/mirror/internal/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainKeepsOrder(t *testing.T) {
	bus := input.NewBus()
	require.True(t, bus.Send(input.Event{Kind: input.Resize, Width: 800, Height: 600}))
	require.True(t, bus.Send(input.Event{Kind: input.Reload}))

	events := bus.Drain()

	require.Len(t, events, 2)
	assert.Equal(t, input.Resize, events[0].Kind)
	assert.Equal(t, 800, events[0].Width)
	assert.Equal(t, input.Reload, events[1].Kind)
	assert.Empty(t, bus.Drain())
}

func TestQuitSurvivesFullBuffer(t *testing.T) {
	bus := input.NewBus()
	for bus.Send(input.Event{Kind: input.Reload}) {
	}
	assert.False(t, bus.Send(input.Event{Kind: input.Reload}))
	assert.True(t, bus.Send(input.Event{Kind: input.Quit}))

	events := bus.Drain()

	assert.Equal(t, input.Quit, events[len(events)-1].Kind)
	assert.True(t, bus.QuitRequested())
	// the flag is sticky
	assert.Equal(t, []input.Event{{Kind: input.Quit, Source: "bus"}}, bus.Drain())
}

func TestFromSignal(t *testing.T) {
	ev, ok := input.FromSignal(syscall.SIGHUP)
	require.True(t, ok)
	assert.Equal(t, input.Reload, ev.Kind)

	ev, ok = input.FromSignal(syscall.SIGTERM)
	require.True(t, ok)
	assert.Equal(t, input.Quit, ev.Kind)

	_, ok = input.FromSignal(os.Kill)
	assert.False(t, ok)
}

func TestWatchSignalsStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	input.WatchSignals(ctx, input.NewBus())
	cancel()
	assert.Equal(t, "quit", input.Quit.String())
}
