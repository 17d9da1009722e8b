package handlers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/heroimport/internal/events"
)

// mockHandler is a test implementation of Handler
type mockHandler struct {
	name    string
	started atomic.Bool
	stopped atomic.Bool
}

func (h *mockHandler) Name() string { return h.name }

func (h *mockHandler) Start(ctx context.Context) error {
	h.started.Store(true)
	<-ctx.Done()
	h.stopped.Store(true)
	return ctx.Err()
}

var _ Handler = (*mockHandler)(nil)
var _ Handler = (*PruneHandler)(nil)

func TestHandler_StartStop(t *testing.T) {
	h := &mockHandler{name: "test"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.Start(ctx)
	}()

	require.Eventually(t, h.started.Load, time.Second, 5*time.Millisecond)
	assert.False(t, h.stopped.Load())

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	assert.True(t, h.stopped.Load())
}

func TestBaseHandler_Fields(t *testing.T) {
	bus := events.NewBus(nil, nil)
	defer bus.Close()

	base := NewBaseHandler(bus, nil)
	assert.Same(t, bus, base.Bus())
	assert.NotNil(t, base.Logger())
}
