package services

import (
	"context"
	"sync/atomic"
)

// cancellationHandle is the cancellation token of one dispatched fetch.
// A new handle with a higher generation is created for every dispatch.
type cancellationHandle struct {
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	cancelled  atomic.Bool
}

func newCancellationHandle(parent context.Context, generation uint64) *cancellationHandle {
	ctx, cancel := context.WithCancel(parent)
	return &cancellationHandle{
		generation: generation,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Cancel signals cancellation. Only the first call has an effect; it
// returns true if this call sent the signal.
func (h *cancellationHandle) Cancel() bool {
	if !h.cancelled.CompareAndSwap(false, true) {
		return false
	}
	h.cancel()
	return true
}

// Cancelled returns true if Cancel has been called.
func (h *cancellationHandle) Cancelled() bool {
	return h.cancelled.Load()
}

// release frees the context resources without marking the handle cancelled.
func (h *cancellationHandle) release() {
	h.cancel()
}
