// Package signal turns interrupt signals into context cancellation for
// stepwire CLI commands. An interrupted run stops between steps and still
// disposes the worlds it started.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ErrInterrupted is the context cause recorded when a signal arrives.
var ErrInterrupted = errors.New("interrupted by signal")

// Handler owns a context that is canceled with ErrInterrupted on the first
// signal it receives.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	report, err := r.Run(h.Context(), scenarios)
//	if errors.Is(context.Cause(h.Context()), signal.ErrInterrupted) {
//	    // report is partial
//	}
type Handler struct {
	ctx    context.Context //nolint:containedctx // the handler owns this context
	cancel context.CancelCauseFunc

	sigChan     chan os.Signal
	interrupted chan struct{}
	first       sync.Once
	stop        sync.Once

	mu       sync.Mutex
	received os.Signal
}

// NewHandler starts listening for sigs, SIGINT and SIGTERM by default.
func NewHandler(parent context.Context, sigs ...os.Signal) *Handler {
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	ctx, cancel := context.WithCancelCause(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		sigChan:     make(chan os.Signal, 1),
		interrupted: make(chan struct{}),
	}
	signal.Notify(h.sigChan, sigs...)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-h.sigChan:
				h.handleSignal(sig)
			}
		}
	}()
	return h
}

// Context returns the handler's context.
func (h *Handler) Context() context.Context { return h.ctx }

// Interrupted is closed when the first signal arrives. Stop does not close it.
func (h *Handler) Interrupted() <-chan struct{} { return h.interrupted }

// Signal returns the first signal received, or nil.
func (h *Handler) Signal() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Stop stops listening and cancels the context without a cause. Calling it
// again has no effect.
func (h *Handler) Stop() {
	h.stop.Do(func() {
		signal.Stop(h.sigChan)
		h.cancel(nil)
	})
}

func (h *Handler) handleSignal(sig os.Signal) {
	h.first.Do(func() {
		h.mu.Lock()
		h.received = sig
		h.mu.Unlock()

		if sig == nil {
			h.cancel(ErrInterrupted)
		} else {
			h.cancel(fmt.Errorf("%w: %s", ErrInterrupted, sig))
		}
		close(h.interrupted)
	})
}
