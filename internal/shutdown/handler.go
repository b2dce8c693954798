package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"deepcut/internal/logger"
)

// Handler cancels in-flight work on SIGINT/SIGTERM and runs registered
// cleanups exactly once.
type Handler struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *logger.Logger

	mu         sync.Mutex
	cleanupFns []func()
	once       sync.Once
	stop       func()
}

// New creates a new shutdown handler
func New(log *logger.Logger) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		ctx:    ctx,
		cancel: cancel,
		logger: log,
		stop:   func() {},
	}
}

// Context is canceled when shutdown starts.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// AddCleanup registers fn. Cleanups run in reverse registration order.
func (h *Handler) AddCleanup(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanupFns = append(h.cleanupFns, fn)
}

// Listen starts listening for shutdown signals. A second signal exits
// immediately.
func (h *Handler) Listen() {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	h.mu.Lock()
	h.stop = func() { signal.Stop(sigChan) }
	h.mu.Unlock()

	go func() {
		select {
		case <-sigChan:
		case <-h.ctx.Done():
			return
		}
		h.logger.Warn("Interrupted, stopping search (press Ctrl+C again to force)")
		go func() {
			if _, ok := <-sigChan; ok {
				os.Exit(130)
			}
		}()
		h.Shutdown()
	}()
}

// Shutdown cancels the context and runs cleanups. Safe to call repeatedly.
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		h.cancel()

		h.mu.Lock()
		fns := h.cleanupFns
		stop := h.stop
		h.mu.Unlock()

		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
		stop()
	})
}
