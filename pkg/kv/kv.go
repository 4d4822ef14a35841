// Package kv provides the persistent key-value store used for the session
// record. This allows swapping backends (OS keyring, in-memory, etc.) without
// changing the auth manager implementation.
package kv

import (
	"context"
	"time"
)

// readyPollInterval is how often WaitForReady re-probes an unavailable store.
const readyPollInterval = 100 * time.Millisecond

// Store defines the persistence contract for the session record.
//
// Writes and deletes report success as a bool rather than an error: every
// mutation is verified by an immediate read-back, and a mismatch counts as
// failure. Callers treat a false return as "do not trust the store", never as
// a reason to abort.
type Store interface {
	// Set stores a value and verifies it by reading it back.
	Set(ctx context.Context, key string, value []byte) bool

	// Get retrieves a value by key. Returns ErrNotFound if the key does
	// not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key and verifies it is gone. Deleting a missing
	// key succeeds.
	Delete(ctx context.Context, key string) bool

	// Available probes the backend with a throwaway key.
	Available(ctx context.Context) bool

	// Close stops the store's worker. Pending operations complete first.
	Close() error
}

// WaitForReady polls Available until it reports true or the timeout elapses.
// Used once at startup before trusting the store with the session record.
func WaitForReady(ctx context.Context, s Store, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.Available(ctx) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(readyPollInterval):
		}
	}
	return false
}

// worker serializes store operations on a single goroutine. Operations are
// deferred to the worker rather than executed inline so concurrent accesses
// to the same key never interleave, and callers still await the result.
type worker struct {
	ops    chan func()
	closed chan struct{}
}

func newWorker() *worker {
	w := &worker{
		ops:    make(chan func()),
		closed: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *worker) run() {
	defer close(w.closed)
	for fn := range w.ops {
		fn()
	}
}

// do submits fn to the worker and waits for it to finish. Returns false if
// the context expires before the operation completes; the operation itself
// may still run, mirroring abandoned network waits elsewhere in the SDK.
func (w *worker) do(ctx context.Context, fn func()) bool {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}
	select {
	case w.ops <- wrapped:
	case <-ctx.Done():
		return false
	}
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *worker) close() {
	close(w.ops)
	<-w.closed
}
