package kv

import "context"

// MemoryStore is an in-process Store. It backs tests and acts as the
// fallback when the OS keyring is unavailable; sessions stored here do not
// survive the process.
type MemoryStore struct {
	data map[string][]byte
	w    *worker
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}, w: newWorker()}
}

// Set stores a copy of value under key.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) bool {
	return s.w.do(ctx, func() {
		s.data[key] = append([]byte(nil), value...)
	})
}

// Get retrieves the value for key or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		val []byte
		err error
	)
	if !s.w.do(ctx, func() {
		v, ok := s.data[key]
		if !ok {
			err = ErrNotFound
			return
		}
		val = append([]byte(nil), v...)
	}) {
		return nil, context.Cause(ctx)
	}
	return val, err
}

// Delete removes key. Missing keys succeed.
func (s *MemoryStore) Delete(ctx context.Context, key string) bool {
	return s.w.do(ctx, func() {
		delete(s.data, key)
	})
}

// Available always reports true while the worker is running.
func (s *MemoryStore) Available(ctx context.Context) bool {
	return s.w.do(ctx, func() {})
}

// Close stops the worker goroutine.
func (s *MemoryStore) Close() error {
	s.w.close()
	return nil
}

var _ Store = (*MemoryStore)(nil)
