package kv

import (
	"bytes"
	"context"
	"errors"

	"github.com/zalando/go-keyring"
)

// probeKey is the throwaway key used by Available.
const probeKey = "__drawball_probe__"

// KeyringStore persists values in the OS keyring under a fixed service name.
// The keyring has proven flaky on headless machines (locked collections,
// missing dbus), so every write is verified by an immediate read-back and
// callers are expected to WaitForReady before trusting it.
type KeyringStore struct {
	service string
	w       *worker
}

// NewKeyringStore creates a keyring-backed store. An empty service falls
// back to "drawball".
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = "drawball"
	}
	return &KeyringStore{service: service, w: newWorker()}
}

// Set stores value under key and verifies the write by reading it back.
// Any keyring error or verification mismatch reports false.
func (s *KeyringStore) Set(ctx context.Context, key string, value []byte) bool {
	ok := false
	submitted := s.w.do(ctx, func() {
		if err := keyring.Set(s.service, key, string(value)); err != nil {
			return
		}
		got, err := keyring.Get(s.service, key)
		ok = err == nil && bytes.Equal([]byte(got), value)
	})
	return submitted && ok
}

// Get retrieves the value for key, mapping the keyring's not-found error to
// ErrNotFound.
func (s *KeyringStore) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		val []byte
		err error
	)
	if !s.w.do(ctx, func() {
		var raw string
		raw, err = keyring.Get(s.service, key)
		if errors.Is(err, keyring.ErrNotFound) {
			err = ErrNotFound
			return
		}
		if err == nil {
			val = []byte(raw)
		}
	}) {
		return nil, context.Cause(ctx)
	}
	return val, err
}

// Delete removes key and verifies it is gone. A missing key counts as
// success.
func (s *KeyringStore) Delete(ctx context.Context, key string) bool {
	ok := false
	submitted := s.w.do(ctx, func() {
		err := keyring.Delete(s.service, key)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return
		}
		_, err = keyring.Get(s.service, key)
		ok = errors.Is(err, keyring.ErrNotFound)
	})
	return submitted && ok
}

// Available round-trips a probe key through the keyring.
func (s *KeyringStore) Available(ctx context.Context) bool {
	ok := false
	submitted := s.w.do(ctx, func() {
		if err := keyring.Set(s.service, probeKey, "probe"); err != nil {
			return
		}
		got, err := keyring.Get(s.service, probeKey)
		_ = keyring.Delete(s.service, probeKey)
		ok = err == nil && got == "probe"
	})
	return submitted && ok
}

// Close stops the worker goroutine.
func (s *KeyringStore) Close() error {
	s.w.close()
	return nil
}

var _ Store = (*KeyringStore)(nil)
