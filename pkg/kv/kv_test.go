package kv

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	require.True(t, s.Set(ctx, "session", []byte(`{"access_token":"x"}`)))

	got, err := s.Get(ctx, "session")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"access_token":"x"}`), got)

	require.True(t, s.Delete(ctx, "session"))

	_, err = s.Get(ctx, "session")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDeleteMissingSucceeds(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	require.True(t, s.Delete(context.Background(), "never-set"))
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("abc"))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)

	got[0] = 'z'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}

func TestWaitForReadyImmediate(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	require.True(t, WaitForReady(context.Background(), s, time.Second))
}

func TestWaitForReadyTimesOut(t *testing.T) {
	s := &neverReady{}

	start := time.Now()
	ok := WaitForReady(context.Background(), s, 250*time.Millisecond)
	require.False(t, ok)
	require.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)
}

func TestWorkerSerializesConcurrentWriters(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Set(ctx, "k", []byte("v"))
				s.Get(ctx, "k")
			}
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)
}

// neverReady fakes a store whose backend never comes up.
type neverReady struct{}

func (*neverReady) Set(context.Context, string, []byte) bool      { return false }
func (*neverReady) Get(context.Context, string) ([]byte, error)   { return nil, ErrNotFound }
func (*neverReady) Delete(context.Context, string) bool           { return false }
func (*neverReady) Available(context.Context) bool                { return false }
func (*neverReady) Close() error                                  { return nil }
