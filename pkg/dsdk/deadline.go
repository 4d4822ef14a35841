package dsdk

import (
	"time"

	"github.com/yuchia/drawball/pkg/dsdk/derr"
)

// Per-call budgets. A timeout abandons the local wait only; nothing is
// cancelled server-side, so an abandoned call may still complete upstream.
const (
	roleQueryTimeout    = 3 * time.Second
	mutationTimeout     = 5 * time.Second
	passwordTimeout     = 10 * time.Second
	remoteLogoutTimeout = 1 * time.Second
)

// Outcome is the discriminated result of a deadline-bounded call. TimedOut
// distinguishes a budget overrun from an ordinary error so fallback logic can
// treat them differently if it ever needs to.
type Outcome[T any] struct {
	Value    T
	Err      error
	TimedOut bool
}

// Ok reports whether the call completed without error inside its budget.
func (o Outcome[T]) Ok() bool {
	return o.Err == nil && !o.TimedOut
}

// Deadline runs fn on its own goroutine and races it against a timer. On
// timeout the goroutine is abandoned, not cancelled; its eventual result is
// discarded via the buffered channel.
func Deadline[T any](d time.Duration, fn func() (T, error)) Outcome[T] {
	type res struct {
		v   T
		err error
	}
	ch := make(chan res, 1)
	go func() {
		v, err := fn()
		ch <- res{v: v, err: err}
	}()
	select {
	case r := <-ch:
		return Outcome[T]{Value: r.v, Err: r.err}
	case <-time.After(d):
		return Outcome[T]{
			Err:      derr.Newf(derr.CodeTimeout, "timed out after %s", d),
			TimedOut: true,
		}
	}
}
