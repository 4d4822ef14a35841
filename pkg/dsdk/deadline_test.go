package dsdk

import (
	"errors"
	"testing"
	"time"

	"github.com/yuchia/drawball/pkg/dsdk/derr"
)

func TestDeadlineCompletesInTime(t *testing.T) {
	out := Deadline(time.Second, func() (int, error) {
		return 7, nil
	})
	if !out.Ok() {
		t.Fatalf("expected success, got err=%v timedOut=%v", out.Err, out.TimedOut)
	}
	if out.Value != 7 {
		t.Errorf("expected 7, got %d", out.Value)
	}
}

func TestDeadlinePropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	out := Deadline(time.Second, func() (int, error) {
		return 0, sentinel
	})
	if out.Ok() {
		t.Fatal("expected failure")
	}
	if !errors.Is(out.Err, sentinel) {
		t.Errorf("expected sentinel error, got %v", out.Err)
	}
	if out.TimedOut {
		t.Error("ordinary error mislabeled as timeout")
	}
}

func TestDeadlineTimesOut(t *testing.T) {
	done := make(chan struct{})
	out := Deadline(20*time.Millisecond, func() (int, error) {
		<-done
		return 1, nil
	})
	close(done)

	if !out.TimedOut {
		t.Fatal("expected timeout")
	}
	if !derr.IsCode(out.Err, derr.CodeTimeout) {
		t.Errorf("expected timeout code, got %v", out.Err)
	}
}

// A call that finishes after its budget must not block or panic: the result
// lands in the buffered channel and is dropped.
func TestDeadlineAbandonedCallDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	out := Deadline(10*time.Millisecond, func() (string, error) {
		<-release
		return "late", nil
	})
	if !out.TimedOut {
		t.Fatal("expected timeout")
	}
	close(release)
	// Give the abandoned goroutine a moment to finish its send.
	time.Sleep(20 * time.Millisecond)
}
