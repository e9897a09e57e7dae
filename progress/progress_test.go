package progress

import (
	"errors"
	"testing"
)

func TestNewDisabledReturnsNoOp(t *testing.T) {
	ind := New(false, Options{})
	if _, ok := ind.(*noOp); !ok {
		t.Fatalf("expected *noOp, got %T", ind)
	}
}

func TestNewEnabledFallsBackToNoOpWithoutTerminal(t *testing.T) {
	// Test binaries never run with stdout attached to a terminal, so
	// New(true, ...) must degrade to the no-op rather than panic or
	// block on a writer with nowhere to render.
	ind := New(true, Options{})
	if _, ok := ind.(*noOp); !ok {
		t.Fatalf("expected *noOp fallback, got %T", ind)
	}
}

func TestNoOpTracksCurrentAndTotal(t *testing.T) {
	ind := newNoOp(Options{})
	ind.SetTotal(10)
	ind.SetCurrent(3)
	ind.SetCurrent(5)
	if ind.current != 5 {
		t.Fatalf("expected current=5, got %d", ind.current)
	}
	if ind.total != 10 {
		t.Fatalf("expected total=10, got %d", ind.total)
	}
}

func TestNoOpFinishRecordsOutcome(t *testing.T) {
	ind := newNoOp(Options{})
	ind.Finish(nil)
	if ind.err != nil {
		t.Fatalf("expected nil err after successful finish, got %v", ind.err)
	}

	failing := newNoOp(Options{})
	boom := errors.New("boom")
	failing.Finish(boom)
	if failing.err != boom {
		t.Fatalf("expected recorded err %v, got %v", boom, failing.err)
	}
}
