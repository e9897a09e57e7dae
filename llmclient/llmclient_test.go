package llmclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docunify/docunify/docconfig"
	"github.com/docunify/docunify/docerr"
)

type fakeBackend struct {
	failuresBeforeSuccess int
	calls                 int
}

func (f *fakeBackend) Invoke(_ context.Context, req Request) (Response, error) {
	f.calls++
	if f.calls <= f.failuresBeforeSuccess {
		return Response{}, errors.New("transient failure")
	}
	return Response{Content: "ok:" + req.Payload}, nil
}

func noSleep(time.Duration) {}

func TestEnhanceSucceedsAfterTransientFailures(t *testing.T) {
	backend := &fakeBackend{failuresBeforeSuccess: 1}
	c := New(backend, docconfig.Default().LLM)
	c.sleep = noSleep

	resp, err := c.Enhance(context.Background(), Request{BlockID: "b1", Payload: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "ok:hi" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if backend.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", backend.calls)
	}
}

func TestEnhanceReturnsExternalCallFailedAfterExhaustingRetries(t *testing.T) {
	backend := &fakeBackend{failuresBeforeSuccess: 10}
	c := New(backend, docconfig.Default().LLM)
	c.sleep = noSleep

	_, err := c.Enhance(context.Background(), Request{BlockID: "b1", Payload: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	var derr *docerr.Error
	if !errors.As(err, &derr) || derr.Code != docerr.ExternalCallFailed {
		t.Fatalf("expected ExternalCallFailed, got %v", err)
	}
	if backend.calls != 3 {
		t.Fatalf("expected 3 attempts (max_attempts), got %d", backend.calls)
	}
}

func TestEnhanceWithNilBackendFailsImmediately(t *testing.T) {
	c := New(nil, docconfig.Default().LLM)
	_, err := c.Enhance(context.Background(), Request{BlockID: "b1"})
	var derr *docerr.Error
	if !errors.As(err, &derr) || derr.Code != docerr.ExternalCallFailed {
		t.Fatalf("expected ExternalCallFailed, got %v", err)
	}
}
