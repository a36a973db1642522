package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/grocerline/basketd/internal/domain/model"
	testhelpers "github.com/grocerline/basketd/internal/test"
)

func TestBackoff(t *testing.T) {
	base := 2 * time.Second
	max := 30 * time.Second

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 2 * time.Second},
		{attempt: 1, want: 4 * time.Second},
		{attempt: 2, want: 8 * time.Second},
		{attempt: 3, want: 16 * time.Second},
		{attempt: 4, want: 30 * time.Second},
		{attempt: 10, want: 30 * time.Second},
	}
	for _, tc := range tests {
		if got := Backoff(base, max, tc.attempt); got != tc.want {
			t.Errorf("Backoff(attempt=%d) = %s, want %s", tc.attempt, got, tc.want)
		}
	}

	if got := Backoff(time.Minute, 30*time.Second, 0); got != 30*time.Second {
		t.Errorf("base above cap must be clamped, got %s", got)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestSyncRetrierStopsOnceLoaded(t *testing.T) {
	facade := &testhelpers.SyncFacadeStub{}
	facade.SyncFn = func(context.Context) error {
		for _, kind := range model.Kinds {
			facade.SetLoaded(kind)
		}
		return nil
	}

	r := NewSyncRetrier(facade, time.Millisecond, 10*time.Millisecond, 50, testLogger())
	r.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for facade.Attempts() == 0 {
		select {
		case <-deadline:
			t.Fatal("sync never attempted")
		case <-time.After(time.Millisecond):
		}
	}
	r.Stop()

	status, _ := facade.CatalogStatus(context.Background())
	if !status.AllLoaded() {
		t.Fatalf("expected loaded flags after successful sync, got %+v", status)
	}
}

func TestSyncRetrierFirstAttemptIsSilent(t *testing.T) {
	facade := &testhelpers.SyncFacadeStub{
		SyncFn: func(context.Context) error { return errors.New("catalog down") },
	}

	r := NewSyncRetrier(facade, time.Millisecond, 4*time.Millisecond, 4, testLogger())
	r.Start(context.Background())
	defer r.Stop()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case state := <-r.States():
			if state.Attempt < 1 {
				t.Fatalf("attempt %d published a state; the first attempt must stay silent", state.Attempt)
			}
			return
		case <-deadline:
			t.Fatal("no retry state published")
		}
	}
}

func TestSyncRetrierPublishesTerminalState(t *testing.T) {
	facade := &testhelpers.SyncFacadeStub{
		SyncFn: func(context.Context) error { return errors.New("catalog down") },
	}

	const maxRetries = 3
	r := NewSyncRetrier(facade, time.Millisecond, 2*time.Millisecond, maxRetries, testLogger())
	r.Start(context.Background())
	defer r.Stop()

	deadline := time.After(2 * time.Second)
	terminal := 0
	for terminal < len(model.Kinds) {
		select {
		case state := <-r.States():
			if !state.Terminal {
				continue
			}
			if state.Attempt != maxRetries {
				t.Fatalf("terminal state at attempt %d, want %d", state.Attempt, maxRetries)
			}
			terminal++
		case <-deadline:
			t.Fatalf("saw %d terminal states, want %d", terminal, len(model.Kinds))
		}
	}

	// The budget is per segment: both loops ran to exhaustion.
	if got := facade.Attempts(); got != maxRetries*len(model.Kinds) {
		t.Fatalf("expected %d attempts total, got %d", maxRetries*len(model.Kinds), got)
	}
}

func TestSyncRetrierStopCancelsBackoffWait(t *testing.T) {
	facade := &testhelpers.SyncFacadeStub{
		SyncFn: func(context.Context) error { return errors.New("catalog down") },
	}

	// Long delays keep the loops parked in their backoff wait.
	r := NewSyncRetrier(facade, time.Hour, time.Hour, 50, testLogger())
	r.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for facade.Attempts() < len(model.Kinds) {
		select {
		case <-deadline:
			t.Fatal("sync loops never started")
		case <-time.After(time.Millisecond):
		}
	}

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not interrupt the backoff wait")
	}
}
