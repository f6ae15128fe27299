package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkwell/content-platform/internal/core/domain"
)

type stubAuditRepo struct {
	mu       sync.Mutex
	appended []domain.AuditEvent
	err      error
	done     chan struct{}
}

func newStubAuditRepo(expect int) *stubAuditRepo {
	r := &stubAuditRepo{done: make(chan struct{}, expect)}
	return r
}

func (r *stubAuditRepo) Append(_ context.Context, event domain.AuditEvent) error {
	r.mu.Lock()
	r.appended = append(r.appended, event)
	r.mu.Unlock()
	r.done <- struct{}{}
	return r.err
}

func (r *stubAuditRepo) waitFor(t *testing.T, n int) []domain.AuditEvent {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for append %d of %d", i+1, n)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditEvent, len(r.appended))
	copy(out, r.appended)
	return out
}

func TestDispatcher_RecordAppends(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := newStubAuditRepo(1)
	d := NewDispatcher(2, repo, zerolog.Nop())
	d.Start(ctx)

	d.Record(domain.AuditEvent{
		UserID: "acc-1",
		Action: domain.AuditLogin,
		Entity: "account",
	})

	events := repo.waitFor(t, 1)
	got := events[0]
	if got.ID == "" {
		t.Fatalf("dispatcher must assign an event id")
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("dispatcher must stamp created_at")
	}
	if got.Importance != domain.ImportanceStandard {
		t.Fatalf("expected default importance, got %s", got.Importance)
	}
	if got.RetentionDays != 90 {
		t.Fatalf("expected standard retention, got %d", got.RetentionDays)
	}
}

func TestDispatcher_RetentionByImportance(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := newStubAuditRepo(2)
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(ctx)

	d.Record(domain.AuditEvent{UserID: "u", Action: "a", Importance: domain.ImportanceHigh})
	d.Record(domain.AuditEvent{UserID: "u", Action: "b", Importance: domain.ImportanceLow})

	events := repo.waitFor(t, 2)
	byAction := map[string]int{}
	for _, e := range events {
		byAction[e.Action] = e.RetentionDays
	}
	if byAction["a"] != 365 || byAction["b"] != 30 {
		t.Fatalf("unexpected retention: %+v", byAction)
	}
}

func TestDispatcher_PerUserOrdering(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := newStubAuditRepo(10)
	d := NewDispatcher(4, repo, zerolog.Nop())
	d.Start(ctx)

	actions := []string{"e0", "e1", "e2", "e3", "e4", "e5", "e6", "e7", "e8", "e9"}
	for _, a := range actions {
		d.Record(domain.AuditEvent{UserID: "acc-1", Action: a})
	}

	events := repo.waitFor(t, len(actions))
	for i, e := range events {
		if e.Action != actions[i] {
			t.Fatalf("events for one user must keep order: got %s at %d", e.Action, i)
		}
	}
}

func TestDispatcher_AppendFailureDoesNotPropagate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := newStubAuditRepo(2)
	repo.err = errors.New("mongo down")
	d := NewDispatcher(1, repo, zerolog.Nop())
	d.Start(ctx)

	// Record never returns an error; a failing store only shows up in logs
	// and counters, and later events still flow.
	d.Record(domain.AuditEvent{UserID: "u", Action: "first"})
	d.Record(domain.AuditEvent{UserID: "u", Action: "second"})

	events := repo.waitFor(t, 2)
	if len(events) != 2 {
		t.Fatalf("expected both events attempted, got %d", len(events))
	}
}

func TestDispatcher_DropsWhenSaturated(t *testing.T) {
	// Never started: nothing drains the shard, so the buffer fills and
	// Record must still return immediately.
	repo := newStubAuditRepo(0)
	d := NewDispatcher(1, repo, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Record(domain.AuditEvent{UserID: "u", Action: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a saturated buffer")
	}
}
