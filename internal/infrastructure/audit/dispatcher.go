package audit

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inkwell/content-platform/internal/api/metrics"
	"github.com/inkwell/content-platform/internal/core/domain"
	"github.com/inkwell/content-platform/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	appendTimeout  = 5 * time.Second
)

// Dispatcher records audit events fire-and-forget: Record hands the event to
// a worker channel and returns. Events for the same user land on the same
// worker, preserving per-user ordering. Append failures and overflow drops
// are logged and counted, never propagated.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an event without blocking the caller. When the shard's
// buffer is full the event is dropped: audit is best-effort and must never
// delay or fail the primary operation.
func (d *Dispatcher) Record(event domain.AuditEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Importance == "" {
		event.Importance = domain.ImportanceStandard
	}
	if event.RetentionDays <= 0 {
		event.RetentionDays = retentionFor(event.Importance)
	}

	select {
	case d.workers[d.shardIndex(event.UserID)] <- event:
	default:
		metrics.AuditEventsDroppedTotal.WithLabelValues("buffer_full").Inc()
		d.log.Warn().Str("action", event.Action).Msg("audit buffer full, event dropped")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			appendCtx, cancel := context.WithTimeout(context.Background(), appendTimeout)
			if err := d.repo.Append(appendCtx, event); err != nil {
				metrics.AuditEventsDroppedTotal.WithLabelValues("append_failed").Inc()
				d.log.Error().Err(err).
					Str("action", event.Action).
					Int("worker_id", id).
					Msg("audit append failed")
			}
			cancel()
		}
	}
}

func retentionFor(importance domain.AuditImportance) int {
	switch importance {
	case domain.ImportanceHigh:
		return 365
	case domain.ImportanceLow:
		return 30
	default:
		return 90
	}
}
