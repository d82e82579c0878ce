package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gamecalendar/internal/domain"
)

type persistOp struct {
	name  string
	apply func(ctx context.Context, repo domain.CalendarRepository) error
}

// PersistQueue applies calendar writes in the order the registry enqueued them. Enqueue
// never blocks on the database, so the registry may call it while holding its lock.
type PersistQueue struct {
	repo    domain.CalendarRepository
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending []persistOp
	wake    chan struct{}

	applyMu sync.Mutex
}

// NewPersistQueue returns a queue writing to repo. timeout bounds each write.
func NewPersistQueue(repo domain.CalendarRepository, logger *slog.Logger, timeout time.Duration) *PersistQueue {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistQueue{
		repo:    repo,
		logger:  logger,
		timeout: timeout,
		wake:    make(chan struct{}, 1),
	}
}

func (q *PersistQueue) enqueue(op persistOp) {
	if q == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, op)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *PersistQueue) saveEvent(e *domain.CalendarEvent) {
	if q == nil {
		return
	}
	snapshot := e.Clone()
	q.enqueue(persistOp{name: "save_event", apply: func(ctx context.Context, repo domain.CalendarRepository) error {
		return repo.SaveEvent(ctx, snapshot)
	}})
}

func (q *PersistQueue) deleteEvent(id domain.EventID) {
	q.enqueue(persistOp{name: "delete_event", apply: func(ctx context.Context, repo domain.CalendarRepository) error {
		return repo.DeleteEvent(ctx, id)
	}})
}

func (q *PersistQueue) saveInvite(inv *domain.CalendarInvite) {
	if q == nil {
		return
	}
	snapshot := inv.Clone()
	q.enqueue(persistOp{name: "save_invite", apply: func(ctx context.Context, repo domain.CalendarRepository) error {
		return repo.SaveInvite(ctx, snapshot)
	}})
}

func (q *PersistQueue) deleteInvites(ids ...domain.InviteID) {
	if len(ids) == 0 {
		return
	}
	q.enqueue(persistOp{name: "delete_invites", apply: func(ctx context.Context, repo domain.CalendarRepository) error {
		return repo.DeleteInvites(ctx, ids)
	}})
}

// Pending returns the number of writes not yet applied.
func (q *PersistQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Run applies writes until ctx is done, then flushes what is left.
func (q *PersistQueue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			q.Flush(context.WithoutCancel(ctx))
			return nil
		case <-q.wake:
			q.Flush(ctx)
		}
	}
}

// Flush applies every pending write. Failures are logged and dropped.
func (q *PersistQueue) Flush(ctx context.Context) {
	q.applyMu.Lock()
	defer q.applyMu.Unlock()

	q.mu.Lock()
	ops := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, op := range ops {
		opCtx, cancel := context.WithTimeout(ctx, q.timeout)
		err := op.apply(opCtx, q.repo)
		cancel()
		if err != nil {
			q.logger.ErrorContext(ctx, "calendar write failed", "op", op.name, "err", err)
		}
	}
}
