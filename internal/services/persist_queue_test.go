package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamecalendar/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistQueue_AppliesInOrder(t *testing.T) {
	repo := newFakeCalendarRepo()
	q := NewPersistQueue(repo, testLogger, time.Second)
	e := domain.NewCalendarEvent(1, creator, 0, domain.EventTypeRaid, domain.RepeatNever, domain.NoDungeon, raidTime, domain.EventFlags{}, time.Time{}, "a", "", 0)

	q.saveEvent(e)
	e.Title = "mutated after enqueue"
	q.deleteInvites()
	q.deleteEvent(1)
	q.saveEvent(e)
	require.Equal(t, 3, q.Pending())

	q.Flush(context.Background())
	assert.Equal(t, []string{"save_event", "delete_event", "save_event"}, repo.ops)
	assert.Equal(t, "mutated after enqueue", repo.events[1].Title)
}

func TestPersistQueue_SnapshotsAtEnqueue(t *testing.T) {
	repo := newFakeCalendarRepo()
	q := NewPersistQueue(repo, testLogger, time.Second)
	inv := domain.NewCalendarInvite(4, 1, creator, 200, domain.InviteStatusInvited, domain.RankPlayer, "", raidTime)

	q.saveInvite(inv)
	inv.Status = domain.InviteStatusDeclined
	q.Flush(context.Background())

	assert.Equal(t, domain.InviteStatusInvited, repo.invites[4].Status)
}

func TestPersistQueue_FailuresAreDropped(t *testing.T) {
	repo := newFakeCalendarRepo()
	repo.saveErr = errors.New("constraint violation")
	q := NewPersistQueue(repo, testLogger, time.Second)
	e := domain.NewCalendarEvent(1, creator, 0, domain.EventTypeRaid, domain.RepeatNever, domain.NoDungeon, raidTime, domain.EventFlags{}, time.Time{}, "a", "", 0)

	q.saveEvent(e)
	q.deleteEvent(2)
	q.Flush(context.Background())

	assert.Zero(t, q.Pending())
	assert.Equal(t, []string{"save_event", "delete_event"}, repo.ops)
}

func TestPersistQueue_RunFlushesOnShutdown(t *testing.T) {
	repo := newFakeCalendarRepo()
	q := NewPersistQueue(repo, testLogger, time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	q.saveInvite(domain.NewCalendarInvite(9, 1, creator, 200, domain.InviteStatusInvited, domain.RankPlayer, "", raidTime))
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Zero(t, q.Pending())
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Contains(t, repo.invites, domain.InviteID(9))
}

func TestPersistQueue_NilIsNoop(t *testing.T) {
	var q *PersistQueue
	assert.NotPanics(t, func() {
		q.saveEvent(domain.NewCalendarEvent(1, creator, 0, domain.EventTypeRaid, domain.RepeatNever, domain.NoDungeon, raidTime, domain.EventFlags{}, time.Time{}, "a", "", 0))
		q.deleteEvent(1)
		q.deleteInvites(1, 2)
	})
}
