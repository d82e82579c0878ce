package services

import (
	"context"
	"sync"

	"gamecalendar/internal/domain"
)

type lockoutKey struct {
	mapID      uint32
	difficulty uint8
	instanceID uint32
}

func keyOf(l domain.DungeonLockout) lockoutKey {
	return lockoutKey{mapID: l.MapID, difficulty: l.Difficulty, instanceID: l.InstanceID}
}

// LockoutWatcher is a domain.LockoutInfo that remembers the lockouts each player was last
// shown and raises raid lockout alerts for the difference on the next read. The first read
// for a player only records a baseline.
type LockoutWatcher struct {
	source   domain.LockoutInfo
	notifier *Notifier

	mu   sync.Mutex
	seen map[domain.PlayerID]map[lockoutKey]domain.DungeonLockout
}

func NewLockoutWatcher(source domain.LockoutInfo, notifier *Notifier) *LockoutWatcher {
	return &LockoutWatcher{
		source:   source,
		notifier: notifier,
		seen:     make(map[domain.PlayerID]map[lockoutKey]domain.DungeonLockout),
	}
}

// Lockouts returns the source's lockouts for player and alerts them about binds gained or
// reset since the previous call.
func (w *LockoutWatcher) Lockouts(ctx context.Context, player domain.PlayerID) ([]domain.DungeonLockout, error) {
	current, err := w.source.Lockouts(ctx, player)
	if err != nil {
		return nil, err
	}

	next := make(map[lockoutKey]domain.DungeonLockout, len(current))
	for _, l := range current {
		next[keyOf(l)] = l
	}

	var added, removed []domain.DungeonLockout
	w.mu.Lock()
	prev, known := w.seen[player]
	w.seen[player] = next
	w.mu.Unlock()

	if !known {
		return current, nil
	}
	for _, l := range current {
		if _, ok := prev[keyOf(l)]; !ok {
			added = append(added, l)
		}
	}
	for k, l := range prev {
		if _, ok := next[k]; !ok {
			removed = append(removed, l)
		}
	}

	for _, l := range removed {
		w.notifier.RaidLockoutRemoved(ctx, player, l)
	}
	for _, l := range added {
		w.notifier.RaidLockoutAdded(ctx, player, l)
	}
	return current, nil
}

// Forget drops the baseline kept for player.
func (w *LockoutWatcher) Forget(player domain.PlayerID) {
	w.mu.Lock()
	delete(w.seen, player)
	w.mu.Unlock()
}
