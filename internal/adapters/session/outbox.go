// Package session holds the per-player message queues that stand in for the game
// client connection.
package session

import (
	"context"
	"errors"
	"sync"

	"gamecalendar/internal/domain"
)

// ErrOverflow is returned by Deliver when the oldest queued message had to be dropped.
var ErrOverflow = errors.New("player outbox full, oldest message dropped")

// DefaultOutboxSize bounds each player's queue when no size is configured.
const DefaultOutboxSize = 256

// Outbox keeps undelivered calendar messages per player until the client polls them.
type Outbox struct {
	size int

	mu     sync.Mutex
	queues map[domain.PlayerID][]domain.Message
}

// NewOutbox returns an Outbox keeping at most size messages per player.
func NewOutbox(size int) *Outbox {
	if size <= 0 {
		size = DefaultOutboxSize
	}
	return &Outbox{size: size, queues: make(map[domain.PlayerID][]domain.Message)}
}

var _ domain.Messenger = (*Outbox)(nil)

// Deliver appends msg to the recipient's queue.
func (o *Outbox) Deliver(ctx context.Context, msg domain.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	q := append(o.queues[msg.To], msg)
	var err error
	if len(q) > o.size {
		q = q[len(q)-o.size:]
		err = ErrOverflow
	}
	o.queues[msg.To] = q
	return err
}

// Drain removes and returns up to limit queued messages for player, oldest first.
// limit <= 0 drains everything.
func (o *Outbox) Drain(player domain.PlayerID, limit int) []domain.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	q := o.queues[player]
	if limit <= 0 || limit > len(q) {
		limit = len(q)
	}
	out := make([]domain.Message, limit)
	copy(out, q[:limit])
	if rest := q[limit:]; len(rest) > 0 {
		o.queues[player] = append([]domain.Message(nil), rest...)
	} else {
		delete(o.queues, player)
	}
	return out
}

// Len returns the number of messages waiting for player.
func (o *Outbox) Len(player domain.PlayerID) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queues[player])
}

// Forget drops every message queued for player.
func (o *Outbox) Forget(player domain.PlayerID) {
	o.mu.Lock()
	delete(o.queues, player)
	o.mu.Unlock()
}
