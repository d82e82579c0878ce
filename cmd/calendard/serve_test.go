package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"gamecalendar/internal/adapters/session"
	"gamecalendar/internal/domain"
	"gamecalendar/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLockouts map[domain.PlayerID][]domain.DungeonLockout

func (s staticLockouts) Lockouts(ctx context.Context, player domain.PlayerID) ([]domain.DungeonLockout, error) {
	return s[player], nil
}

func TestCalendar_removePlayerDropsQueuedState(t *testing.T) {
	ctx := context.Background()
	const player domain.PlayerID = 100
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	outbox := session.NewOutbox(16)
	notifier := services.NewNotifier(outbox, logger)
	binds := staticLockouts{player: {{MapID: 249, InstanceID: 1}}}
	cal := &calendar{
		outbox:   outbox,
		notifier: notifier,
		lockouts: services.NewLockoutWatcher(binds, notifier),
		registry: services.NewRegistry(services.RegistryConfig{Notifier: notifier, Logger: logger}),
	}

	_, err := cal.registry.AddEvent(ctx, domain.AddEventParams{
		CreatorID: player,
		Title:     "Onyxia",
		Type:      domain.EventTypeRaid,
		DungeonID: 249,
		EventTime: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	_, err = cal.lockouts.Lockouts(ctx, player)
	require.NoError(t, err)
	require.Equal(t, 1, outbox.Len(player))

	events, invites := cal.removePlayer(ctx, player)
	assert.Equal(t, 1, events)
	assert.Zero(t, invites)
	assert.Zero(t, outbox.Len(player))

	// A fresh baseline: the reset bind raises no alert.
	binds[player] = nil
	_, err = cal.lockouts.Lockouts(ctx, player)
	require.NoError(t, err)
	assert.Zero(t, outbox.Len(player))
}
