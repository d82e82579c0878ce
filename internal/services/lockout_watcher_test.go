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

type stubLockouts struct {
	byPlayer map[domain.PlayerID][]domain.DungeonLockout
	err      error
}

func (s *stubLockouts) Lockouts(ctx context.Context, player domain.PlayerID) ([]domain.DungeonLockout, error) {
	return s.byPlayer[player], s.err
}

func TestLockoutWatcher_AlertsOnChange(t *testing.T) {
	ctx := context.Background()
	reset := time.Date(2026, 10, 27, 3, 0, 0, 0, time.UTC)
	ony := domain.DungeonLockout{MapID: 249, InstanceID: 11, ResetTime: reset}
	mc := domain.DungeonLockout{MapID: 409, InstanceID: 12, ResetTime: reset}
	bwl := domain.DungeonLockout{MapID: 469, InstanceID: 13, ResetTime: reset}

	src := &stubLockouts{byPlayer: map[domain.PlayerID][]domain.DungeonLockout{creator: {ony, mc}}}
	msgs := &recordingMessenger{}
	w := NewLockoutWatcher(src, NewNotifier(msgs, testLogger))

	got, err := w.Lockouts(ctx, creator)
	require.NoError(t, err)
	assert.Equal(t, []domain.DungeonLockout{ony, mc}, got)
	assert.Empty(t, msgs.take(), "first read only records a baseline")

	src.byPlayer[creator] = []domain.DungeonLockout{mc, bwl}
	_, err = w.Lockouts(ctx, creator)
	require.NoError(t, err)
	sent := msgs.take()
	require.Len(t, sent, 2)
	assert.Equal(t, domain.MessageRaidLockoutRemove, sent[0].Kind)
	assert.Equal(t, ony, sent[0].Payload.(domain.RaidLockoutPayload).Lockout)
	assert.Equal(t, domain.MessageRaidLockoutAdd, sent[1].Kind)
	assert.Equal(t, bwl, sent[1].Payload.(domain.RaidLockoutPayload).Lockout)
	for _, m := range sent {
		assert.Equal(t, creator, m.To)
	}

	_, err = w.Lockouts(ctx, creator)
	require.NoError(t, err)
	assert.Empty(t, msgs.take())

	w.Forget(creator)
	src.byPlayer[creator] = nil
	_, err = w.Lockouts(ctx, creator)
	require.NoError(t, err)
	assert.Empty(t, msgs.take())
}

func TestLockoutWatcher_SourceErrorKeepsBaseline(t *testing.T) {
	ctx := context.Background()
	ony := domain.DungeonLockout{MapID: 249, InstanceID: 11}
	src := &stubLockouts{byPlayer: map[domain.PlayerID][]domain.DungeonLockout{creator: {ony}}}
	msgs := &recordingMessenger{}
	w := NewLockoutWatcher(src, NewNotifier(msgs, testLogger))

	_, err := w.Lockouts(ctx, creator)
	require.NoError(t, err)

	src.err = errors.New("db down")
	_, err = w.Lockouts(ctx, creator)
	require.Error(t, err)

	src.err = nil
	_, err = w.Lockouts(ctx, creator)
	require.NoError(t, err)
	assert.Empty(t, msgs.take())
}
