package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

func newTestEvent(maxInvites int) *CalendarEvent {
	return NewCalendarEvent(1, 100, 0, EventTypeRaid, RepeatNever, NoDungeon, testTime, EventFlags{}, time.Time{}, "Raid night", "bring flasks", maxInvites)
}

func TestNewCalendarEvent_DefaultMaxInvites(t *testing.T) {
	e := newTestEvent(0)
	assert.Equal(t, DefaultMaxInvites, e.MaxInvites)
	assert.Equal(t, 0, e.InviteCount())
}

func TestCalendarEvent_AddInvite(t *testing.T) {
	e := newTestEvent(2)

	require.NoError(t, e.AddInvite(NewCalendarInvite(1, 0, 100, 200, InviteStatusInvited, RankPlayer, "", testTime)))
	require.NoError(t, e.AddInvite(NewCalendarInvite(2, 0, 100, 201, InviteStatusInvited, RankPlayer, "", testTime)))

	err := e.AddInvite(NewCalendarInvite(3, 0, 100, 202, InviteStatusInvited, RankPlayer, "", testTime))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.Equal(t, 2, e.InviteCount())
	_, ok := e.InviteByID(3)
	assert.False(t, ok)

	inv, ok := e.InviteByID(1)
	require.True(t, ok)
	assert.Equal(t, EventID(1), inv.EventID)
}

func TestCalendarEvent_InviteByPlayer(t *testing.T) {
	e := newTestEvent(10)
	require.NoError(t, e.AddInvite(NewCalendarInvite(7, 0, 100, 200, InviteStatusInvited, RankPlayer, "", testTime)))

	inv, ok := e.InviteByPlayer(200)
	require.True(t, ok)
	assert.Equal(t, InviteID(7), inv.ID)

	_, ok = e.InviteByPlayer(999)
	assert.False(t, ok)
}

func TestCalendarEvent_RemoveInviteByID(t *testing.T) {
	tests := []struct {
		name        string
		remover     PlayerID
		wantRemoved bool
		wantErr     error
	}{
		{name: "sender", remover: 300, wantRemoved: true},
		{name: "invitee", remover: 200, wantRemoved: true},
		{name: "creator", remover: 100, wantRemoved: true},
		{name: "moderator", remover: 400, wantRemoved: true},
		{name: "plain invitee of same event", remover: 500, wantErr: ErrNotAuthorized},
		{name: "stranger", remover: 999, wantErr: ErrNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEvent(10)
			require.NoError(t, e.AddInvite(NewCalendarInvite(1, 0, 300, 200, InviteStatusInvited, RankPlayer, "", testTime)))
			require.NoError(t, e.AddInvite(NewCalendarInvite(2, 0, 100, 400, InviteStatusAccepted, RankModerator, "", testTime)))
			require.NoError(t, e.AddInvite(NewCalendarInvite(3, 0, 100, 500, InviteStatusAccepted, RankPlayer, "", testTime)))

			removed, err := e.RemoveInviteByID(1, tt.remover)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, removed)
				assert.Equal(t, 3, e.InviteCount())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRemoved, removed)
			_, ok := e.InviteByID(1)
			assert.False(t, ok)
		})
	}
}

func TestCalendarEvent_RemoveInviteByID_Unknown(t *testing.T) {
	e := newTestEvent(10)
	removed, err := e.RemoveInviteByID(42, 100)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCalendarEvent_RemoveInviteByPlayer(t *testing.T) {
	e := newTestEvent(10)
	require.NoError(t, e.AddInvite(NewCalendarInvite(1, 0, 100, 200, InviteStatusInvited, RankPlayer, "", testTime)))
	require.NoError(t, e.AddInvite(NewCalendarInvite(2, 0, 100, 201, InviteStatusInvited, RankPlayer, "", testTime)))

	removed := e.RemoveInviteByPlayer(200)
	require.Len(t, removed, 1)
	assert.Equal(t, InviteID(1), removed[0].ID)
	assert.Equal(t, 1, e.InviteCount())

	assert.Empty(t, e.RemoveInviteByPlayer(200))
}

func TestCalendarEvent_CloneIsDetached(t *testing.T) {
	e := newTestEvent(10)
	require.NoError(t, e.AddInvite(NewCalendarInvite(1, 0, 100, 200, InviteStatusInvited, RankPlayer, "", testTime)))

	c := e.Clone()
	inv, _ := c.InviteByID(1)
	inv.Status = InviteStatusDeclined
	c.Title = "changed"

	orig, _ := e.InviteByID(1)
	assert.Equal(t, InviteStatusInvited, orig.Status)
	assert.Equal(t, "Raid night", e.Title)
}

func TestCalendarEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *CalendarEvent)
		wantErr bool
	}{
		{name: "valid", mutate: func(e *CalendarEvent) {}},
		{name: "unknown type", mutate: func(e *CalendarEvent) { e.Type = 9 }, wantErr: true},
		{name: "unknown repeat", mutate: func(e *CalendarEvent) { e.RepeatType = 7 }, wantErr: true},
		{name: "guild event without guild", mutate: func(e *CalendarEvent) { e.Flags.GuildEvent = true }, wantErr: true},
		{name: "guild event with guild", mutate: func(e *CalendarEvent) { e.Flags.GuildEvent = true; e.GuildID = 5 }},
		{name: "announcement without guild event", mutate: func(e *CalendarEvent) { e.Flags.GuildAnnouncement = true; e.GuildID = 5 }, wantErr: true},
		{name: "title too long", mutate: func(e *CalendarEvent) { e.Title = strings.Repeat("a", MaxTitleLength+1) }, wantErr: true},
		{name: "title at limit in runes", mutate: func(e *CalendarEvent) { e.Title = strings.Repeat("é", MaxTitleLength) }},
		{name: "description too long", mutate: func(e *CalendarEvent) { e.Description = strings.Repeat("a", MaxDescriptionLength+1) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEvent(10)
			tt.mutate(e)
			err := e.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestInviteStatus_Pending(t *testing.T) {
	pending := map[InviteStatus]bool{
		InviteStatusInvited:     true,
		InviteStatusTentative:   true,
		InviteStatusNotSignedUp: true,
	}
	for s := InviteStatusInvited; s <= InviteStatusRemoved; s++ {
		assert.Equal(t, pending[s], s.Pending(), s.String())
	}
}
