package controllers

import (
	"context"
	"io"
	"log/slog"
	"time"

	"gamecalendar/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeCalendarService implements domain.CalendarService for handler tests.
type fakeCalendarService struct {
	err       error
	removeErr error
	event     *domain.CalendarEvent
	invite  *domain.CalendarInvite
	removed bool
	events  []*domain.CalendarEvent
	invites []*domain.CalendarInvite
	pending int

	lastAdd        domain.AddEventParams
	lastUpdate     domain.UpdateEventParams
	lastInvite     domain.AddInviteParams
	lastEventID    domain.EventID
	lastInviteID   domain.InviteID
	lastActor      domain.PlayerID
	lastCopyTime   time.Time
	lastStatus     domain.InviteStatus
	lastStatusText string
	lastRank       domain.ModerationRank
	sentTo         domain.PlayerID
	sentType       domain.SendEventType
	sent           int
}

func (f *fakeCalendarService) AddEvent(ctx context.Context, p domain.AddEventParams) (*domain.CalendarEvent, error) {
	f.lastAdd = p
	return f.event, f.err
}

func (f *fakeCalendarService) UpdateEvent(ctx context.Context, p domain.UpdateEventParams) (*domain.CalendarEvent, error) {
	f.lastUpdate = p
	return f.event, f.err
}

func (f *fakeCalendarService) CopyEvent(ctx context.Context, id domain.EventID, at time.Time, actor domain.PlayerID) (*domain.CalendarEvent, error) {
	f.lastEventID, f.lastCopyTime, f.lastActor = id, at, actor
	return f.event, f.err
}

func (f *fakeCalendarService) RemoveEvent(ctx context.Context, id domain.EventID, remover domain.PlayerID) error {
	f.lastEventID, f.lastActor = id, remover
	if f.err != nil {
		return f.err
	}
	return f.removeErr
}

func (f *fakeCalendarService) EventByID(ctx context.Context, id domain.EventID) (*domain.CalendarEvent, error) {
	f.lastEventID = id
	if f.err != nil {
		return nil, f.err
	}
	if f.event == nil {
		return nil, domain.ErrNotFound
	}
	return f.event.Clone(), nil
}

func (f *fakeCalendarService) SendEvent(ctx context.Context, to domain.PlayerID, id domain.EventID, t domain.SendEventType) error {
	f.sentTo, f.sentType = to, t
	f.sent++
	return f.err
}

func (f *fakeCalendarService) AddInvite(ctx context.Context, p domain.AddInviteParams) (*domain.CalendarInvite, error) {
	f.lastInvite = p
	return f.invite, f.err
}

func (f *fakeCalendarService) RemoveInvite(ctx context.Context, eventID domain.EventID, inviteID domain.InviteID, remover domain.PlayerID) (bool, error) {
	f.lastEventID, f.lastInviteID, f.lastActor = eventID, inviteID, remover
	return f.removed, f.err
}

func (f *fakeCalendarService) SetInviteStatus(ctx context.Context, eventID domain.EventID, inviteID domain.InviteID, actor domain.PlayerID, status domain.InviteStatus, text string) (*domain.CalendarInvite, error) {
	f.lastEventID, f.lastInviteID, f.lastActor, f.lastStatus, f.lastStatusText = eventID, inviteID, actor, status, text
	return f.invite, f.err
}

func (f *fakeCalendarService) SetInviteRank(ctx context.Context, eventID domain.EventID, inviteID domain.InviteID, actor domain.PlayerID, rank domain.ModerationRank) (*domain.CalendarInvite, error) {
	f.lastEventID, f.lastInviteID, f.lastActor, f.lastRank = eventID, inviteID, actor, rank
	return f.invite, f.err
}

func (f *fakeCalendarService) RemovePlayerCalendar(ctx context.Context, player domain.PlayerID) (int, int) {
	return 0, 0
}

func (f *fakeCalendarService) RemoveGuildCalendar(ctx context.Context, actor domain.PlayerID, guild domain.GuildID) int {
	return 0
}

func (f *fakeCalendarService) PlayerEvents(ctx context.Context, player domain.PlayerID) []*domain.CalendarEvent {
	f.lastActor = player
	return f.events
}

func (f *fakeCalendarService) PlayerInvites(ctx context.Context, player domain.PlayerID) []*domain.CalendarInvite {
	f.lastActor = player
	return f.invites
}

func (f *fakeCalendarService) PlayerNumPending(ctx context.Context, player domain.PlayerID) int {
	f.lastActor = player
	return f.pending
}

type fakePlayers map[string]*domain.Player

func (f fakePlayers) GetByID(ctx context.Context, id domain.PlayerID) (*domain.Player, error) {
	for _, p := range f {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrPlayerNotFound
}

func (f fakePlayers) GetByName(ctx context.Context, name string) (*domain.Player, error) {
	if p, ok := f[name]; ok {
		return p, nil
	}
	return nil, domain.ErrPlayerNotFound
}

type fakeLockouts struct {
	lockouts []domain.DungeonLockout
	err      error
}

func (f fakeLockouts) Lockouts(ctx context.Context, player domain.PlayerID) ([]domain.DungeonLockout, error) {
	return f.lockouts, f.err
}

type commandResult struct {
	to     domain.PlayerID
	result domain.CommandResult
	param  string
}

// fakeResults records command results instead of queueing them.
type fakeResults struct {
	got []commandResult
}

func (f *fakeResults) SendCommandResult(ctx context.Context, to domain.PlayerID, err error, param string) {
	f.got = append(f.got, commandResult{to: to, result: domain.CommandResultFor(err), param: param})
}

type fakeInbox struct {
	msgs      []domain.Message
	lastLimit int
}

func (f *fakeInbox) Drain(player domain.PlayerID, limit int) []domain.Message {
	f.lastLimit = limit
	return f.msgs
}

type fakeAuthService struct {
	token  string
	player *domain.Player
	err    error
}

func (f *fakeAuthService) Login(ctx context.Context, name, password string) (string, *domain.Player, error) {
	return f.token, f.player, f.err
}
