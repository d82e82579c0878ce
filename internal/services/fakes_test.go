package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"gamecalendar/internal/domain"
)

// testLogger discards output so tests don't assert on log lines.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// recordingMessenger keeps every delivered message.
type recordingMessenger struct {
	mu   sync.Mutex
	msgs []domain.Message
	err  error
}

func (m *recordingMessenger) Deliver(ctx context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return m.err
}

func (m *recordingMessenger) take() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.msgs
	m.msgs = nil
	return out
}

func kindsTo(msgs []domain.Message, to domain.PlayerID) []domain.MessageKind {
	var out []domain.MessageKind
	for _, m := range msgs {
		if m.To == to {
			out = append(out, m.Kind)
		}
	}
	return out
}

func recipientsOf(msgs []domain.Message, kind domain.MessageKind) []domain.PlayerID {
	var out []domain.PlayerID
	for _, m := range msgs {
		if m.Kind == kind {
			out = append(out, m.To)
		}
	}
	return out
}

// fakeGuildInfo is an in-memory GuildInfo for tests.
type fakeGuildInfo struct {
	members  map[domain.PlayerID]domain.GuildID
	officers map[domain.PlayerID]bool
	err      error
}

func (f *fakeGuildInfo) GuildOf(ctx context.Context, player domain.PlayerID) (domain.GuildID, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.members[player], nil
}

func (f *fakeGuildInfo) CanManageEvents(ctx context.Context, guild domain.GuildID, player domain.PlayerID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.members[player] == guild && f.officers[player], nil
}

// fakeCalendarRepo is an in-memory CalendarRepository for tests.
type fakeCalendarRepo struct {
	mu      sync.Mutex
	load    []*domain.CalendarEvent
	loadErr error
	events  map[domain.EventID]*domain.CalendarEvent
	invites map[domain.InviteID]*domain.CalendarInvite
	saveErr error
	ops     []string
}

func newFakeCalendarRepo() *fakeCalendarRepo {
	return &fakeCalendarRepo{
		events:  make(map[domain.EventID]*domain.CalendarEvent),
		invites: make(map[domain.InviteID]*domain.CalendarInvite),
	}
}

func (f *fakeCalendarRepo) LoadEvents(ctx context.Context) ([]*domain.CalendarEvent, error) {
	return f.load, f.loadErr
}

func (f *fakeCalendarRepo) SaveEvent(ctx context.Context, e *domain.CalendarEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "save_event")
	if f.saveErr != nil {
		return f.saveErr
	}
	f.events[e.ID] = e
	return nil
}

func (f *fakeCalendarRepo) DeleteEvent(ctx context.Context, id domain.EventID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "delete_event")
	if _, ok := f.events[id]; !ok {
		return errors.New("no such event row")
	}
	delete(f.events, id)
	for iid, inv := range f.invites {
		if inv.EventID == id {
			delete(f.invites, iid)
		}
	}
	return nil
}

func (f *fakeCalendarRepo) SaveInvite(ctx context.Context, inv *domain.CalendarInvite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "save_invite")
	f.invites[inv.ID] = inv
	return nil
}

func (f *fakeCalendarRepo) DeleteInvites(ctx context.Context, ids []domain.InviteID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "delete_invites")
	for _, id := range ids {
		delete(f.invites, id)
	}
	return nil
}
