package domain

import (
	"context"
	"time"
)

// AddEventParams holds the fields of a new event. MaxInvites <= 0 or above the
// configured ceiling is clamped to the ceiling.
type AddEventParams struct {
	CreatorID   PlayerID
	Title       string
	Description string
	Type        EventType
	RepeatType  RepeatType
	MaxInvites  int
	DungeonID   int32
	EventTime   time.Time
	UnknownTime time.Time
	Flags       EventFlags
}

// UpdateEventParams replaces the mutable fields of an event. Guild flags cannot change.
type UpdateEventParams struct {
	EventID     EventID
	ActorID     PlayerID
	Title       string
	Description string
	Type        EventType
	RepeatType  RepeatType
	DungeonID   int32
	EventTime   time.Time
	UnknownTime time.Time
	Flags       EventFlags
}

// AddInviteParams describes an invite to attach to an event. A zero StatusTime means now.
type AddInviteParams struct {
	EventID    EventID
	SenderID   PlayerID
	InviteeID  PlayerID
	Status     InviteStatus
	Rank       ModerationRank
	Text       string
	StatusTime time.Time
}

// CalendarService is the operation set exposed to the session layer. Every returned
// event or invite is a detached copy.
type CalendarService interface {
	AddEvent(ctx context.Context, p AddEventParams) (*CalendarEvent, error)
	UpdateEvent(ctx context.Context, p UpdateEventParams) (*CalendarEvent, error)
	CopyEvent(ctx context.Context, eventID EventID, newTime time.Time, actor PlayerID) (*CalendarEvent, error)
	RemoveEvent(ctx context.Context, eventID EventID, remover PlayerID) error
	EventByID(ctx context.Context, eventID EventID) (*CalendarEvent, error)
	SendEvent(ctx context.Context, to PlayerID, eventID EventID, sendType SendEventType) error

	AddInvite(ctx context.Context, p AddInviteParams) (*CalendarInvite, error)
	RemoveInvite(ctx context.Context, eventID EventID, inviteID InviteID, remover PlayerID) (bool, error)
	SetInviteStatus(ctx context.Context, eventID EventID, inviteID InviteID, actor PlayerID, status InviteStatus, text string) (*CalendarInvite, error)
	SetInviteRank(ctx context.Context, eventID EventID, inviteID InviteID, actor PlayerID, rank ModerationRank) (*CalendarInvite, error)

	RemovePlayerCalendar(ctx context.Context, player PlayerID) (events, invites int)
	RemoveGuildCalendar(ctx context.Context, actor PlayerID, guild GuildID) int

	PlayerEvents(ctx context.Context, player PlayerID) []*CalendarEvent
	PlayerInvites(ctx context.Context, player PlayerID) []*CalendarInvite
	PlayerNumPending(ctx context.Context, player PlayerID) int
}
