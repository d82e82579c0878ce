package domain

import (
	"fmt"
	"sort"
	"time"
	"unicode/utf8"
)

// CalendarEvent is a scheduled activity and the invites attached to it. The event owns
// its invites exclusively; removing an invite from the map destroys it.
// swagger:model CalendarEvent
type CalendarEvent struct {
	ID          EventID    `json:"id"`
	CreatorID   PlayerID   `json:"creator_id"`
	GuildID     GuildID    `json:"guild_id"`
	Type        EventType  `json:"type"`
	RepeatType  RepeatType `json:"repeat_type"`
	DungeonID   int32      `json:"dungeon_id"`
	EventTime   time.Time  `json:"event_time"`
	Flags       EventFlags `json:"flags"`
	UnknownTime time.Time  `json:"unknown_time"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	MaxInvites  int        `json:"max_invites"`

	invites map[InviteID]*CalendarInvite
}

// NewCalendarEvent returns an event without invites. maxInvites <= 0 means DefaultMaxInvites.
func NewCalendarEvent(id EventID, creator PlayerID, guild GuildID, typ EventType, repeat RepeatType, dungeonID int32,
	eventTime time.Time, flags EventFlags, unknownTime time.Time, title, description string, maxInvites int) *CalendarEvent {
	if maxInvites <= 0 {
		maxInvites = DefaultMaxInvites
	}
	return &CalendarEvent{
		ID:          id,
		CreatorID:   creator,
		GuildID:     guild,
		Type:        typ,
		RepeatType:  repeat,
		DungeonID:   dungeonID,
		EventTime:   eventTime,
		Flags:       flags,
		UnknownTime: unknownTime,
		Title:       title,
		Description: description,
		MaxInvites:  maxInvites,
		invites:     make(map[InviteID]*CalendarInvite),
	}
}

// Validate checks the event fields that do not depend on registry state.
func (e *CalendarEvent) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown event type %d", ErrInvalidArgument, e.Type)
	}
	if !e.RepeatType.Valid() {
		return fmt.Errorf("%w: unknown repeat type %d", ErrInvalidArgument, e.RepeatType)
	}
	if err := e.Flags.Validate(); err != nil {
		return err
	}
	if e.Flags.GuildEvent && e.GuildID == 0 {
		return fmt.Errorf("%w: guild event without guild", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(e.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title longer than %d characters", ErrInvalidArgument, MaxTitleLength)
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description longer than %d characters", ErrInvalidArgument, MaxDescriptionLength)
	}
	return nil
}

// IsGuildEvent reports whether the guild event flag is set.
func (e *CalendarEvent) IsGuildEvent() bool { return e.Flags.GuildEvent }

// IsGuildAnnouncement reports whether the guild announcement flag is set.
func (e *CalendarEvent) IsGuildAnnouncement() bool { return e.Flags.GuildAnnouncement }

// AddInvite attaches inv to the event. It fails with ErrCapacityExceeded when the event
// already holds MaxInvites invites.
func (e *CalendarEvent) AddInvite(inv *CalendarInvite) error {
	if e.invites == nil {
		e.invites = make(map[InviteID]*CalendarInvite)
	}
	if len(e.invites) >= e.MaxInvites {
		return fmt.Errorf("%w: event %d holds %d invites", ErrCapacityExceeded, e.ID, len(e.invites))
	}
	inv.EventID = e.ID
	e.invites[inv.ID] = inv
	return nil
}

// InviteByID looks up an invite of this event.
func (e *CalendarEvent) InviteByID(id InviteID) (*CalendarInvite, bool) {
	inv, ok := e.invites[id]
	return inv, ok
}

// InviteByPlayer returns the first invite addressed to player. Events hold few invites,
// so this scans.
func (e *CalendarEvent) InviteByPlayer(player PlayerID) (*CalendarInvite, bool) {
	for _, inv := range e.invites {
		if inv.InviteeID == player {
			return inv, true
		}
	}
	return nil, false
}

// CanModerate reports whether player is the creator or holds a Moderator/Owner invite.
func (e *CalendarEvent) CanModerate(player PlayerID) bool {
	if player == e.CreatorID {
		return true
	}
	inv, ok := e.InviteByPlayer(player)
	return ok && inv.Rank.CanModerate()
}

// CanGrantRank reports whether player may hand out moderation ranks: the creator or an
// Owner-rank invitee.
func (e *CalendarEvent) CanGrantRank(player PlayerID) bool {
	if player == e.CreatorID {
		return true
	}
	inv, ok := e.InviteByPlayer(player)
	return ok && inv.Rank == RankOwner
}

// RemoveInviteByID destroys the invite if remover is its sender, its invitee or a
// moderator of the event. It returns false without error when the invite does not exist.
func (e *CalendarEvent) RemoveInviteByID(id InviteID, remover PlayerID) (bool, error) {
	inv, ok := e.invites[id]
	if !ok {
		return false, nil
	}
	if remover != inv.SenderID && remover != inv.InviteeID && !e.CanModerate(remover) {
		return false, fmt.Errorf("%w: player %d cannot remove invite %d", ErrNotAuthorized, remover, id)
	}
	delete(e.invites, id)
	return true, nil
}

// RemoveInviteByPlayer destroys every invite addressed to player without any
// authorization check and returns them.
func (e *CalendarEvent) RemoveInviteByPlayer(player PlayerID) []*CalendarInvite {
	var removed []*CalendarInvite
	for id, inv := range e.invites {
		if inv.InviteeID == player {
			removed = append(removed, inv)
			delete(e.invites, id)
		}
	}
	sortInvites(removed)
	return removed
}

// RemoveAllInvites destroys every invite and returns them.
func (e *CalendarEvent) RemoveAllInvites() []*CalendarInvite {
	removed := e.Invites()
	e.invites = make(map[InviteID]*CalendarInvite)
	return removed
}

// Invites returns the invites ordered by ID. The slice is new; the invites are not copies.
func (e *CalendarEvent) Invites() []*CalendarInvite {
	out := make([]*CalendarInvite, 0, len(e.invites))
	for _, inv := range e.invites {
		out = append(out, inv)
	}
	sortInvites(out)
	return out
}

// InviteCount returns the number of attached invites.
func (e *CalendarEvent) InviteCount() int { return len(e.invites) }

// Clone returns a deep copy, invites included.
func (e *CalendarEvent) Clone() *CalendarEvent {
	c := *e
	c.invites = make(map[InviteID]*CalendarInvite, len(e.invites))
	for id, inv := range e.invites {
		c.invites[id] = inv.Clone()
	}
	return &c
}

func sortInvites(invs []*CalendarInvite) {
	sort.Slice(invs, func(i, j int) bool { return invs[i].ID < invs[j].ID })
}
