package domain

import (
	"context"
	"time"
)

// MessageKind names an outbound calendar message.
type MessageKind string

const (
	MessageInvite             MessageKind = "calendar.invite"
	MessageInviteAlert        MessageKind = "calendar.invite_alert"
	MessageCommandResult      MessageKind = "calendar.command_result"
	MessageEventRemovedAlert  MessageKind = "calendar.event_removed_alert"
	MessageEvent              MessageKind = "calendar.event"
	MessageInviteStatus       MessageKind = "calendar.invite_status"
	MessageInviteRemoved      MessageKind = "calendar.invite_removed"
	MessageModeratorStatus    MessageKind = "calendar.moderator_status"
	MessageEventUpdatedAlert  MessageKind = "calendar.event_updated_alert"
	MessageClearPendingAction MessageKind = "calendar.clear_pending_action"
	MessageRaidLockoutAdd     MessageKind = "calendar.raid_lockout_add"
	MessageRaidLockoutRemove  MessageKind = "calendar.raid_lockout_remove"
)

// Message is one outbound notification addressed to a single player.
// swagger:model Message
type Message struct {
	To      PlayerID    `json:"to"`
	Kind    MessageKind `json:"kind"`
	Payload any         `json:"payload"`
}

// Messenger delivers messages to players. Implementations own encoding and transport;
// delivery failures are reported but never retried by the calendar.
type Messenger interface {
	Deliver(ctx context.Context, msg Message) error
}

// InvitePayload is the full invite sent to an invitee.
type InvitePayload struct {
	EventID      EventID        `json:"event_id"`
	InviteID     InviteID       `json:"invite_id"`
	InviteeID    PlayerID       `json:"invitee_id"`
	SenderID     PlayerID       `json:"sender_id"`
	Status       InviteStatus   `json:"status"`
	Rank         ModerationRank `json:"rank"`
	IsGuildEvent bool           `json:"is_guild_event"`
	StatusTime   time.Time      `json:"status_time"`
}

// InviteAlertPayload is the lightweight popup shown to a freshly invited player.
type InviteAlertPayload struct {
	EventID   EventID        `json:"event_id"`
	InviteID  InviteID       `json:"invite_id"`
	Title     string         `json:"title"`
	EventTime time.Time      `json:"event_time"`
	Flags     uint32         `json:"flags"`
	Type      EventType      `json:"type"`
	DungeonID int32          `json:"dungeon_id"`
	CreatorID PlayerID       `json:"creator_id"`
	SenderID  PlayerID       `json:"sender_id"`
	InviteeID PlayerID       `json:"invitee_id"`
	Status    InviteStatus   `json:"status"`
	Rank      ModerationRank `json:"rank"`
}

// CommandResultPayload acknowledges or rejects a player command.
type CommandResultPayload struct {
	Result CommandResult `json:"result"`
	Param  string        `json:"param,omitempty"`
}

// EventRemovedAlertPayload tells a former relative that an event is gone.
type EventRemovedAlertPayload struct {
	EventID   EventID   `json:"event_id"`
	Title     string    `json:"title"`
	EventTime time.Time `json:"event_time"`
}

// EventPayload is the full event with its invites.
type EventPayload struct {
	SendType SendEventType     `json:"send_type"`
	Event    *CalendarEvent    `json:"event"`
	Invites  []*CalendarInvite `json:"invites"`
}

// InviteStatusPayload reports a changed invite status.
type InviteStatusPayload struct {
	EventID    EventID      `json:"event_id"`
	InviteeID  PlayerID     `json:"invitee_id"`
	EventTime  time.Time    `json:"event_time"`
	Flags      uint32       `json:"flags"`
	Status     InviteStatus `json:"status"`
	StatusTime time.Time    `json:"status_time"`
	Text       string       `json:"text,omitempty"`
}

// InviteRemovedPayload reports a destroyed invite.
type InviteRemovedPayload struct {
	EventID   EventID      `json:"event_id"`
	InviteeID PlayerID     `json:"invitee_id"`
	Flags     uint32       `json:"flags"`
	Status    InviteStatus `json:"status"`
}

// ModeratorStatusPayload reports a changed moderation rank.
type ModeratorStatusPayload struct {
	EventID   EventID        `json:"event_id"`
	InviteeID PlayerID       `json:"invitee_id"`
	Rank      ModerationRank `json:"rank"`
}

// EventUpdatedAlertPayload carries the new event fields and the prior scheduled time.
type EventUpdatedAlertPayload struct {
	EventID      EventID    `json:"event_id"`
	OldEventTime time.Time  `json:"old_event_time"`
	EventTime    time.Time  `json:"event_time"`
	UnknownTime  time.Time  `json:"unknown_time"`
	Flags        uint32     `json:"flags"`
	Type         EventType  `json:"type"`
	RepeatType   RepeatType `json:"repeat_type"`
	DungeonID    int32      `json:"dungeon_id"`
	MaxInvites   int        `json:"max_invites"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
}

// ClearPendingActionPayload resets the client's pending indicator.
type ClearPendingActionPayload struct{}

// RaidLockoutPayload reports an added or removed dungeon lockout.
type RaidLockoutPayload struct {
	Lockout DungeonLockout `json:"lockout"`
}
