package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for calendar operations. Callers wrap them with %w and test with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrCapacityExceeded = errors.New("invite capacity exceeded")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// PlayerID identifies a character in the world.
type PlayerID uint64

// GuildID identifies a guild. Zero means no guild.
type GuildID uint32

// EventID identifies a calendar event.
type EventID uint64

// InviteID identifies a calendar invite.
type InviteID uint64

// DefaultMaxInvites is the invite ceiling used when none is configured.
const DefaultMaxInvites = 100

// Text limits for event titles and descriptions, counted in runes.
const (
	MaxTitleLength       = 31
	MaxDescriptionLength = 255
)

// NoDungeon is the DungeonID of an event not bound to a dungeon.
const NoDungeon int32 = -1

// EventType is the kind of activity an event schedules.
type EventType uint8

const (
	EventTypeRaid EventType = iota
	EventTypeDungeon
	EventTypePvP
	EventTypeMeeting
	EventTypeOther
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool { return t <= EventTypeOther }

func (t EventType) String() string {
	switch t {
	case EventTypeRaid:
		return "raid"
	case EventTypeDungeon:
		return "dungeon"
	case EventTypePvP:
		return "pvp"
	case EventTypeMeeting:
		return "meeting"
	case EventTypeOther:
		return "other"
	}
	return fmt.Sprintf("event_type(%d)", uint8(t))
}

// RepeatType is stored with an event but never expanded into future instances.
type RepeatType uint8

const (
	RepeatNever RepeatType = iota
	RepeatWeekly
	RepeatBiweekly
	RepeatMonthly
)

// Valid reports whether r is a known repeat type.
func (r RepeatType) Valid() bool { return r <= RepeatMonthly }

// InviteStatus is an invitee's response to an event.
type InviteStatus uint8

const (
	InviteStatusInvited InviteStatus = iota
	InviteStatusAccepted
	InviteStatusDeclined
	InviteStatusConfirmed
	InviteStatusOut
	InviteStatusStandby
	InviteStatusSignedUp
	InviteStatusNotSignedUp
	InviteStatusTentative
	InviteStatusRemoved
)

// Valid reports whether s is a known status.
func (s InviteStatus) Valid() bool { return s <= InviteStatusRemoved }

// Pending reports whether the invite still waits on the invitee.
func (s InviteStatus) Pending() bool {
	switch s {
	case InviteStatusInvited, InviteStatusTentative, InviteStatusNotSignedUp:
		return true
	}
	return false
}

func (s InviteStatus) String() string {
	names := [...]string{"invited", "accepted", "declined", "confirmed", "out", "standby",
		"signed_up", "not_signed_up", "tentative", "removed"}
	if int(s) < len(names) {
		return names[s]
	}
	return fmt.Sprintf("invite_status(%d)", uint8(s))
}

// ModerationRank is an invite-scoped moderation level, unrelated to guild ranks.
type ModerationRank uint8

const (
	RankPlayer ModerationRank = iota
	RankModerator
	RankOwner
)

// Valid reports whether r is a known rank.
func (r ModerationRank) Valid() bool { return r <= RankOwner }

// CanModerate reports whether the rank may manage other invites.
func (r ModerationRank) CanModerate() bool { return r == RankModerator || r == RankOwner }

// SendEventType tags why a full event payload is sent.
type SendEventType uint8

const (
	SendEventGet SendEventType = iota
	SendEventAdd
	SendEventCopy
)
