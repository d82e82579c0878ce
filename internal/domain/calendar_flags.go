package domain

import "fmt"

// Wire values of the event flag bits.
const (
	flagAllAllowed        uint32 = 0x001
	flagInvitesLocked     uint32 = 0x010
	flagGuildAnnouncement uint32 = 0x040
	flagGuildEvent        uint32 = 0x400

	knownFlagBits = flagAllAllowed | flagInvitesLocked | flagGuildAnnouncement | flagGuildEvent
)

// EventFlags holds the capabilities of an event. Bits and ParseEventFlags convert to and
// from the client bitmask.
type EventFlags struct {
	AllAllowed        bool `json:"all_allowed"`
	InvitesLocked     bool `json:"invites_locked"`
	GuildAnnouncement bool `json:"guild_announcement"`
	GuildEvent        bool `json:"guild_event"`
}

// ParseEventFlags decodes a client bitmask. Unknown bits are rejected.
func ParseEventFlags(bits uint32) (EventFlags, error) {
	if extra := bits &^ knownFlagBits; extra != 0 {
		return EventFlags{}, fmt.Errorf("%w: unknown event flags 0x%x", ErrInvalidArgument, extra)
	}
	return EventFlags{
		AllAllowed:        bits&flagAllAllowed != 0,
		InvitesLocked:     bits&flagInvitesLocked != 0,
		GuildAnnouncement: bits&flagGuildAnnouncement != 0,
		GuildEvent:        bits&flagGuildEvent != 0,
	}, nil
}

// Bits encodes the flags as the client bitmask.
func (f EventFlags) Bits() uint32 {
	var bits uint32
	if f.AllAllowed {
		bits |= flagAllAllowed
	}
	if f.InvitesLocked {
		bits |= flagInvitesLocked
	}
	if f.GuildAnnouncement {
		bits |= flagGuildAnnouncement
	}
	if f.GuildEvent {
		bits |= flagGuildEvent
	}
	return bits
}

// Validate checks the combination rules between flags.
func (f EventFlags) Validate() error {
	if f.GuildAnnouncement && !f.GuildEvent {
		return fmt.Errorf("%w: guild announcement requires guild event flag", ErrInvalidArgument)
	}
	return nil
}
