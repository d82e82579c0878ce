package domain

import (
	"context"
	"time"
)

// CalendarRepository persists calendar rows. The registry only reads through it at
// startup; writes are applied asynchronously and may be lost on crash.
type CalendarRepository interface {
	LoadEvents(ctx context.Context) ([]*CalendarEvent, error)
	SaveEvent(ctx context.Context, event *CalendarEvent) error
	DeleteEvent(ctx context.Context, id EventID) error
	SaveInvite(ctx context.Context, invite *CalendarInvite) error
	DeleteInvites(ctx context.Context, ids []InviteID) error
}

// GuildInfo answers guild membership questions.
type GuildInfo interface {
	// GuildOf returns the player's guild, or zero when the player is guildless.
	GuildOf(ctx context.Context, player PlayerID) (GuildID, error)
	// CanManageEvents reports whether the player ranks high enough in guild to manage
	// its calendar events.
	CanManageEvents(ctx context.Context, guild GuildID, player PlayerID) (bool, error)
}

// DungeonLockout is a player's saved instance state as reported by the lockout subsystem.
type DungeonLockout struct {
	MapID      uint32    `json:"map_id"`
	Difficulty uint8     `json:"difficulty"`
	InstanceID uint32    `json:"instance_id"`
	ResetTime  time.Time `json:"reset_time"`
}

// LockoutInfo lists the dungeon lockouts currently bound to a player.
type LockoutInfo interface {
	Lockouts(ctx context.Context, player PlayerID) ([]DungeonLockout, error)
}
