package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gamecalendar/internal/domain"
)

type guildRepository struct {
	DB *sql.DB
}

// NewGuildRepository returns a domain.GuildInfo backed by the guild membership tables.
func NewGuildRepository(db *sql.DB) domain.GuildInfo {
	return &guildRepository{DB: db}
}

// GuildOf returns 0 for players outside any guild.
func (r *guildRepository) GuildOf(ctx context.Context, player domain.PlayerID) (domain.GuildID, error) {
	var guild domain.GuildID
	err := r.DB.QueryRowContext(ctx, `SELECT guild_id FROM guild_members WHERE player_id = $1`, int64(player)).Scan(&guild)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return guild, nil
}

// CanManageEvents reports whether player leads guild or holds a rank allowed to edit guild events.
func (r *guildRepository) CanManageEvents(ctx context.Context, guild domain.GuildID, player domain.PlayerID) (bool, error) {
	query := `
		SELECT g.leader_id = gm.player_id OR COALESCE(gr.manage_events, FALSE)
		FROM guild_members gm
		JOIN guilds g ON g.id = gm.guild_id
		LEFT JOIN guild_ranks gr ON gr.guild_id = gm.guild_id AND gr.rank_id = gm.rank_id
		WHERE gm.guild_id = $1 AND gm.player_id = $2
	`
	var allowed bool
	err := r.DB.QueryRowContext(ctx, query, int64(guild), int64(player)).Scan(&allowed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return allowed, nil
}
