package postgres

import (
	"context"
	"database/sql"

	"gamecalendar/internal/domain"
)

type lockoutRepository struct {
	DB *sql.DB
}

// NewLockoutRepository returns a domain.LockoutInfo reading saved dungeon instances.
func NewLockoutRepository(db *sql.DB) domain.LockoutInfo {
	return &lockoutRepository{DB: db}
}

// Lockouts lists the player's unexpired instance binds, soonest reset first.
func (r *lockoutRepository) Lockouts(ctx context.Context, player domain.PlayerID) ([]domain.DungeonLockout, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT map_id, difficulty, instance_id, reset_time
		FROM instance_binds
		WHERE player_id = $1 AND reset_time > now()
		ORDER BY reset_time, map_id
	`, int64(player))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lockouts := []domain.DungeonLockout{}
	for rows.Next() {
		var l domain.DungeonLockout
		if err := rows.Scan(&l.MapID, &l.Difficulty, &l.InstanceID, &l.ResetTime); err != nil {
			return nil, err
		}
		lockouts = append(lockouts, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lockouts, nil
}
