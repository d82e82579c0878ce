package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gamecalendar/internal/domain"
)

type playerRepository struct {
	DB *sql.DB
}

// NewPlayerRepository returns a domain.PlayerDirectory implemented with Postgres.
func NewPlayerRepository(db *sql.DB) domain.PlayerDirectory {
	return &playerRepository{DB: db}
}

const selectPlayer = `
	SELECT p.id, p.name, COALESCE(gm.guild_id, 0), p.account_email, p.password_hash, p.salt
	FROM players p
	LEFT JOIN guild_members gm ON gm.player_id = p.id
`

func (r *playerRepository) GetByID(ctx context.Context, id domain.PlayerID) (*domain.Player, error) {
	return r.scan(r.DB.QueryRowContext(ctx, selectPlayer+`WHERE p.id = $1`, int64(id)))
}

// GetByName matches character names case-insensitively.
func (r *playerRepository) GetByName(ctx context.Context, name string) (*domain.Player, error) {
	return r.scan(r.DB.QueryRowContext(ctx, selectPlayer+`WHERE lower(p.name) = lower($1)`, name))
}

func (r *playerRepository) scan(row *sql.Row) (*domain.Player, error) {
	p := &domain.Player{}
	err := row.Scan(&p.ID, &p.Name, &p.GuildID, &p.AccountEmail, &p.PasswordHash, &p.Salt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
