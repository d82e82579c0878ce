package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"gamecalendar/internal/domain"

	"github.com/lib/pq"
)

type calendarRepository struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewCalendarRepository returns a domain.CalendarRepository implemented with Postgres.
func NewCalendarRepository(db *sql.DB, logger *slog.Logger) domain.CalendarRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &calendarRepository{DB: db, logger: logger}
}

// LoadEvents returns every stored event with its invites attached. Invites whose event
// row is gone, or that no longer fit under the event's capacity, are skipped with a warning.
func (r *calendarRepository) LoadEvents(ctx context.Context) ([]*domain.CalendarEvent, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, creator_id, guild_id, type, repeat_type, dungeon_id, event_time, flags,
		       unknown_time, title, description, max_invites
		FROM calendar_events
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.CalendarEvent
	byID := make(map[domain.EventID]*domain.CalendarEvent)
	for rows.Next() {
		var (
			e     domain.CalendarEvent
			flags int64
		)
		if err := rows.Scan(&e.ID, &e.CreatorID, &e.GuildID, &e.Type, &e.RepeatType, &e.DungeonID, &e.EventTime,
			&flags, &e.UnknownTime, &e.Title, &e.Description, &e.MaxInvites); err != nil {
			return nil, err
		}
		if e.Flags, err = domain.ParseEventFlags(uint32(flags)); err != nil {
			return nil, fmt.Errorf("event %d: %w", e.ID, err)
		}
		ev := domain.NewCalendarEvent(e.ID, e.CreatorID, e.GuildID, e.Type, e.RepeatType, e.DungeonID, e.EventTime,
			e.Flags, e.UnknownTime, e.Title, e.Description, e.MaxInvites)
		events = append(events, ev)
		byID[ev.ID] = ev
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	inviteRows, err := r.DB.QueryContext(ctx, `
		SELECT id, event_id, sender_id, invitee_id, status_time, status, rank, text
		FROM calendar_invites
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer inviteRows.Close()
	for inviteRows.Next() {
		var inv domain.CalendarInvite
		if err := inviteRows.Scan(&inv.ID, &inv.EventID, &inv.SenderID, &inv.InviteeID, &inv.LastUpdateTime,
			&inv.Status, &inv.Rank, &inv.Text); err != nil {
			return nil, err
		}
		e, ok := byID[inv.EventID]
		if !ok {
			r.logger.WarnContext(ctx, "skipping calendar invite of missing event", "invite_id", inv.ID, "event_id", inv.EventID)
			continue
		}
		if err := e.AddInvite(&inv); err != nil {
			if !errors.Is(err, domain.ErrCapacityExceeded) {
				return nil, err
			}
			r.logger.WarnContext(ctx, "skipping calendar invite over event capacity",
				"invite_id", inv.ID, "event_id", inv.EventID, "max_invites", e.MaxInvites)
		}
	}
	if err := inviteRows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *calendarRepository) SaveEvent(ctx context.Context, e *domain.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (id, creator_id, guild_id, type, repeat_type, dungeon_id, event_time, flags,
		                             unknown_time, title, description, max_invites)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE
		SET creator_id = EXCLUDED.creator_id, guild_id = EXCLUDED.guild_id, type = EXCLUDED.type,
		    repeat_type = EXCLUDED.repeat_type, dungeon_id = EXCLUDED.dungeon_id, event_time = EXCLUDED.event_time,
		    flags = EXCLUDED.flags, unknown_time = EXCLUDED.unknown_time, title = EXCLUDED.title,
		    description = EXCLUDED.description, max_invites = EXCLUDED.max_invites
	`
	_, err := r.DB.ExecContext(ctx, query, int64(e.ID), int64(e.CreatorID), int64(e.GuildID), int(e.Type), int(e.RepeatType),
		e.DungeonID, e.EventTime, int64(e.Flags.Bits()), e.UnknownTime, e.Title, e.Description, e.MaxInvites)
	return err
}

// DeleteEvent removes the event row and, through the foreign key, its invites.
func (r *calendarRepository) DeleteEvent(ctx context.Context, id domain.EventID) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = $1`, int64(id))
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *calendarRepository) SaveInvite(ctx context.Context, inv *domain.CalendarInvite) error {
	query := `
		INSERT INTO calendar_invites (id, event_id, sender_id, invitee_id, status_time, status, rank, text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET event_id = EXCLUDED.event_id, sender_id = EXCLUDED.sender_id, invitee_id = EXCLUDED.invitee_id,
		    status_time = EXCLUDED.status_time, status = EXCLUDED.status, rank = EXCLUDED.rank, text = EXCLUDED.text
	`
	_, err := r.DB.ExecContext(ctx, query, int64(inv.ID), int64(inv.EventID), int64(inv.SenderID), int64(inv.InviteeID),
		inv.LastUpdateTime, int(inv.Status), int(inv.Rank), inv.Text)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23503" {
			return fmt.Errorf("invite %d references missing event %d: %w", inv.ID, inv.EventID, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (r *calendarRepository) DeleteInvites(ctx context.Context, ids []domain.InviteID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]int64, len(ids))
	for i, id := range ids {
		keys[i] = int64(id)
	}
	_, err := r.DB.ExecContext(ctx, `DELETE FROM calendar_invites WHERE id = ANY($1)`, pq.Array(keys))
	return err
}
