package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"gamecalendar/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var (
	eventColumns  = []string{"id", "creator_id", "guild_id", "type", "repeat_type", "dungeon_id", "event_time", "flags", "unknown_time", "title", "description", "max_invites"}
	inviteColumns = []string{"id", "event_id", "sender_id", "invitee_id", "status_time", "status", "rank", "text"}
	raidTime      = time.Date(2026, 10, 23, 20, 0, 0, 0, time.UTC)
	testLogger    = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// Upserts rewrite every column so a recycled id never keeps a previous row's identity.
var (
	eventUpsertSet = regexp.QuoteMeta(`SET creator_id = EXCLUDED.creator_id, guild_id = EXCLUDED.guild_id, type = EXCLUDED.type, ` +
		`repeat_type = EXCLUDED.repeat_type, dungeon_id = EXCLUDED.dungeon_id, event_time = EXCLUDED.event_time, ` +
		`flags = EXCLUDED.flags, unknown_time = EXCLUDED.unknown_time, title = EXCLUDED.title, ` +
		`description = EXCLUDED.description, max_invites = EXCLUDED.max_invites`)
	inviteUpsertSet = regexp.QuoteMeta(`SET event_id = EXCLUDED.event_id, sender_id = EXCLUDED.sender_id, invitee_id = EXCLUDED.invitee_id, ` +
		`status_time = EXCLUDED.status_time, status = EXCLUDED.status, rank = EXCLUDED.rank, text = EXCLUDED.text`)
)

func TestCalendarRepository_LoadEvents(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		mock        func(mock sqlmock.Sqlmock)
		wantEvents  int
		wantInvites map[domain.EventID]int
		wantErr     bool
	}{
		{
			name: "events with invites, orphan and overflow skipped",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, creator_id, guild_id, type, repeat_type, dungeon_id, event_time, flags,\s+unknown_time, title, description, max_invites\s+FROM calendar_events`).
					WillReturnRows(sqlmock.NewRows(eventColumns).
						AddRow(5, 100, 7, 0, 0, 249, raidTime, 0x400, time.Time{}, "Onyxia", "", 40).
						AddRow(9, 101, 0, 4, 1, -1, raidTime, 0, time.Time{}, "Fishing", "weekly", 1))
				mock.ExpectQuery(`SELECT id, event_id, sender_id, invitee_id, status_time, status, rank, text\s+FROM calendar_invites`).
					WillReturnRows(sqlmock.NewRows(inviteColumns).
						AddRow(40, 5, 100, 200, raidTime, 0, 0, "").
						AddRow(41, 9, 101, 101, raidTime, 1, 2, "").
						AddRow(42, 9, 101, 202, raidTime, 0, 0, "").
						AddRow(43, 77, 1, 2, raidTime, 0, 0, ""))
			},
			wantEvents:  2,
			wantInvites: map[domain.EventID]int{5: 1, 9: 1},
		},
		{
			name: "no events skips invite query",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM calendar_events`).WillReturnRows(sqlmock.NewRows(eventColumns))
			},
			wantEvents: 0,
		},
		{
			name: "unknown flag bits",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM calendar_events`).
					WillReturnRows(sqlmock.NewRows(eventColumns).
						AddRow(5, 100, 0, 0, 0, -1, raidTime, 0x2, time.Time{}, "x", "", 10))
			},
			wantErr: true,
		},
		{
			name: "events query error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM calendar_events`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
		{
			name: "invites query error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM calendar_events`).
					WillReturnRows(sqlmock.NewRows(eventColumns).
						AddRow(5, 100, 0, 0, 0, -1, raidTime, 0, time.Time{}, "x", "", 10))
				mock.ExpectQuery(`FROM calendar_invites`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)
			repo := NewCalendarRepository(db, testLogger)
			got, err := repo.LoadEvents(ctx)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, tt.wantEvents)
			for _, e := range got {
				require.Equal(t, tt.wantInvites[e.ID], e.InviteCount(), "event %d", e.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCalendarRepository_LoadEvents_logsSkippedInvites(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM calendar_events`).
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(9, 101, 0, 4, 1, -1, raidTime, 0, time.Time{}, "Fishing", "", 1))
	mock.ExpectQuery(`FROM calendar_invites`).
		WillReturnRows(sqlmock.NewRows(inviteColumns).
			AddRow(41, 9, 101, 101, raidTime, 1, 2, "").
			AddRow(42, 9, 101, 202, raidTime, 0, 0, "").
			AddRow(43, 77, 1, 2, raidTime, 0, 0, ""))

	var logs bytes.Buffer
	repo := NewCalendarRepository(db, slog.New(slog.NewTextHandler(&logs, nil)))
	got, err := repo.LoadEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, got[0].InviteCount())
	require.Contains(t, logs.String(), "skipping calendar invite over event capacity")
	require.Contains(t, logs.String(), "invite_id=42")
	require.Contains(t, logs.String(), "skipping calendar invite of missing event")
	require.Contains(t, logs.String(), "invite_id=43")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepository_LoadEvents_fields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM calendar_events`).
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(5, 100, 7, 0, 0, 249, raidTime, 0x410, time.Time{}, "Onyxia", "bring fire resist", 40))
	mock.ExpectQuery(`FROM calendar_invites`).
		WillReturnRows(sqlmock.NewRows(inviteColumns).AddRow(40, 5, 100, 200, raidTime, 3, 1, "late"))

	got, err := NewCalendarRepository(db, testLogger).LoadEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	e := got[0]
	require.Equal(t, domain.EventID(5), e.ID)
	require.Equal(t, domain.GuildID(7), e.GuildID)
	require.Equal(t, int32(249), e.DungeonID)
	require.Equal(t, domain.EventFlags{InvitesLocked: true, GuildEvent: true}, e.Flags)
	require.Equal(t, "bring fire resist", e.Description)
	inv, ok := e.InviteByPlayer(200)
	require.True(t, ok)
	require.Equal(t, domain.InviteID(40), inv.ID)
	require.Equal(t, domain.InviteStatus(3), inv.Status)
	require.Equal(t, domain.RankModerator, inv.Rank)
	require.Equal(t, "late", inv.Text)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepository_SaveEvent(t *testing.T) {
	ctx := context.Background()
	event := domain.NewCalendarEvent(5, 100, 7, domain.EventTypeRaid, domain.RepeatWeekly, 249, raidTime,
		domain.EventFlags{GuildEvent: true}, time.Time{}, "Onyxia", "", 40)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "upsert",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO calendar_events .* ON CONFLICT \(id\) DO UPDATE ` + eventUpsertSet).
					WithArgs(int64(5), int64(100), int64(7), int(domain.EventTypeRaid), int(domain.RepeatWeekly), int32(249),
						raidTime, int64(0x400), time.Time{}, "Onyxia", "", 40).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO calendar_events`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)
			err = NewCalendarRepository(db, testLogger).SaveEvent(ctx, event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCalendarRepository_DeleteEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM calendar_events WHERE id = \$1`).
					WithArgs(int64(5)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing row",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM calendar_events WHERE id = \$1`).
					WithArgs(int64(5)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM calendar_events`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)
			err = NewCalendarRepository(db, testLogger).DeleteEvent(ctx, 5)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCalendarRepository_SaveInvite(t *testing.T) {
	ctx := context.Background()
	invite := domain.NewCalendarInvite(40, 5, 100, 200, domain.InviteStatusTentative, domain.RankPlayer, "maybe", raidTime)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "upsert",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO calendar_invites .* ON CONFLICT \(id\) DO UPDATE ` + inviteUpsertSet).
					WithArgs(int64(40), int64(5), int64(100), int64(200), raidTime, int(domain.InviteStatusTentative), int(domain.RankPlayer), "maybe").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "event row missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO calendar_invites`).WillReturnError(&pq.Error{Code: "23503"})
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO calendar_invites`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)
			err = NewCalendarRepository(db, testLogger).SaveInvite(ctx, invite)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCalendarRepository_DeleteInvites(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCalendarRepository(db, testLogger)

	require.NoError(t, repo.DeleteInvites(context.Background(), nil))

	mock.ExpectExec(`DELETE FROM calendar_invites WHERE id = ANY\(\$1\)`).
		WithArgs(pq.Array([]int64{40, 41})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, repo.DeleteInvites(context.Background(), []domain.InviteID{40, 41}))
	require.NoError(t, mock.ExpectationsWereMet())
}
