package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gamecalendar/config"
	"gamecalendar/internal/domain"
	"gamecalendar/internal/repository/postgres"

	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"
)

// @title Game Calendar API
// @version 1.0
// @description In-game calendar events and invites.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app := &cli.App{
		Name:  "calendard",
		Usage: "Serve and maintain the in-game calendar.",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			purgePlayerCommand(),
			purgeGuildCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("calendard failed", "err", err)
		os.Exit(1)
	}
}

// setup loads configuration and opens the database shared by every command.
func setup(ctx context.Context) (*config.Config, *slog.Logger, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return cfg, logger, db, nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the calendar tables if they do not exist.",
		Action: func(c *cli.Context) error {
			_, logger, db, err := setup(c.Context)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.Migrate(c.Context, db); err != nil {
				return err
			}
			logger.Info("calendar schema is up to date")
			return nil
		},
	}
}

func purgePlayerCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge-player",
		Usage: "Delete a player's events and invites, e.g. after character deletion.",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "id", Required: true, Usage: "player id"},
		},
		Action: func(c *cli.Context) error {
			return withOfflineRegistry(c.Context, func(ctx context.Context, cal *calendar, logger *slog.Logger) {
				player := domain.PlayerID(c.Uint64("id"))
				events, invites := cal.removePlayer(ctx, player)
				logger.Info("player calendar purged", "player", player, "events", events, "invites", invites)
			})
		},
	}
}

func purgeGuildCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge-guild",
		Usage: "Delete every event of a guild, e.g. after the guild is disbanded.",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "id", Required: true, Usage: "guild id"},
			&cli.Uint64Flag{Name: "actor", Usage: "player who disbanded the guild, for the log"},
		},
		Action: func(c *cli.Context) error {
			return withOfflineRegistry(c.Context, func(ctx context.Context, cal *calendar, logger *slog.Logger) {
				guild, actor := domain.GuildID(c.Uint("id")), domain.PlayerID(c.Uint64("actor"))
				events := cal.registry.RemoveGuildCalendar(ctx, actor, guild)
				logger.Info("guild calendar purged", "guild", guild, "actor", actor, "events", events)
			})
		},
	}
}
