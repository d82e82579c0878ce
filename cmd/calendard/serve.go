package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gamecalendar/config"
	_ "gamecalendar/docs"
	"gamecalendar/internal/adapters/auth"
	"gamecalendar/internal/adapters/email"
	"gamecalendar/internal/adapters/session"
	delivery "gamecalendar/internal/delivery/http"
	"gamecalendar/internal/delivery/http/controllers"
	"gamecalendar/internal/domain"
	"gamecalendar/internal/repository/postgres"
	"gamecalendar/internal/services"

	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
)

const shutdownTimeout = 10 * time.Second

// calendar is the in-process calendar with its background workers.
type calendar struct {
	registry *services.Registry
	persist  *services.PersistQueue
	alerts   *services.AlertMailer
	outbox   *session.Outbox
	notifier *services.Notifier
	lockouts *services.LockoutWatcher
	players  domain.PlayerDirectory
}

// newCalendar wires the registry to Postgres and the message fan-out, then loads every
// stored event.
func newCalendar(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*calendar, error) {
	players := postgres.NewPlayerRepository(db)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.SESRegion,
			AccessKeyID:        cfg.Mail.SESAccessKeyID,
			SecretAccessKey:    cfg.Mail.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Mail.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}

	c := &calendar{
		persist: services.NewPersistQueue(postgres.NewCalendarRepository(db, logger), logger, cfg.PersistTimeout),
		alerts:  services.NewAlertMailer(players, services.NewEmailService(mailer, email.NewTemplateRenderer(), logger), logger, cfg.AlertBacklog),
		outbox:  session.NewOutbox(cfg.OutboxSize),
		players: players,
	}
	c.notifier = services.NewNotifier(services.FanoutMessenger{c.outbox, c.alerts}, logger)
	c.lockouts = services.NewLockoutWatcher(postgres.NewLockoutRepository(db), c.notifier)
	c.registry = services.NewRegistry(services.RegistryConfig{
		MaxInvites: cfg.MaxInvites,
		Repo:       postgres.NewCalendarRepository(db, logger),
		Guilds:     postgres.NewGuildRepository(db),
		Persist:    c.persist,
		Notifier:   c.notifier,
		Logger:     logger,
	})
	if err := c.registry.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load calendar: %w", err)
	}
	return c, nil
}

// removePlayer deletes the player's calendar and drops whatever is still queued for them.
func (c *calendar) removePlayer(ctx context.Context, player domain.PlayerID) (events, invites int) {
	events, invites = c.registry.RemovePlayerCalendar(ctx, player)
	c.outbox.Forget(player)
	c.lockouts.Forget(player)
	return events, invites
}

// drain applies pending writes and sends queued alert mails.
func (c *calendar) drain(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	c.persist.Flush(ctx)
	c.alerts.Drain(ctx)
	logger.Info("calendar drained")
}

// withOfflineRegistry runs fn against a freshly loaded registry and drains its writes
// before returning. The server must not run at the same time.
func withOfflineRegistry(ctx context.Context, fn func(context.Context, *calendar, *slog.Logger)) error {
	cfg, logger, db, err := setup(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	cal, err := newCalendar(ctx, cfg, logger, db)
	if err != nil {
		return err
	}
	fn(ctx, cal, logger)
	cal.drain(logger)
	return nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the calendar HTTP server.",
		Action: func(c *cli.Context) error {
			ctx := c.Context
			cfg, logger, db, err := setup(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			cal, err := newCalendar(ctx, cfg, logger, db)
			if err != nil {
				return err
			}

			tokens := auth.NewJWT(cfg.JWTSecret)
			authSvc := services.NewAuthService(cal.players, auth.NewBcryptHasher(bcrypt.DefaultCost), tokens, cfg.JWTExpiry)
			router := delivery.NewRouter(
				controllers.NewCalendarController(logger, cal.registry, cal.players, cal.lockouts, cal.outbox, cal.notifier),
				controllers.NewAuthController(logger, authSvc),
				tokens,
				logger,
				cfg.CORSAllowedOrigins,
			)

			workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				_ = cal.persist.Run(workerCtx)
			}()
			go func() {
				defer wg.Done()
				_ = cal.alerts.Run(workerCtx)
			}()

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			serveErr := make(chan error, 1)
			go func() {
				logger.Info("server starting", "port", cfg.Port)
				serveErr <- srv.ListenAndServe()
			}()

			select {
			case err = <-serveErr:
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				err = srv.Shutdown(shutdownCtx)
				cancel()
			}

			stopWorkers()
			wg.Wait()
			cal.drain(logger)

			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}
