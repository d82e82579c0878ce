package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gamecalendar/internal/domain"
)

// ErrAlertQueueFull is returned by AlertMailer.Deliver when the mail backlog is full.
var ErrAlertQueueFull = errors.New("alert mail queue full")

// AlertMailer is a Messenger that mails invite and event removal alerts to the
// recipient's account address. Other message kinds are ignored. Mails are sent by Run
// so a slow mail provider never holds up the caller.
type AlertMailer struct {
	players domain.PlayerDirectory
	email   domain.EmailService
	logger  *slog.Logger
	queue   chan domain.Message
}

// NewAlertMailer returns an AlertMailer buffering up to backlog alerts.
func NewAlertMailer(players domain.PlayerDirectory, email domain.EmailService, logger *slog.Logger, backlog int) *AlertMailer {
	if backlog <= 0 {
		backlog = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertMailer{players: players, email: email, logger: logger, queue: make(chan domain.Message, backlog)}
}

// Deliver queues alert kinds for mailing.
func (a *AlertMailer) Deliver(ctx context.Context, msg domain.Message) error {
	switch msg.Kind {
	case domain.MessageInviteAlert, domain.MessageEventRemovedAlert:
	default:
		return nil
	}
	select {
	case a.queue <- msg:
		return nil
	default:
		return ErrAlertQueueFull
	}
}

// Run mails queued alerts until ctx is done.
func (a *AlertMailer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-a.queue:
			a.mail(ctx, msg)
		}
	}
}

// Drain mails the alerts already queued and returns once the queue is empty.
func (a *AlertMailer) Drain(ctx context.Context) {
	for {
		select {
		case msg := <-a.queue:
			a.mail(ctx, msg)
		default:
			return
		}
	}
}

func (a *AlertMailer) mail(ctx context.Context, msg domain.Message) {
	if err := a.send(ctx, msg); err != nil {
		a.logger.WarnContext(ctx, "calendar alert mail failed", "kind", msg.Kind, "to", msg.To, "err", err)
	}
}

func (a *AlertMailer) send(ctx context.Context, msg domain.Message) error {
	player, err := a.players.GetByID(ctx, msg.To)
	if err != nil {
		return fmt.Errorf("failed to resolve player: %w", err)
	}
	if player.AccountEmail == "" {
		return nil
	}
	data := &domain.CalendarAlertEmailData{Email: player.AccountEmail, PlayerName: player.Name}
	switch p := msg.Payload.(type) {
	case domain.InviteAlertPayload:
		data.Title, data.EventTime = p.Title, p.EventTime
		return a.email.SendInviteAlert(ctx, data)
	case domain.EventRemovedAlertPayload:
		data.Title, data.EventTime = p.Title, p.EventTime
		return a.email.SendEventRemovedAlert(ctx, data)
	default:
		return fmt.Errorf("unexpected payload %T for %s", msg.Payload, msg.Kind)
	}
}

// FanoutMessenger delivers every message to each of its messengers.
type FanoutMessenger []domain.Messenger

// Deliver tries every messenger and joins their errors.
func (f FanoutMessenger) Deliver(ctx context.Context, msg domain.Message) error {
	var errs []error
	for _, m := range f {
		if err := m.Deliver(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
