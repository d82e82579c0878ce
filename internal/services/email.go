package services

import (
	"context"
	"fmt"
	"log/slog"

	"gamecalendar/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	if logger == nil {
		logger = slog.Default()
	}
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendInviteAlert mails the "invite_alert" template to a freshly invited player.
func (s *emailService) SendInviteAlert(ctx context.Context, data *domain.CalendarAlertEmailData) error {
	return s.send(ctx, "invite_alert", data)
}

// SendEventRemovedAlert mails the "event_removed" template to a former relative of an event.
func (s *emailService) SendEventRemovedAlert(ctx context.Context, data *domain.CalendarAlertEmailData) error {
	return s.send(ctx, "event_removed", data)
}

func (s *emailService) send(ctx context.Context, template string, data *domain.CalendarAlertEmailData) error {
	if data == nil {
		return fmt.Errorf("%s email data is nil", template)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "calendar email sent", "template", template, "player", data.PlayerName)
	return nil
}
