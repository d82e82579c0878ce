package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// CalendarAlertEmailData holds data for the invite and event removal alert emails.
type CalendarAlertEmailData struct {
	Email      string
	PlayerName string
	Title      string
	EventTime  time.Time
}

// EmailService defines the contract for sending calendar alert emails.
type EmailService interface {
	SendInviteAlert(ctx context.Context, data *CalendarAlertEmailData) error
	SendEventRemovedAlert(ctx context.Context, data *CalendarAlertEmailData) error
}
