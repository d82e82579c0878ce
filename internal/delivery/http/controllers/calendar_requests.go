package controllers

import (
	"strings"
	"time"
	"unicode/utf8"

	"gamecalendar/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        uint8      `json:"type"`
	RepeatType  uint8      `json:"repeat_type"`
	MaxInvites  int        `json:"max_invites"`
	DungeonID   *int32     `json:"dungeon_id"`
	EventTime   time.Time  `json:"event_time"`
	UnknownTime *time.Time `json:"unknown_time"`
	Flags       uint32     `json:"flags"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	return validateEventFields(&c.Title, &c.Description, &c.Type, &c.RepeatType, &c.EventTime)
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. Omitted fields are unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Type        *uint8     `json:"type"`
	RepeatType  *uint8     `json:"repeat_type"`
	DungeonID   *int32     `json:"dungeon_id"`
	EventTime   *time.Time `json:"event_time"`
	UnknownTime *time.Time `json:"unknown_time"`
	Flags       *uint32    `json:"flags"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	return validateEventFields(u.Title, u.Description, u.Type, u.RepeatType, u.EventTime)
}

func validateEventFields(title, description *string, typ, repeat *uint8, eventTime *time.Time) []string {
	var errs []string
	if title != nil {
		switch t := strings.TrimSpace(*title); {
		case t == "":
			errs = append(errs, "title is required")
		case utf8.RuneCountInString(t) > domain.MaxTitleLength:
			errs = append(errs, "title is too long")
		}
	}
	if description != nil && utf8.RuneCountInString(*description) > domain.MaxDescriptionLength {
		errs = append(errs, "description is too long")
	}
	if typ != nil && !domain.EventType(*typ).Valid() {
		errs = append(errs, "unknown event type")
	}
	if repeat != nil && !domain.RepeatType(*repeat).Valid() {
		errs = append(errs, "unknown repeat type")
	}
	if eventTime != nil && eventTime.IsZero() {
		errs = append(errs, "event_time is required")
	}
	return errs
}

// CopyEventRequest is the request body for POST /events/{eventID}/copy.
type CopyEventRequest struct {
	EventTime time.Time `json:"event_time"`
}

// Validate implements Validator.
func (c CopyEventRequest) Validate() []string {
	if c.EventTime.IsZero() {
		return []string{"event_time is required"}
	}
	return nil
}

// AddInviteRequest is the request body for POST /events/{eventID}/invites. The invitee
// is named either by id or by character name.
type AddInviteRequest struct {
	InviteeID   uint64 `json:"invitee_id"`
	InviteeName string `json:"invitee_name"`
	Status      uint8  `json:"status"`
	Rank        uint8  `json:"rank"`
	Text        string `json:"text"`
}

// Validate implements Validator.
func (a AddInviteRequest) Validate() []string {
	var errs []string
	if a.InviteeID == 0 && strings.TrimSpace(a.InviteeName) == "" {
		errs = append(errs, "invitee_id or invitee_name is required")
	}
	if !domain.InviteStatus(a.Status).Valid() {
		errs = append(errs, "unknown status")
	}
	if !domain.ModerationRank(a.Rank).Valid() {
		errs = append(errs, "unknown rank")
	}
	return errs
}

// SetInviteStatusRequest is the request body for PUT /events/{eventID}/invites/{inviteID}/status.
type SetInviteStatusRequest struct {
	Status uint8  `json:"status"`
	Text   string `json:"text"`
}

// Validate implements Validator.
func (s SetInviteStatusRequest) Validate() []string {
	if !domain.InviteStatus(s.Status).Valid() {
		return []string{"unknown status"}
	}
	return nil
}

// SetInviteRankRequest is the request body for PUT /events/{eventID}/invites/{inviteID}/rank.
type SetInviteRankRequest struct {
	Rank uint8 `json:"rank"`
}

// Validate implements Validator.
func (s SetInviteRankRequest) Validate() []string {
	if !domain.ModerationRank(s.Rank).Valid() {
		return []string{"unknown rank"}
	}
	return nil
}

// EventView is an event together with its invites, sorted by invite id.
type EventView struct {
	*domain.CalendarEvent
	Invites []*domain.CalendarInvite `json:"invites"`
}

func newEventView(e *domain.CalendarEvent) EventView {
	return EventView{CalendarEvent: e, Invites: e.Invites()}
}

// PendingResponse is the response body for GET /players/me/pending.
type PendingResponse struct {
	Pending int `json:"pending"`
}
