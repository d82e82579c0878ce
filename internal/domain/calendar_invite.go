package domain

import "time"

// CalendarInvite is one player's relationship to an event. It is owned by exactly one
// CalendarEvent; EventID is a key into the registry, not an owning reference.
// swagger:model CalendarInvite
type CalendarInvite struct {
	ID             InviteID       `json:"id"`
	EventID        EventID        `json:"event_id"`
	SenderID       PlayerID       `json:"sender_id"`
	InviteeID      PlayerID       `json:"invitee_id"`
	LastUpdateTime time.Time      `json:"last_update_time"`
	Status         InviteStatus   `json:"status"`
	Rank           ModerationRank `json:"rank"`
	Text           string         `json:"text"`
}

// NewCalendarInvite returns a new CalendarInvite. EventID is overwritten when the invite
// is attached to an event.
func NewCalendarInvite(id InviteID, eventID EventID, sender, invitee PlayerID, status InviteStatus, rank ModerationRank, text string, statusTime time.Time) *CalendarInvite {
	return &CalendarInvite{
		ID:             id,
		EventID:        eventID,
		SenderID:       sender,
		InviteeID:      invitee,
		LastUpdateTime: statusTime,
		Status:         status,
		Rank:           rank,
		Text:           text,
	}
}

// Clone returns a detached copy.
func (i *CalendarInvite) Clone() *CalendarInvite {
	c := *i
	return &c
}
