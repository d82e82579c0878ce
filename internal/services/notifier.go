package services

import (
	"context"
	"log/slog"
	"time"

	"gamecalendar/internal/domain"
)

// Notifier turns calendar changes into per-player messages. Builders read the records
// they are given and copy what they need, so the registry calls them under its lock and
// hands the result to Deliver once the lock is released.
type Notifier struct {
	messenger domain.Messenger
	logger    *slog.Logger
}

// NewNotifier returns a Notifier delivering through m. A nil messenger drops messages.
func NewNotifier(m domain.Messenger, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{messenger: m, logger: logger}
}

// Deliver sends each message once. Errors are logged; the caller never waits on retries.
func (n *Notifier) Deliver(ctx context.Context, msgs ...domain.Message) {
	if n == nil || n.messenger == nil {
		return
	}
	for _, msg := range msgs {
		if err := n.messenger.Deliver(ctx, msg); err != nil {
			n.logger.WarnContext(ctx, "calendar message not delivered",
				"kind", msg.Kind, "to", msg.To, "err", err)
		}
	}
}

// Relatives returns the creator followed by every invitee, without duplicates.
func (n *Notifier) Relatives(e *domain.CalendarEvent) []domain.PlayerID {
	seen := map[domain.PlayerID]struct{}{e.CreatorID: {}}
	out := []domain.PlayerID{e.CreatorID}
	for _, inv := range e.Invites() {
		if _, ok := seen[inv.InviteeID]; ok {
			continue
		}
		seen[inv.InviteeID] = struct{}{}
		out = append(out, inv.InviteeID)
	}
	return out
}

// Broadcast addresses payload to every relative of e.
func (n *Notifier) Broadcast(e *domain.CalendarEvent, kind domain.MessageKind, payload any) []domain.Message {
	relatives := n.Relatives(e)
	msgs := make([]domain.Message, 0, len(relatives))
	for _, p := range relatives {
		msgs = append(msgs, domain.Message{To: p, Kind: kind, Payload: payload})
	}
	return msgs
}

// InviteCreated sends the invite and the invite alert to the invitee.
func (n *Notifier) InviteCreated(e *domain.CalendarEvent, inv *domain.CalendarInvite) []domain.Message {
	return []domain.Message{
		{To: inv.InviteeID, Kind: domain.MessageInvite, Payload: domain.InvitePayload{
			EventID:      e.ID,
			InviteID:     inv.ID,
			InviteeID:    inv.InviteeID,
			SenderID:     inv.SenderID,
			Status:       inv.Status,
			Rank:         inv.Rank,
			IsGuildEvent: e.IsGuildEvent(),
			StatusTime:   inv.LastUpdateTime,
		}},
		{To: inv.InviteeID, Kind: domain.MessageInviteAlert, Payload: domain.InviteAlertPayload{
			EventID:   e.ID,
			InviteID:  inv.ID,
			Title:     e.Title,
			EventTime: e.EventTime,
			Flags:     e.Flags.Bits(),
			Type:      e.Type,
			DungeonID: e.DungeonID,
			CreatorID: e.CreatorID,
			SenderID:  inv.SenderID,
			InviteeID: inv.InviteeID,
			Status:    inv.Status,
			Rank:      inv.Rank,
		}},
	}
}

// InviteRemoved tells the removed invitee and the creator. inv must already be detached.
func (n *Notifier) InviteRemoved(e *domain.CalendarEvent, inv *domain.CalendarInvite) []domain.Message {
	payload := domain.InviteRemovedPayload{
		EventID:   e.ID,
		InviteeID: inv.InviteeID,
		Flags:     e.Flags.Bits(),
		Status:    domain.InviteStatusRemoved,
	}
	msgs := []domain.Message{{To: inv.InviteeID, Kind: domain.MessageInviteRemoved, Payload: payload}}
	if e.CreatorID != inv.InviteeID {
		msgs = append(msgs, domain.Message{To: e.CreatorID, Kind: domain.MessageInviteRemoved, Payload: payload})
	}
	return msgs
}

// EventRemoved alerts every relative. Call it before the invites are destroyed.
func (n *Notifier) EventRemoved(e *domain.CalendarEvent) []domain.Message {
	return n.Broadcast(e, domain.MessageEventRemovedAlert, domain.EventRemovedAlertPayload{
		EventID:   e.ID,
		Title:     e.Title,
		EventTime: e.EventTime,
	})
}

// EventUpdated alerts every relative, carrying the time the event was scheduled for.
func (n *Notifier) EventUpdated(e *domain.CalendarEvent, oldTime time.Time) []domain.Message {
	return n.Broadcast(e, domain.MessageEventUpdatedAlert, domain.EventUpdatedAlertPayload{
		EventID:      e.ID,
		OldEventTime: oldTime,
		EventTime:    e.EventTime,
		UnknownTime:  e.UnknownTime,
		Flags:        e.Flags.Bits(),
		Type:         e.Type,
		RepeatType:   e.RepeatType,
		DungeonID:    e.DungeonID,
		MaxInvites:   e.MaxInvites,
		Title:        e.Title,
		Description:  e.Description,
	})
}

// StatusChanged broadcasts the invite's new status.
func (n *Notifier) StatusChanged(e *domain.CalendarEvent, inv *domain.CalendarInvite) []domain.Message {
	return n.Broadcast(e, domain.MessageInviteStatus, domain.InviteStatusPayload{
		EventID:    e.ID,
		InviteeID:  inv.InviteeID,
		EventTime:  e.EventTime,
		Flags:      e.Flags.Bits(),
		Status:     inv.Status,
		StatusTime: inv.LastUpdateTime,
		Text:       inv.Text,
	})
}

// RankChanged broadcasts the invite's new moderation rank.
func (n *Notifier) RankChanged(e *domain.CalendarEvent, inv *domain.CalendarInvite) []domain.Message {
	return n.Broadcast(e, domain.MessageModeratorStatus, domain.ModeratorStatusPayload{
		EventID:   e.ID,
		InviteeID: inv.InviteeID,
		Rank:      inv.Rank,
	})
}

// EventDetail is the full event payload for one player.
func (n *Notifier) EventDetail(to domain.PlayerID, e *domain.CalendarEvent, sendType domain.SendEventType) domain.Message {
	snapshot := e.Clone()
	return domain.Message{To: to, Kind: domain.MessageEvent, Payload: domain.EventPayload{
		SendType: sendType,
		Event:    snapshot,
		Invites:  snapshot.Invites(),
	}}
}

// ClearPendingAction resets the pending indicator of one player.
func (n *Notifier) ClearPendingAction(to domain.PlayerID) domain.Message {
	return domain.Message{To: to, Kind: domain.MessageClearPendingAction, Payload: domain.ClearPendingActionPayload{}}
}

// CommandResult acknowledges a command, translating err into a result code.
func (n *Notifier) CommandResult(to domain.PlayerID, err error, param string) domain.Message {
	return domain.Message{To: to, Kind: domain.MessageCommandResult, Payload: domain.CommandResultPayload{
		Result: domain.CommandResultFor(err),
		Param:  param,
	}}
}

// SendCommandResult builds and delivers a command result.
func (n *Notifier) SendCommandResult(ctx context.Context, to domain.PlayerID, err error, param string) {
	n.Deliver(ctx, n.CommandResult(to, err, param))
}

// RaidLockoutAdded tells a player about a new dungeon lockout.
func (n *Notifier) RaidLockoutAdded(ctx context.Context, to domain.PlayerID, lockout domain.DungeonLockout) {
	n.Deliver(ctx, domain.Message{To: to, Kind: domain.MessageRaidLockoutAdd, Payload: domain.RaidLockoutPayload{Lockout: lockout}})
}

// RaidLockoutRemoved tells a player a dungeon lockout was reset.
func (n *Notifier) RaidLockoutRemoved(ctx context.Context, to domain.PlayerID, lockout domain.DungeonLockout) {
	n.Deliver(ctx, domain.Message{To: to, Kind: domain.MessageRaidLockoutRemove, Payload: domain.RaidLockoutPayload{Lockout: lockout}})
}

func withoutRecipient(msgs []domain.Message, player domain.PlayerID) []domain.Message {
	out := msgs[:0]
	for _, m := range msgs {
		if m.To != player {
			out = append(out, m)
		}
	}
	return out
}
