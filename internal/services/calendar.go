package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gamecalendar/internal/domain"
)

// Registry is the in-memory store of every calendar event. One mutex serializes all
// access to the store and the identifier allocator; collaborators (guild queries,
// persistence, messaging) are never called while it is held.
type Registry struct {
	mu     sync.Mutex
	events map[domain.EventID]*domain.CalendarEvent
	ids    idAllocator

	maxInvites int
	repo       domain.CalendarRepository
	guilds     domain.GuildInfo
	persist    *PersistQueue
	notifier   *Notifier
	logger     *slog.Logger
	now        func() time.Time
}

// RegistryConfig wires a Registry. Repo, Guilds and Persist may be nil.
type RegistryConfig struct {
	MaxInvites int
	Repo       domain.CalendarRepository
	Guilds     domain.GuildInfo
	Persist    *PersistQueue
	Notifier   *Notifier
	Logger     *slog.Logger
}

var _ domain.CalendarService = (*Registry)(nil)

// NewRegistry returns an empty registry. Call Load to prime it from the repository.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.MaxInvites <= 0 {
		cfg.MaxInvites = domain.DefaultMaxInvites
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NewNotifier(nil, cfg.Logger)
	}
	return &Registry{
		events:     make(map[domain.EventID]*domain.CalendarEvent),
		maxInvites: cfg.MaxInvites,
		repo:       cfg.Repo,
		guilds:     cfg.Guilds,
		persist:    cfg.Persist,
		notifier:   cfg.Notifier,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// Load replaces the store with every event and invite from the repository and raises
// both identifier high-water marks to the largest IDs seen.
func (r *Registry) Load(ctx context.Context) error {
	if r.repo == nil {
		return nil
	}
	loaded, err := r.repo.LoadEvents(ctx)
	if err != nil {
		return fmt.Errorf("load calendar events: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = make(map[domain.EventID]*domain.CalendarEvent, len(loaded))
	r.ids = idAllocator{}
	var maxEvent, maxInvite uint64
	var invites int
	for _, e := range loaded {
		if _, dup := r.events[e.ID]; dup || e.ID == 0 {
			r.logger.WarnContext(ctx, "skipping calendar event with duplicate or zero id", "event_id", e.ID)
			continue
		}
		r.events[e.ID] = e
		maxEvent = max(maxEvent, uint64(e.ID))
		for _, inv := range e.Invites() {
			maxInvite = max(maxInvite, uint64(inv.ID))
			invites++
		}
	}
	r.ids.events.seed(maxEvent)
	r.ids.invites.seed(maxInvite)
	r.logger.InfoContext(ctx, "calendar loaded", "events", len(r.events), "invites", invites)
	return nil
}

// AddEvent creates an event owned by p.CreatorID.
func (r *Registry) AddEvent(ctx context.Context, p domain.AddEventParams) (*domain.CalendarEvent, error) {
	var guild domain.GuildID
	if p.Flags.GuildEvent {
		g, err := r.guildOf(ctx, p.CreatorID)
		if err != nil {
			return nil, err
		}
		guild = g
	}
	maxInvites := p.MaxInvites
	if maxInvites <= 0 || maxInvites > r.maxInvites {
		maxInvites = r.maxInvites
	}
	e := domain.NewCalendarEvent(0, p.CreatorID, guild, p.Type, p.RepeatType, p.DungeonID,
		p.EventTime, p.Flags, p.UnknownTime, p.Title, p.Description, maxInvites)
	if err := e.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	e.ID = domain.EventID(r.ids.events.next())
	r.events[e.ID] = e
	r.persist.saveEvent(e)
	msg := r.notifier.EventDetail(p.CreatorID, e, domain.SendEventAdd)
	out := e.Clone()
	r.mu.Unlock()

	r.notifier.Deliver(ctx, msg)
	return out, nil
}

// UpdateEvent replaces the mutable fields of an event and alerts its relatives.
func (r *Registry) UpdateEvent(ctx context.Context, p domain.UpdateEventParams) (*domain.CalendarEvent, error) {
	r.mu.Lock()
	e, ok := r.events[p.EventID]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("event %d: %w", p.EventID, domain.ErrNotFound)
	}
	if !e.CanModerate(p.ActorID) {
		r.mu.Unlock()
		return nil, fmt.Errorf("update event %d: %w", p.EventID, domain.ErrNotAuthorized)
	}
	if p.Flags.GuildEvent != e.Flags.GuildEvent || p.Flags.GuildAnnouncement != e.Flags.GuildAnnouncement {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: guild flags cannot change", domain.ErrInvalidArgument)
	}
	candidate := e.Clone()
	candidate.Title = p.Title
	candidate.Description = p.Description
	candidate.Type = p.Type
	candidate.RepeatType = p.RepeatType
	candidate.DungeonID = p.DungeonID
	candidate.EventTime = p.EventTime
	candidate.UnknownTime = p.UnknownTime
	candidate.Flags = p.Flags
	if err := candidate.Validate(); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	oldTime := e.EventTime
	e.Title, e.Description = candidate.Title, candidate.Description
	e.Type, e.RepeatType, e.DungeonID = candidate.Type, candidate.RepeatType, candidate.DungeonID
	e.EventTime, e.UnknownTime, e.Flags = candidate.EventTime, candidate.UnknownTime, candidate.Flags
	r.persist.saveEvent(e)
	msgs := r.notifier.EventUpdated(e, oldTime)
	out := e.Clone()
	r.mu.Unlock()

	r.notifier.Deliver(ctx, msgs...)
	return out, nil
}

// CopyEvent schedules a copy of an event at newTime. Invites are not copied.
func (r *Registry) CopyEvent(ctx context.Context, eventID domain.EventID, newTime time.Time, actor domain.PlayerID) (*domain.CalendarEvent, error) {
	r.mu.Lock()
	src, ok := r.events[eventID]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("event %d: %w", eventID, domain.ErrNotFound)
	}
	if !src.CanModerate(actor) {
		r.mu.Unlock()
		return nil, fmt.Errorf("copy event %d: %w", eventID, domain.ErrNotAuthorized)
	}
	e := domain.NewCalendarEvent(domain.EventID(r.ids.events.next()), src.CreatorID, src.GuildID, src.Type, src.RepeatType,
		src.DungeonID, newTime, src.Flags, src.UnknownTime, src.Title, src.Description, src.MaxInvites)
	r.events[e.ID] = e
	r.persist.saveEvent(e)
	msg := r.notifier.EventDetail(actor, e, domain.SendEventCopy)
	out := e.Clone()
	r.mu.Unlock()

	r.notifier.Deliver(ctx, msg)
	return out, nil
}

// RemoveEvent destroys an event and its invites. A missing event is a no-op. Guild
// officers may remove guild events they did not create; their rank is checked outside
// the lock and the event is revalidated afterwards.
func (r *Registry) RemoveEvent(ctx context.Context, eventID domain.EventID, remover domain.PlayerID) error {
	r.mu.Lock()
	e, ok := r.events[eventID]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	if e.CreatorID == remover {
		msgs := r.removeEventLocked(e)
		r.mu.Unlock()
		r.notifier.Deliver(ctx, msgs...)
		return nil
	}
	guild, isGuildEvent := e.GuildID, e.IsGuildEvent()
	r.mu.Unlock()

	if !isGuildEvent || guild == 0 {
		return fmt.Errorf("remove event %d: %w", eventID, domain.ErrNotAuthorized)
	}
	allowed, err := r.canManageGuild(ctx, guild, remover)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("remove event %d: %w", eventID, domain.ErrNotAuthorized)
	}

	r.mu.Lock()
	if cur, ok := r.events[eventID]; !ok || cur != e {
		r.mu.Unlock()
		return nil
	}
	msgs := r.removeEventLocked(e)
	r.mu.Unlock()

	r.notifier.Deliver(ctx, msgs...)
	return nil
}

// removeEventLocked destroys e, frees its identifiers and returns the removal alerts.
func (r *Registry) removeEventLocked(e *domain.CalendarEvent) []domain.Message {
	msgs := r.notifier.EventRemoved(e)
	for _, inv := range e.RemoveAllInvites() {
		r.ids.invites.release(uint64(inv.ID))
	}
	delete(r.events, e.ID)
	r.ids.events.release(uint64(e.ID))
	r.persist.deleteEvent(e.ID)
	return msgs
}

// EventByID returns a copy of the event.
func (r *Registry) EventByID(ctx context.Context, eventID domain.EventID) (*domain.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event %d: %w", eventID, domain.ErrNotFound)
	}
	return e.Clone(), nil
}

// SendEvent sends the full event payload to a player.
func (r *Registry) SendEvent(ctx context.Context, to domain.PlayerID, eventID domain.EventID, sendType domain.SendEventType) error {
	r.mu.Lock()
	e, ok := r.events[eventID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("event %d: %w", eventID, domain.ErrNotFound)
	}
	msg := r.notifier.EventDetail(to, e, sendType)
	r.mu.Unlock()

	r.notifier.Deliver(ctx, msg)
	return nil
}

// AddInvite attaches a new invite to an event. The sender must moderate the event,
// except that guild members may sign themselves up to their guild's events at player
// rank. Only the creator may hold an Owner invite, and only the creator or an owner
// may invite at Moderator rank.
func (r *Registry) AddInvite(ctx context.Context, p domain.AddInviteParams) (*domain.CalendarInvite, error) {
	if !p.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown invite status %d", domain.ErrInvalidArgument, p.Status)
	}
	if !p.Rank.Valid() {
		return nil, fmt.Errorf("%w: unknown moderation rank %d", domain.ErrInvalidArgument, p.Rank)
	}
	if p.StatusTime.IsZero() {
		p.StatusTime = r.now()
	}
	var senderGuild domain.GuildID
	if p.SenderID == p.InviteeID && r.guilds != nil {
		g, err := r.guilds.GuildOf(ctx, p.SenderID)
		if err != nil {
			return nil, fmt.Errorf("resolve guild of player %d: %w", p.SenderID, err)
		}
		senderGuild = g
	}

	r.mu.Lock()
	e, ok := r.events[p.EventID]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("event %d: %w", p.EventID, domain.ErrNotFound)
	}
	signUp := p.SenderID == p.InviteeID && e.IsGuildEvent() && senderGuild != 0 && senderGuild == e.GuildID
	switch {
	case !e.CanModerate(p.SenderID):
		if !signUp {
			r.mu.Unlock()
			return nil, fmt.Errorf("invite to event %d: %w", p.EventID, domain.ErrNotAuthorized)
		}
		// Guild sign-ups never carry moderation rights.
		p.Rank = domain.RankPlayer
	case p.Rank == domain.RankOwner && (p.SenderID != e.CreatorID || p.InviteeID != e.CreatorID):
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: owner rank is reserved for the creator", domain.ErrInvalidArgument)
	case p.Rank == domain.RankModerator && !e.CanGrantRank(p.SenderID):
		r.mu.Unlock()
		return nil, fmt.Errorf("grant moderator on event %d: %w", p.EventID, domain.ErrNotAuthorized)
	}
	if _, dup := e.InviteByPlayer(p.InviteeID); dup {
		r.mu.Unlock()
		return nil, fmt.Errorf("invite player %d: %w", p.InviteeID, domain.ErrAlreadyInvited)
	}
	if e.InviteCount() >= e.MaxInvites {
		r.mu.Unlock()
		return nil, fmt.Errorf("invite to event %d: %w", p.EventID, domain.ErrCapacityExceeded)
	}
	id := domain.InviteID(r.ids.invites.next())
	inv := domain.NewCalendarInvite(id, e.ID, p.SenderID, p.InviteeID, p.Status, p.Rank, p.Text, p.StatusTime)
	if err := e.AddInvite(inv); err != nil {
		r.ids.invites.release(uint64(id))
		r.mu.Unlock()
		return nil, err
	}
	r.persist.saveInvite(inv)
	msgs := r.notifier.InviteCreated(e, inv)
	out := inv.Clone()
	r.mu.Unlock()

	r.notifier.Deliver(ctx, msgs...)
	return out, nil
}

// RemoveInvite destroys one invite if remover is allowed to.
func (r *Registry) RemoveInvite(ctx context.Context, eventID domain.EventID, inviteID domain.InviteID, remover domain.PlayerID) (bool, error) {
	r.mu.Lock()
	e, ok := r.events[eventID]
	if !ok {
		r.mu.Unlock()
		return false, fmt.Errorf("event %d: %w", eventID, domain.ErrNotFound)
	}
	inv, ok := e.InviteByID(inviteID)
	if !ok {
		r.mu.Unlock()
		return false, fmt.Errorf("invite %d: %w", inviteID, domain.ErrNotFound)
	}
	removed, err := e.RemoveInviteByID(inviteID, remover)
	if err != nil || !removed {
		r.mu.Unlock()
		return false, err
	}
	r.ids.invites.release(uint64(inviteID))
	r.persist.deleteInvites(inviteID)
	msgs := r.notifier.InviteRemoved(e, inv)
	r.mu.Unlock()

	r.notifier.Deliver(ctx, msgs...)
	return true, nil
}

// SetInviteStatus records an invitee's response. Any status may follow any other.
func (r *Registry) SetInviteStatus(ctx context.Context, eventID domain.EventID, inviteID domain.InviteID, actor domain.PlayerID, status domain.InviteStatus, text string) (*domain.CalendarInvite, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown invite status %d", domain.ErrInvalidArgument, status)
	}

	r.mu.Lock()
	e, inv, err := r.inviteLocked(eventID, inviteID)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if actor != inv.InviteeID && !e.CanModerate(actor) {
		r.mu.Unlock()
		return nil, fmt.Errorf("set status of invite %d: %w", inviteID, domain.ErrNotAuthorized)
	}
	inv.Status = status
	inv.Text = text
	inv.LastUpdateTime = r.now()
	r.persist.saveInvite(inv)
	msgs := r.notifier.StatusChanged(e, inv)
	if actor == inv.InviteeID {
		msgs = append(msgs, r.notifier.ClearPendingAction(actor))
	}
	out := inv.Clone()
	r.mu.Unlock()

	r.notifier.Deliver(ctx, msgs...)
	return out, nil
}

// SetInviteRank promotes or demotes an invitee. Only the creator or an owner may do so,
// and ownership itself cannot be granted.
func (r *Registry) SetInviteRank(ctx context.Context, eventID domain.EventID, inviteID domain.InviteID, actor domain.PlayerID, rank domain.ModerationRank) (*domain.CalendarInvite, error) {
	if !rank.Valid() || rank == domain.RankOwner {
		return nil, fmt.Errorf("%w: rank %d cannot be granted", domain.ErrInvalidArgument, rank)
	}

	r.mu.Lock()
	e, inv, err := r.inviteLocked(eventID, inviteID)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if !e.CanGrantRank(actor) {
		r.mu.Unlock()
		return nil, fmt.Errorf("set rank of invite %d: %w", inviteID, domain.ErrNotAuthorized)
	}
	inv.Rank = rank
	r.persist.saveInvite(inv)
	msgs := r.notifier.RankChanged(e, inv)
	out := inv.Clone()
	r.mu.Unlock()

	r.notifier.Deliver(ctx, msgs...)
	return out, nil
}

func (r *Registry) inviteLocked(eventID domain.EventID, inviteID domain.InviteID) (*domain.CalendarEvent, *domain.CalendarInvite, error) {
	e, ok := r.events[eventID]
	if !ok {
		return nil, nil, fmt.Errorf("event %d: %w", eventID, domain.ErrNotFound)
	}
	inv, ok := e.InviteByID(inviteID)
	if !ok {
		return nil, nil, fmt.Errorf("invite %d: %w", inviteID, domain.ErrNotFound)
	}
	return e, inv, nil
}

// RemovePlayerCalendar purges a deleted character: every event it created and every
// invite addressed to it. No authorization is checked. Calling it twice is a no-op.
func (r *Registry) RemovePlayerCalendar(ctx context.Context, player domain.PlayerID) (events, invites int) {
	var msgs []domain.Message

	r.mu.Lock()
	for _, e := range r.sortedEventsLocked() {
		if e.CreatorID == player {
			msgs = append(msgs, r.removeEventLocked(e)...)
			events++
			continue
		}
		removed := e.RemoveInviteByPlayer(player)
		if len(removed) == 0 {
			continue
		}
		ids := make([]domain.InviteID, 0, len(removed))
		for _, inv := range removed {
			r.ids.invites.release(uint64(inv.ID))
			ids = append(ids, inv.ID)
			msgs = append(msgs, r.notifier.InviteRemoved(e, inv)...)
		}
		r.persist.deleteInvites(ids...)
		invites += len(removed)
	}
	r.mu.Unlock()

	r.notifier.Deliver(ctx, withoutRecipient(msgs, player)...)
	return events, invites
}

// RemoveGuildCalendar removes every event of guild. actor is recorded in the log only.
func (r *Registry) RemoveGuildCalendar(ctx context.Context, actor domain.PlayerID, guild domain.GuildID) int {
	if guild == 0 {
		return 0
	}
	var msgs []domain.Message
	removed := 0

	r.mu.Lock()
	for _, e := range r.sortedEventsLocked() {
		if e.GuildID != guild {
			continue
		}
		msgs = append(msgs, r.removeEventLocked(e)...)
		removed++
	}
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "guild calendar removed", "guild_id", guild, "actor", actor, "events", removed)
	r.notifier.Deliver(ctx, msgs...)
	return removed
}

// PlayerEvents lists the events a player created or is invited to, by time. The view is
// recomputed by scanning the store: players see few events, and a scan avoids keeping
// per-player indexes in step with every mutation.
func (r *Registry) PlayerEvents(ctx context.Context, player domain.PlayerID) []*domain.CalendarEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.CalendarEvent
	for _, e := range r.events {
		if e.CreatorID == player {
			out = append(out, e.Clone())
			continue
		}
		if _, ok := e.InviteByPlayer(player); ok {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EventTime.Equal(out[j].EventTime) {
			return out[i].EventTime.Before(out[j].EventTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PlayerInvites lists the invites addressed to a player, by invite ID.
func (r *Registry) PlayerInvites(ctx context.Context, player domain.PlayerID) []*domain.CalendarInvite {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.CalendarInvite
	for _, e := range r.events {
		for _, inv := range e.Invites() {
			if inv.InviteeID == player {
				out = append(out, inv.Clone())
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PlayerNumPending counts the player's invites still awaiting a response.
func (r *Registry) PlayerNumPending(ctx context.Context, player domain.PlayerID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.events {
		for _, inv := range e.Invites() {
			if inv.InviteeID == player && inv.Status.Pending() {
				n++
			}
		}
	}
	return n
}

func (r *Registry) sortedEventsLocked() []*domain.CalendarEvent {
	out := make([]*domain.CalendarEvent, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) guildOf(ctx context.Context, player domain.PlayerID) (domain.GuildID, error) {
	if r.guilds == nil {
		return 0, domain.ErrNotInGuild
	}
	g, err := r.guilds.GuildOf(ctx, player)
	if err != nil {
		return 0, fmt.Errorf("resolve guild of player %d: %w", player, err)
	}
	if g == 0 {
		return 0, domain.ErrNotInGuild
	}
	return g, nil
}

func (r *Registry) canManageGuild(ctx context.Context, guild domain.GuildID, player domain.PlayerID) (bool, error) {
	if r.guilds == nil {
		return false, nil
	}
	ok, err := r.guilds.CanManageEvents(ctx, guild, player)
	if err != nil {
		return false, fmt.Errorf("check guild rank of player %d: %w", player, err)
	}
	return ok, nil
}
