package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"gamecalendar/internal/delivery/http/helpers"
	"gamecalendar/internal/delivery/http/middleware"
	"gamecalendar/internal/domain"
)

// MessageInbox hands out the calendar messages queued for a player.
type MessageInbox interface {
	Drain(player domain.PlayerID, limit int) []domain.Message
}

// CommandResults queues the result of a player's calendar command next to the HTTP reply.
type CommandResults interface {
	SendCommandResult(ctx context.Context, to domain.PlayerID, err error, param string)
}

type CalendarController struct {
	Logger   *slog.Logger
	Service  domain.CalendarService
	Players  domain.PlayerDirectory
	Lockouts domain.LockoutInfo
	Inbox    MessageInbox
	Results  CommandResults
}

func NewCalendarController(logger *slog.Logger, svc domain.CalendarService, players domain.PlayerDirectory, lockouts domain.LockoutInfo, inbox MessageInbox, results CommandResults) *CalendarController {
	return &CalendarController{
		Logger:   logger,
		Service:  svc,
		Players:  players,
		Lockouts: lockouts,
		Inbox:    inbox,
		Results:  results,
	}
}

func (c *CalendarController) player(w http.ResponseWriter, r *http.Request) (domain.PlayerID, bool) {
	id, ok := middleware.PlayerIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return id, ok
}

// finish acknowledges a command to actor and writes the error reply when err is set.
// It reports whether the command succeeded.
func (c *CalendarController) finish(w http.ResponseWriter, r *http.Request, actor domain.PlayerID, err error, param string) bool {
	if c.Results != nil {
		c.Results.SendCommandResult(r.Context(), actor, err, param)
	}
	if err != nil {
		helpers.WriteCalendarError(w, r, c.Logger, err)
		return false
	}
	return true
}

// CreateEvent godoc
// @Summary Create a calendar event
// @Description Creates an event owned by the authenticated player. Guild events (flag 0x400) are bound to the creator's guild. max_invites of 0 or above the server ceiling uses the ceiling.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *CalendarController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	creator, ok := c.player(w, r)
	if !ok {
		return
	}
	flags, err := domain.ParseEventFlags(req.Flags)
	if err != nil {
		c.finish(w, r, creator, err, "")
		return
	}
	params := domain.AddEventParams{
		CreatorID:   creator,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        domain.EventType(req.Type),
		RepeatType:  domain.RepeatType(req.RepeatType),
		MaxInvites:  req.MaxInvites,
		DungeonID:   domain.NoDungeon,
		EventTime:   req.EventTime,
		Flags:       flags,
	}
	if req.DungeonID != nil {
		params.DungeonID = *req.DungeonID
	}
	if req.UnknownTime != nil {
		params.UnknownTime = *req.UnknownTime
	}
	event, err := c.Service.AddEvent(r.Context(), params)
	if !c.finish(w, r, creator, err, "") {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, newEventView(event))
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns the event and all of its invites. The same payload is queued to the player's messages.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event and its invites"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *CalendarController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	player, ok := c.player(w, r)
	if !ok {
		return
	}
	event, err := c.Service.EventByID(r.Context(), domain.EventID(eventID))
	if err != nil {
		helpers.WriteCalendarError(w, r, c.Logger, err)
		return
	}
	if err := c.Service.SendEvent(r.Context(), player, event.ID, domain.SendEventGet); err != nil {
		c.Logger.WarnContext(r.Context(), "event detail not queued", "event_id", event.ID, "player_id", player, "err", err)
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventView(event))
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Changes the event's details. Only the creator or a moderator may update; guild flags cannot change. Omitted fields keep their current value. Every relative receives an update alert.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [patch]
func (c *CalendarController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := c.player(w, r)
	if !ok {
		return
	}
	current, err := c.Service.EventByID(r.Context(), domain.EventID(eventID))
	if err != nil {
		c.finish(w, r, actor, err, "")
		return
	}
	params := domain.UpdateEventParams{
		EventID:     current.ID,
		ActorID:     actor,
		Title:       current.Title,
		Description: current.Description,
		Type:        current.Type,
		RepeatType:  current.RepeatType,
		DungeonID:   current.DungeonID,
		EventTime:   current.EventTime,
		UnknownTime: current.UnknownTime,
		Flags:       current.Flags,
	}
	if req.Title != nil {
		params.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Type != nil {
		params.Type = domain.EventType(*req.Type)
	}
	if req.RepeatType != nil {
		params.RepeatType = domain.RepeatType(*req.RepeatType)
	}
	if req.DungeonID != nil {
		params.DungeonID = *req.DungeonID
	}
	if req.EventTime != nil {
		params.EventTime = *req.EventTime
	}
	if req.UnknownTime != nil {
		params.UnknownTime = *req.UnknownTime
	}
	if req.Flags != nil {
		if params.Flags, err = domain.ParseEventFlags(*req.Flags); err != nil {
			c.finish(w, r, actor, err, "")
			return
		}
	}
	event, err := c.Service.UpdateEvent(r.Context(), params)
	if !c.finish(w, r, actor, err, "") {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventView(event))
}

// DeleteEvent godoc
// @Summary Remove an event
// @Description Removes the event and all of its invites. Allowed for the creator, and for guild officers on guild events. Every relative receives a removal alert. An unknown event id is a 404.
// @Tags events
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *CalendarController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	remover, ok := c.player(w, r)
	if !ok {
		return
	}
	_, err := c.Service.EventByID(r.Context(), domain.EventID(eventID))
	if err == nil {
		err = c.Service.RemoveEvent(r.Context(), domain.EventID(eventID), remover)
	}
	if !c.finish(w, r, remover, err, "") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CopyEvent godoc
// @Summary Copy an event
// @Description Creates a new event with the source's details at a new time. Invites are not copied. Only the creator or a moderator may copy.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Source event ID"
// @Param body body CopyEventRequest true "New event time"
// @Success 201 {object} helpers.APIResponse "data contains the copy"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/copy [post]
func (c *CalendarController) CopyEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req CopyEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := c.player(w, r)
	if !ok {
		return
	}
	event, err := c.Service.CopyEvent(r.Context(), domain.EventID(eventID), req.EventTime, actor)
	if !c.finish(w, r, actor, err, "") {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, newEventView(event))
}

// AddInvite godoc
// @Summary Invite a player
// @Description Invites a player by id or character name. Moderators may invite anyone; guild members may sign themselves up to their guild's events.
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param body body AddInviteRequest true "Invite data"
// @Success 201 {object} helpers.APIResponse "data contains the invite"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already invited or event full)"
// @Router /events/{eventID}/invites [post]
func (c *CalendarController) AddInvite(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req AddInviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	sender, ok := c.player(w, r)
	if !ok {
		return
	}
	invitee := domain.PlayerID(req.InviteeID)
	name := strings.TrimSpace(req.InviteeName)
	if invitee == 0 {
		p, err := c.Players.GetByName(r.Context(), name)
		if err != nil {
			c.finish(w, r, sender, err, name)
			return
		}
		invitee = p.ID
	}
	invite, err := c.Service.AddInvite(r.Context(), domain.AddInviteParams{
		EventID:   domain.EventID(eventID),
		SenderID:  sender,
		InviteeID: invitee,
		Status:    domain.InviteStatus(req.Status),
		Rank:      domain.ModerationRank(req.Rank),
		Text:      req.Text,
	})
	if !c.finish(w, r, sender, err, name) {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, invite)
}

// RemoveInvite godoc
// @Summary Remove an invite
// @Description Removes an invite. Allowed for its sender, its invitee and event moderators.
// @Tags invites
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param inviteID path int true "Invite ID"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invites/{inviteID} [delete]
func (c *CalendarController) RemoveInvite(w http.ResponseWriter, r *http.Request) {
	eventID, inviteID, actor, ok := c.inviteTarget(w, r)
	if !ok {
		return
	}
	removed, err := c.Service.RemoveInvite(r.Context(), eventID, inviteID, actor)
	if err == nil && !removed {
		err = domain.ErrNotFound
	}
	if !c.finish(w, r, actor, err, "") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetInviteStatus godoc
// @Summary Respond to an invite
// @Description Sets an invite's status. Allowed for the invitee and event moderators.
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param inviteID path int true "Invite ID"
// @Param body body SetInviteStatusRequest true "New status"
// @Success 200 {object} helpers.APIResponse "data contains the invite"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invites/{inviteID}/status [put]
func (c *CalendarController) SetInviteStatus(w http.ResponseWriter, r *http.Request) {
	eventID, inviteID, actor, ok := c.inviteTarget(w, r)
	if !ok {
		return
	}
	var req SetInviteStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	invite, err := c.Service.SetInviteStatus(r.Context(), eventID, inviteID, actor, domain.InviteStatus(req.Status), req.Text)
	if !c.finish(w, r, actor, err, "") {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invite)
}

// SetInviteRank godoc
// @Summary Change an invite's moderation rank
// @Description Promotes or demotes an invitee. Allowed for the creator and owner-rank invitees; the owner rank cannot be granted.
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param inviteID path int true "Invite ID"
// @Param body body SetInviteRankRequest true "New rank"
// @Success 200 {object} helpers.APIResponse "data contains the invite"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invites/{inviteID}/rank [put]
func (c *CalendarController) SetInviteRank(w http.ResponseWriter, r *http.Request) {
	eventID, inviteID, actor, ok := c.inviteTarget(w, r)
	if !ok {
		return
	}
	var req SetInviteRankRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	invite, err := c.Service.SetInviteRank(r.Context(), eventID, inviteID, actor, domain.ModerationRank(req.Rank))
	if !c.finish(w, r, actor, err, "") {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invite)
}

func (c *CalendarController) inviteTarget(w http.ResponseWriter, r *http.Request) (domain.EventID, domain.InviteID, domain.PlayerID, bool) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return 0, 0, 0, false
	}
	inviteID, ok := helpers.PathID(w, r, "inviteID")
	if !ok {
		return 0, 0, 0, false
	}
	actor, ok := c.player(w, r)
	if !ok {
		return 0, 0, 0, false
	}
	return domain.EventID(eventID), domain.InviteID(inviteID), actor, true
}

// MyEvents godoc
// @Summary List my events
// @Description Events the authenticated player created or is invited to, by time.
// @Tags players
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /players/me/events [get]
func (c *CalendarController) MyEvents(w http.ResponseWriter, r *http.Request) {
	player, ok := c.player(w, r)
	if !ok {
		return
	}
	events := c.Service.PlayerEvents(r.Context(), player)
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.Paginate(events, helpers.ParsePagination(r)))
}

// MyInvites godoc
// @Summary List my invites
// @Description Invites addressed to the authenticated player, by invite id.
// @Tags players
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /players/me/invites [get]
func (c *CalendarController) MyInvites(w http.ResponseWriter, r *http.Request) {
	player, ok := c.player(w, r)
	if !ok {
		return
	}
	invites := c.Service.PlayerInvites(r.Context(), player)
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.Paginate(invites, helpers.ParsePagination(r)))
}

// MyPending godoc
// @Summary Count my pending invites
// @Tags players
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data.pending is the number of unanswered invites"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /players/me/pending [get]
func (c *CalendarController) MyPending(w http.ResponseWriter, r *http.Request) {
	player, ok := c.player(w, r)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PendingResponse{Pending: c.Service.PlayerNumPending(r.Context(), player)})
}

// MyMessages godoc
// @Summary Poll my calendar messages
// @Description Removes and returns queued calendar notifications, oldest first.
// @Tags players
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum messages to return (default all)"
// @Success 200 {object} helpers.APIResponse "data is the list of messages"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /players/me/messages [get]
func (c *CalendarController) MyMessages(w http.ResponseWriter, r *http.Request) {
	player, ok := c.player(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Inbox.Drain(player, limit))
}

// MyLockouts godoc
// @Summary List my dungeon lockouts
// @Description Instance binds that have not reset yet, soonest reset first. Binds gained or reset since the previous call are also queued as raid lockout messages.
// @Tags players
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is the list of lockouts"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /players/me/lockouts [get]
func (c *CalendarController) MyLockouts(w http.ResponseWriter, r *http.Request) {
	player, ok := c.player(w, r)
	if !ok {
		return
	}
	lockouts, err := c.Lockouts.Lockouts(r.Context(), player)
	if err != nil {
		helpers.WriteCalendarError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, lockouts)
}
