package domain

import (
	"errors"
	"fmt"
)

// Refinements of ErrInvalidArgument that map to dedicated client result codes.
var (
	ErrAlreadyInvited = fmt.Errorf("%w: player already invited", ErrInvalidArgument)
	ErrNotInGuild     = fmt.Errorf("%w: player not in a guild", ErrInvalidArgument)
)

// CommandResult is the result code sent to the client after a calendar command.
type CommandResult uint8

const (
	CommandOK                  CommandResult = 0
	CommandPermissions         CommandResult = 5
	CommandEventInvalid        CommandResult = 6
	CommandNotInvited          CommandResult = 7
	CommandInternal            CommandResult = 8
	CommandGuildPlayerNotGuild CommandResult = 9
	CommandAlreadyInvited      CommandResult = 10
	CommandPlayerNotFound      CommandResult = 11
	CommandInvitesExceeded     CommandResult = 14
	CommandInvalidArgument     CommandResult = 15
)

// CommandResultFor maps an operation error to the client result code.
func CommandResultFor(err error) CommandResult {
	switch {
	case err == nil:
		return CommandOK
	case errors.Is(err, ErrAlreadyInvited):
		return CommandAlreadyInvited
	case errors.Is(err, ErrNotInGuild):
		return CommandGuildPlayerNotGuild
	case errors.Is(err, ErrPlayerNotFound):
		return CommandPlayerNotFound
	case errors.Is(err, ErrNotFound):
		return CommandEventInvalid
	case errors.Is(err, ErrNotAuthorized):
		return CommandPermissions
	case errors.Is(err, ErrCapacityExceeded):
		return CommandInvitesExceeded
	case errors.Is(err, ErrInvalidArgument):
		return CommandInvalidArgument
	}
	return CommandInternal
}
