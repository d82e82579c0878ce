package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for player lookups and login.
var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Player is a character as seen by the calendar: identity, guild and the account mail
// address used for offline alerts.
// swagger:model Player
type Player struct {
	ID           PlayerID `json:"id"`
	Name         string   `json:"name"`
	GuildID      GuildID  `json:"guild_id"`
	AccountEmail string   `json:"-"`
	PasswordHash string   `json:"-"`
	Salt         string   `json:"-"`
}

// PlayerDirectory resolves player identifiers.
type PlayerDirectory interface {
	GetByID(ctx context.Context, id PlayerID) (*Player, error)
	GetByName(ctx context.Context, name string) (*Player, error)
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues session tokens for an authenticated player.
type TokenIssuer interface {
	Issue(player PlayerID, name string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns the authenticated player.
type TokenVerifier interface {
	Verify(token string) (PlayerID, error)
}

// AuthService logs players in.
type AuthService interface {
	Login(ctx context.Context, name, password string) (token string, player *Player, err error)
}
