package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamecalendar/internal/domain"
)

type authService struct {
	players domain.PlayerDirectory
	hasher  domain.PasswordHasher
	tokens  domain.TokenIssuer
	expiry  time.Duration
}

// NewAuthService creates an AuthService that checks account passwords and issues session tokens.
func NewAuthService(players domain.PlayerDirectory, hasher domain.PasswordHasher, tokens domain.TokenIssuer, expiry time.Duration) domain.AuthService {
	return &authService{
		players: players,
		hasher:  hasher,
		tokens:  tokens,
		expiry:  expiry,
	}
}

// Login authenticates a character by name. Unknown names and wrong passwords both
// return domain.ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, name, password string) (string, *domain.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	player, err := s.players.GetByName(ctx, name)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load player: %w", err)
	}
	if err := s.hasher.Compare(player.PasswordHash, player.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(player.ID, player.Name, s.expiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, player, nil
}
