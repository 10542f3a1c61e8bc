// Package seat issues and verifies seat grants.
//
// A seat grant is an HS256 JWT naming one game and one player. The gRPC
// service hands a grant to each human seat when a game is created and
// requires it on every command issued for that seat.
package seat

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/louisbranch/vorago/internal/platform/config"
	apperrors "github.com/louisbranch/vorago/internal/platform/errors"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
)

const (
	// MinKeyBytes is the shortest accepted HMAC key.
	MinKeyBytes = 32
	// DefaultIssuer is used when VORAGO_SEAT_ISSUER is unset.
	DefaultIssuer = "vorago"
	// DefaultTTL is used when VORAGO_SEAT_TTL is unset.
	DefaultTTL = 24 * time.Hour
)

// seatEnv holds raw env values before post-parse validation.
type seatEnv struct {
	Key    string        `env:"SEAT_KEY"`
	Issuer string        `env:"SEAT_ISSUER" envDefault:"vorago"`
	TTL    time.Duration `env:"SEAT_TTL" envDefault:"24h"`
}

// Config defines how grants are signed and checked.
type Config struct {
	Issuer string
	Key    []byte
	TTL    time.Duration
	Now    func() time.Time
}

// Claims are the validated contents of a grant.
type Claims struct {
	Issuer    string
	JWTID     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	GameID    string
	Player    game.Player
}

// grantClaims is the internal claims type used for JWT parsing.
type grantClaims struct {
	jwt.RegisteredClaims
	GameID string `json:"game_id"`
	Player int    `json:"player"`
}

// LoadConfigFromEnv reads the grant key, issuer and TTL.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw seatEnv
	if err := config.ParseEnv(&raw); err != nil {
		return Config{}, fmt.Errorf("parse seat env: %w", err)
	}
	key := strings.TrimSpace(raw.Key)
	if err := config.RequireString("SEAT_KEY", key); err != nil {
		return Config{}, err
	}
	keyBytes, err := hex.DecodeString(key)
	if err != nil {
		return Config{}, fmt.Errorf("decode seat key: %w", err)
	}
	cfg := Config{
		Issuer: strings.TrimSpace(raw.Issuer),
		Key:    keyBytes,
		TTL:    raw.TTL,
		Now:    now,
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Issuer == "" {
		return errors.New("seat grant issuer is required")
	}
	if len(c.Key) < MinKeyBytes {
		return fmt.Errorf("seat grant key must be at least %d bytes", MinKeyBytes)
	}
	if c.TTL <= 0 {
		return errors.New("seat grant ttl must be positive")
	}
	return nil
}

func (c Config) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now().UTC()
}

// Authority signs and verifies grants with one key.
type Authority struct {
	cfg Config
}

// NewAuthority validates cfg and returns an Authority.
func NewAuthority(cfg Config) (*Authority, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Key = append([]byte(nil), cfg.Key...)
	return &Authority{cfg: cfg}, nil
}

// Issue signs a grant for one seat of a game.
func (a *Authority) Issue(gameID string, player game.Player) (string, error) {
	if strings.TrimSpace(gameID) == "" {
		return "", errors.New("game id is required")
	}
	if !player.Valid() {
		return "", fmt.Errorf("invalid player %d", int(player))
	}
	jti, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate grant id: %w", err)
	}
	now := a.cfg.now()
	claims := grantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.cfg.Issuer,
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
		},
		GameID: gameID,
		Player: int(player),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.cfg.Key)
	if err != nil {
		return "", fmt.Errorf("sign seat grant: %w", err)
	}
	return signed, nil
}

// Verify checks a grant and that it names gameID.
func (a *Authority) Verify(grant, gameID string) (Claims, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return Claims{}, apperrors.New(apperrors.CodeSeatGrantMissing, "seat grant is required")
	}

	var parsed grantClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(token *jwt.Token) (any, error) {
		return a.cfg.Key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != a.cfg.Issuer {
		return Claims{}, mismatch("issuer", "seat grant issuer mismatch")
	}
	if parsed.ID == "" {
		return Claims{}, apperrors.New(apperrors.CodeSeatGrantInvalid, "seat grant jti is required")
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.New(apperrors.CodeSeatGrantInvalid, "seat grant exp is required")
	}

	now := a.cfg.now()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Claims{}, apperrors.New(apperrors.CodeSeatGrantExpired, "seat grant is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return Claims{}, apperrors.New(apperrors.CodeSeatGrantInvalid, "seat grant not active yet")
	}

	if strings.TrimSpace(parsed.GameID) == "" || parsed.GameID != gameID {
		return Claims{}, mismatch("game_id", "seat grant game mismatch")
	}
	player := game.Player(parsed.Player)
	if !player.Valid() {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeSeatGrantInvalid,
			"seat grant player is invalid",
			map[string]string{apperrors.MetadataField: "player"},
		)
	}

	claims := Claims{
		Issuer:    parsed.Issuer,
		JWTID:     parsed.ID,
		ExpiresAt: exp,
		GameID:    parsed.GameID,
		Player:    player,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

func mismatch(field, message string) error {
	return apperrors.WithMetadata(
		apperrors.CodeSeatGrantMismatch,
		message,
		map[string]string{apperrors.MetadataField: field},
	)
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrSignatureInvalid) {
		return apperrors.New(apperrors.CodeSeatGrantInvalid, "seat grant signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeSeatGrantInvalid, "seat grant alg is invalid")
	}
	return apperrors.New(apperrors.CodeSeatGrantInvalid, "seat grant is invalid")
}
