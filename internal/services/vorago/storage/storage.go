// Package storage defines persistence contracts for Vorago matches.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
)

var (
	// ErrNotFound indicates a requested game record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a game id is already taken.
	ErrAlreadyExists = errors.New("record already exists")
)

// Game statuses derived from the snapshot.
const (
	StatusActive = "active"
	StatusWon    = "won"
)

// GameRecord is one persisted match. The summary columns mirror the
// snapshot so listings can filter without decoding it.
type GameRecord struct {
	ID       string
	Snapshot game.Snapshot
	// Seed feeds the AI random source when the match is resumed.
	Seed      uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status reports whether the match is still being played.
func (r GameRecord) Status() string {
	if r.Snapshot.Won {
		return StatusWon
	}
	return StatusActive
}

// GamePage stores one page of game records.
type GamePage struct {
	Games         []GameRecord
	NextPageToken string
}

// ListQuery selects a page of games. Filter is an AIP-160 expression over
// status, ai_difficulty, winner, round and updated_at.
type ListQuery struct {
	Filter    string
	PageSize  int
	PageToken string
}

// GameStore persists match snapshots.
type GameStore interface {
	CreateGame(ctx context.Context, record GameRecord) error
	GetGame(ctx context.Context, id string) (GameRecord, error)
	// SaveGame replaces the snapshot of an existing game.
	SaveGame(ctx context.Context, record GameRecord) error
	ListGames(ctx context.Context, query ListQuery) (GamePage, error)
}
