package game

import (
	"fmt"
	"strings"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/coin"
)

// StonesPerPlayer is the fixed number of stones each player owns.
const StonesPerPlayer = 3

// Player identifies a seat.
type Player int

const (
	NoPlayer Player = 0
	Player1  Player = 1
	Player2  Player = 2
)

// Valid reports whether p is one of the two seats.
func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

// Opponent returns the other seat.
func (p Player) Opponent() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

func (p Player) String() string {
	switch p {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return fmt.Sprintf("player(%d)", int(p))
	}
}

// Difficulty selects the AI policy.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists the supported tiers.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty normalizes a difficulty name.
func ParseDifficulty(value string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(value)))
	switch d {
	case Easy, Medium, Hard:
		return d, true
	default:
		return "", false
	}
}

// StoneStatus tracks where a stone is.
type StoneStatus string

const (
	StatusTray   StoneStatus = "tray"
	StatusBoard  StoneStatus = "board"
	StatusCenter StoneStatus = "center"
)

// Stone is a player token. Ids 1-3 belong to player 1 and 4-6 to player 2.
type Stone struct {
	ID     int         `json:"id"`
	Owner  Player      `json:"owner"`
	Status StoneStatus `json:"status"`
	// At is meaningful only when Status is StatusBoard or StatusCenter.
	At board.Ref `json:"at"`
}

// ownerOfStone returns the seat owning a stone id.
func ownerOfStone(id int) Player {
	switch {
	case id >= 1 && id <= StonesPerPlayer:
		return Player1
	case id > StonesPerPlayer && id <= 2*StonesPerPlayer:
		return Player2
	default:
		return NoPlayer
	}
}

// AIConfig controls the automated opponent.
type AIConfig struct {
	Enabled    bool       `json:"enabled"`
	Difficulty Difficulty `json:"difficulty"`
	Seat       Player     `json:"seat"`
}

// Selection is the pending stone and ability choice of the active player.
type Selection struct {
	Stone   int     `json:"stone,omitempty"`
	Ability coin.ID `json:"ability,omitempty"`
}

// Move is one legal stone relocation.
type Move struct {
	Stone int `json:"stone"`
	// TrayIndex is the tray position to select, or -1 for a stone on the board.
	TrayIndex int       `json:"tray_index"`
	From      board.Ref `json:"from"`
	To        board.Ref `json:"to"`
}

// FromTray reports whether the move places a stone from the tray.
func (m Move) FromTray() bool {
	return m.TrayIndex >= 0
}

// AbilityUse is one legal coin application.
type AbilityUse struct {
	Coin   coin.ID     `json:"coin"`
	Target coin.Target `json:"target"`
}
