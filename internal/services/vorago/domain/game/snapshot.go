package game

import (
	"errors"
	"fmt"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/coin"
)

// ErrInvalidSnapshot indicates a snapshot that breaks a game invariant.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// CellState is one ring cell in a snapshot.
type CellState struct {
	Ref board.Ref `json:"ref"`
	board.Cell
}

// PlayerState is the per-seat part of a snapshot.
type PlayerState struct {
	Player Player `json:"player"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	// Tray lists the ids of unplaced stones.
	Tray     []int           `json:"tray"`
	Disabled map[coin.ID]int `json:"disabled"`
}

// Snapshot is the serializable view of a game used for rendering and
// persistence.
type Snapshot struct {
	Rings         []board.Ring  `json:"rings"`
	Cells         []CellState   `json:"cells"`
	Stones        []Stone       `json:"stones"`
	Players       []PlayerState `json:"players"`
	Round         int           `json:"round"`
	Active        Player        `json:"active"`
	HasMovedStone bool          `json:"has_moved_stone"`
	HasUsedCoin   bool          `json:"has_used_coin"`
	Selection     Selection     `json:"selection"`
	AI            AIConfig      `json:"ai"`
	Won           bool          `json:"won"`
	Winner        Player        `json:"winner"`
	ManualTurnEnd bool          `json:"manual_turn_end"`
}

// Snapshot captures the full game state.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Rings:         g.board.Rings(),
		Stones:        g.Stones(),
		Round:         g.round,
		Active:        g.active,
		HasMovedStone: g.hasMoved,
		HasUsedCoin:   g.hasUsedCoin,
		Selection:     g.selection,
		AI:            g.ai,
		Won:           g.won,
		Winner:        g.winner,
		ManualTurnEnd: g.opts.ManualTurnEnd,
	}
	for _, ref := range g.board.Refs() {
		snap.Cells = append(snap.Cells, CellState{Ref: ref, Cell: g.board.Cell(ref)})
	}
	for _, p := range []Player{Player1, Player2} {
		state := PlayerState{
			Player:   p,
			Name:     g.names[p],
			Score:    g.score[p],
			Tray:     []int{},
			Disabled: g.Disabled(p),
		}
		for _, s := range g.Tray(p) {
			state.Tray = append(state.Tray, s.ID)
		}
		snap.Players = append(snap.Players, state)
	}
	return snap
}

// Restore rebuilds a game from a snapshot. Ring sizes come from the snapshot;
// opts supplies the catalog. Every invariant is re-checked.
func Restore(snap Snapshot, opts Options) (*Game, error) {
	sizes := make([]int, len(snap.Rings))
	for i, ring := range snap.Rings {
		sizes[i] = ring.Size
	}
	opts.RingSizes = sizes
	opts.ManualTurnEnd = snap.ManualTurnEnd
	g, err := New(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	for i, ring := range snap.Rings {
		if ring.Offset < 0 || ring.Offset >= ring.Size {
			return nil, fmt.Errorf("%w: ring %d offset %d out of range", ErrInvalidSnapshot, i, ring.Offset)
		}
		g.board.SetOffset(i, ring.Offset)
		g.board.SetLocked(i, ring.Locked)
	}
	if len(snap.Cells) != g.board.CellCount() {
		return nil, fmt.Errorf("%w: %d cells, want %d", ErrInvalidSnapshot, len(snap.Cells), g.board.CellCount())
	}
	seen := make(map[board.Ref]bool, len(snap.Cells))
	for _, cell := range snap.Cells {
		if !g.board.ValidCell(cell.Ref) || seen[cell.Ref] {
			return nil, fmt.Errorf("%w: cell %s invalid or repeated", ErrInvalidSnapshot, cell.Ref)
		}
		seen[cell.Ref] = true
		g.board.SetWall(cell.Ref, cell.Wall)
		g.board.SetBridge(cell.Ref, cell.Bridge)
		g.board.SetOccupant(cell.Ref, cell.Occupant)
	}

	if len(snap.Stones) != len(g.stones) {
		return nil, fmt.Errorf("%w: %d stones, want %d", ErrInvalidSnapshot, len(snap.Stones), len(g.stones))
	}
	seenStones := make(map[int]bool, len(snap.Stones))
	for _, s := range snap.Stones {
		if s.ID < 1 || s.ID > len(g.stones) || seenStones[s.ID] {
			return nil, fmt.Errorf("%w: stone id %d out of range or repeated", ErrInvalidSnapshot, s.ID)
		}
		seenStones[s.ID] = true
		g.stones[s.ID-1] = s
	}

	if len(snap.Players) != 2 {
		return nil, fmt.Errorf("%w: %d players, want 2", ErrInvalidSnapshot, len(snap.Players))
	}
	for _, state := range snap.Players {
		if !state.Player.Valid() {
			return nil, fmt.Errorf("%w: unknown %s", ErrInvalidSnapshot, state.Player)
		}
		g.names[state.Player] = state.Name
		g.score[state.Player] = state.Score
		g.disabled[state.Player] = copyCooldowns(state.Disabled)
		if err := g.checkTray(state); err != nil {
			return nil, err
		}
	}

	g.round = snap.Round
	g.active = snap.Active
	g.hasMoved = snap.HasMovedStone
	g.hasUsedCoin = snap.HasUsedCoin
	g.selection = snap.Selection
	g.ai = snap.AI
	g.won = snap.Won
	g.winner = snap.Winner

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) checkTray(state PlayerState) error {
	want := g.Tray(state.Player)
	if len(want) != len(state.Tray) {
		return fmt.Errorf("%w: %s tray lists %d stones, stones say %d", ErrInvalidSnapshot, state.Player, len(state.Tray), len(want))
	}
	for i, s := range want {
		if state.Tray[i] != s.ID {
			return fmt.Errorf("%w: %s tray order mismatch", ErrInvalidSnapshot, state.Player)
		}
	}
	return nil
}

// Validate checks every aggregate invariant. Commands keep these true; the
// check exists for restored snapshots and tests.
func (g *Game) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
	}

	if g.round < 1 {
		return fail("round %d must be positive", g.round)
	}
	if !g.active.Valid() {
		return fail("active %s is not a seat", g.active)
	}

	centered := [3]int{}
	for i, s := range g.stones {
		if s.ID != i+1 || s.Owner != ownerOfStone(s.ID) {
			return fail("stone %d has id %d owner %s", i+1, s.ID, s.Owner)
		}
		switch s.Status {
		case StatusTray:
		case StatusCenter:
			centered[s.Owner]++
		case StatusBoard:
			if !g.board.ValidCell(s.At) {
				return fail("stone %d at invalid cell %s", s.ID, s.At)
			}
			if g.board.Cell(s.At).Occupant != s.ID {
				return fail("stone %d not recorded at %s", s.ID, s.At)
			}
		default:
			return fail("stone %d has status %q", s.ID, s.Status)
		}
	}

	for _, ref := range g.board.Refs() {
		cell := g.board.Cell(ref)
		if cell.Wall && cell.Bridge {
			return fail("%s has both wall and bridge", ref)
		}
		if cell.Bridge && ref.Ring > board.RingCount-2 {
			return fail("%s carries a bridge on the inner ring", ref)
		}
		if cell.Empty() {
			continue
		}
		if cell.Wall {
			return fail("%s is walled and occupied", ref)
		}
		s, ok := g.Stone(cell.Occupant)
		if !ok || s.Status != StatusBoard || s.At != ref {
			return fail("%s occupant %d does not match stones", ref, cell.Occupant)
		}
	}

	for _, p := range []Player{Player1, Player2} {
		if g.score[p] != centered[p] {
			return fail("%s score %d, %d stones at center", p, g.score[p], centered[p])
		}
		for id := range g.disabled[p] {
			if _, ok := g.catalog.Lookup(id); !ok {
				return fail("%s has unknown disabled coin %q", p, id)
			}
		}
	}

	switch {
	case g.won && (!g.winner.Valid() || g.score[g.winner] != StonesPerPlayer):
		return fail("winner %s does not have every stone at center", g.winner)
	case !g.won && g.winner != NoPlayer:
		return fail("winner %s set before the game ended", g.winner)
	case !g.won && (g.score[Player1] == StonesPerPlayer || g.score[Player2] == StonesPerPlayer):
		return fail("a player has every stone at center but the game is not won")
	}

	if g.selection.Stone != 0 {
		s, ok := g.Stone(g.selection.Stone)
		if !ok || s.Owner != g.active || s.Status == StatusCenter {
			return fail("selected stone %d is not selectable by %s", g.selection.Stone, g.active)
		}
	}
	if g.selection.Ability != "" {
		if _, ok := g.catalog.Lookup(g.selection.Ability); !ok {
			return fail("selected ability %q unknown", g.selection.Ability)
		}
	}
	if _, ok := ParseDifficulty(string(g.ai.Difficulty)); !ok {
		return fail("ai difficulty %q unknown", g.ai.Difficulty)
	}
	if !g.ai.Seat.Valid() {
		return fail("ai seat %s is not a seat", g.ai.Seat)
	}
	return nil
}
