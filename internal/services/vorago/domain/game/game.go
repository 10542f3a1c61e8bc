package game

import (
	"fmt"
	"sort"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/coin"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
)

// Options configure a game.
type Options struct {
	// Catalog defaults to coin.DefaultCatalog.
	Catalog *coin.Catalog
	// RingSizes defaults to board.DefaultRingSizes.
	RingSizes []int
	// ManualTurnEnd requires an explicit EndTurn once both actions are done.
	ManualTurnEnd bool
}

func (o Options) normalized() Options {
	if o.Catalog == nil {
		o.Catalog = coin.DefaultCatalog()
	}
	if len(o.RingSizes) == 0 {
		o.RingSizes = append([]int(nil), board.DefaultRingSizes...)
	}
	return o
}

// Game is the Vorago aggregate.
type Game struct {
	opts    Options
	catalog *coin.Catalog

	board  *board.Board
	stones []Stone
	names  [3]string
	ai     AIConfig

	round       int
	active      Player
	hasMoved    bool
	hasUsedCoin bool
	selection   Selection
	// disabled maps a coin to the round in which it becomes available again.
	disabled [3]map[coin.ID]int
	score    [3]int
	won      bool
	winner   Player
}

// New creates a fresh game.
func New(opts Options) (*Game, error) {
	opts = opts.normalized()
	if _, err := board.New(opts.RingSizes); err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	if opts.RingSizes[0]%8 != 0 {
		return nil, fmt.Errorf("new game: outer ring size %d must be a multiple of 8", opts.RingSizes[0])
	}
	g := &Game{
		opts:    opts,
		catalog: opts.Catalog,
		names:   [3]string{"", "Player 1", "Player 2"},
		ai:      AIConfig{Difficulty: Easy, Seat: Player2},
	}
	g.reset()
	return g, nil
}

func (g *Game) reset() {
	b, err := board.New(g.opts.RingSizes)
	if err != nil {
		panic(&board.ConfigurationError{Reason: err.Error()})
	}
	g.board = b
	g.stones = make([]Stone, 2*StonesPerPlayer)
	for i := range g.stones {
		id := i + 1
		g.stones[i] = Stone{ID: id, Owner: ownerOfStone(id), Status: StatusTray}
	}
	g.round = 1
	g.active = Player1
	g.hasMoved = false
	g.hasUsedCoin = false
	g.selection = Selection{}
	g.disabled = [3]map[coin.ID]int{nil, {}, {}}
	g.score = [3]int{}
	g.won = false
	g.winner = NoPlayer
}

// Clone returns an independent deep copy, used for look-ahead.
func (g *Game) Clone() *Game {
	out := *g
	out.board = g.board.Clone()
	out.stones = append([]Stone(nil), g.stones...)
	out.disabled = [3]map[coin.ID]int{nil, copyCooldowns(g.disabled[Player1]), copyCooldowns(g.disabled[Player2])}
	return &out
}

func copyCooldowns(in map[coin.ID]int) map[coin.ID]int {
	out := make(map[coin.ID]int, len(in))
	for id, round := range in {
		out[id] = round
	}
	return out
}

// Options returns the normalized options.
func (g *Game) Options() Options { return g.opts }

// Catalog returns the coin catalog in use.
func (g *Game) Catalog() *coin.Catalog { return g.catalog }

// Board returns a copy of the board.
func (g *Game) Board() *board.Board { return g.board.Clone() }

// Round returns the current round, starting at 1.
func (g *Game) Round() int { return g.round }

// Active returns the player whose turn it is.
func (g *Game) Active() Player { return g.active }

// HasMovedStone reports whether the active player moved this turn.
func (g *Game) HasMovedStone() bool { return g.hasMoved }

// HasUsedCoin reports whether the active player applied a coin this turn.
func (g *Game) HasUsedCoin() bool { return g.hasUsedCoin }

// Selection returns the pending selection.
func (g *Game) Selection() Selection { return g.selection }

// Won reports whether the game reached its terminal state.
func (g *Game) Won() bool { return g.won }

// Winner returns the winning player, or NoPlayer.
func (g *Game) Winner() Player { return g.winner }

// AI returns the automated opponent configuration.
func (g *Game) AI() AIConfig { return g.ai }

// IsAITurn reports whether the AI seat should act now.
func (g *Game) IsAITurn() bool {
	return g.ai.Enabled && !g.won && g.active == g.ai.Seat
}

// PlayerName returns the display name of a seat.
func (g *Game) PlayerName(p Player) string {
	if !p.Valid() {
		return ""
	}
	return g.names[p]
}

// Score returns the number of stones p has at Center.
func (g *Game) Score(p Player) int {
	if !p.Valid() {
		return 0
	}
	return g.score[p]
}

// Stones returns a copy of every stone ordered by id.
func (g *Game) Stones() []Stone {
	return append([]Stone(nil), g.stones...)
}

// Stone returns one stone by id.
func (g *Game) Stone(id int) (Stone, bool) {
	if id < 1 || id > len(g.stones) {
		return Stone{}, false
	}
	return g.stones[id-1], true
}

// Tray returns p's unplaced stones ordered by id.
func (g *Game) Tray(p Player) []Stone {
	var out []Stone
	for _, s := range g.stones {
		if s.Owner == p && s.Status == StatusTray {
			out = append(out, s)
		}
	}
	return out
}

// Disabled returns the coins p cannot select, mapped to the round in which
// each becomes available again.
func (g *Game) Disabled(p Player) map[coin.ID]int {
	if !p.Valid() {
		return nil
	}
	return copyCooldowns(g.disabled[p])
}

// EntryCells lists the ring 0 cells where p may place tray stones. Each
// player gets four cells a quarter turn apart, offset by an eighth turn from
// the opponent's.
func (g *Game) EntryCells(p Player) []board.Ref {
	size := g.board.Ring(0).Size
	step := size / 4
	start := 0
	if p == Player2 {
		start = step / 2
	}
	refs := make([]board.Ref, 0, 4)
	for i := 0; i < 4; i++ {
		refs = append(refs, board.Ref{Ring: 0, Cell: start + i*step})
	}
	return refs
}

func (g *Game) isEntryCell(p Player, ref board.Ref) bool {
	for _, entry := range g.EntryCells(p) {
		if entry == ref {
			return true
		}
	}
	return false
}

func (g *Game) stone(id int) *Stone {
	return &g.stones[id-1]
}

func sortedCoinIDs(in map[coin.ID]int) []coin.ID {
	ids := make([]coin.ID, 0, len(in))
	for id := range in {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func invalid(code, format string, args ...any) command.Decision {
	return command.Reject(command.Invalid(code, fmt.Sprintf(format, args...)))
}

func violation(code, format string, args ...any) command.Decision {
	return command.Reject(command.Violation(code, fmt.Sprintf(format, args...)))
}

func refPtr(ref board.Ref) *board.Ref {
	return &ref
}
