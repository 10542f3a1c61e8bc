// Package match binds a Vorago game to its optional AI seat.
//
// After every accepted command the match checks whether control passed to
// the AI and, unless ManualAI is set, plays the AI turn right away. The order
// is always: validate, update flags, complete the turn, trigger the AI.
package match

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/louisbranch/vorago/internal/platform/random"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/ai"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/coin"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
)

const (
	RejectionAIDisabled = "AI_DISABLED"
	RejectionNotAITurn  = "NOT_AI_TURN"
)

// ErrAITurnFailed indicates the AI issued a command the game rejected.
var ErrAITurnFailed = errors.New("ai turn failed")

// Options configure a match.
type Options struct {
	Game game.Options
	// Seed feeds the AI random source. Matches with equal seeds and commands
	// play identically.
	Seed uint64
	// ManualAI disables the automatic AI trigger; callers use ExecuteAITurn.
	ManualAI bool
	// Logger receives AI turn summaries when set.
	Logger *log.Logger
}

// Match is a game plus its AI driver. It is not safe for concurrent use.
type Match struct {
	game *game.Game
	rng  *rand.Rand
	opts Options
}

// New creates a match with a fresh game.
func New(opts Options) (*Match, error) {
	g, err := game.New(opts.Game)
	if err != nil {
		return nil, err
	}
	return newMatch(g, opts), nil
}

// Restore rebuilds a match from a snapshot.
func Restore(snap game.Snapshot, opts Options) (*Match, error) {
	g, err := game.Restore(snap, opts.Game)
	if err != nil {
		return nil, err
	}
	return newMatch(g, opts), nil
}

func newMatch(g *game.Game, opts Options) *Match {
	return &Match{
		game: g,
		rng:  random.NewRand(opts.Seed),
		opts: opts,
	}
}

// Game returns a copy of the current game for reading.
func (m *Match) Game() *game.Game {
	return m.game.Clone()
}

// Snapshot captures the current game state.
func (m *Match) Snapshot() game.Snapshot {
	return m.game.Snapshot()
}

// NewGame resets the game. If the AI holds the first seat it plays at once.
func (m *Match) NewGame() (command.Decision, error) {
	return m.after(m.game.NewGame())
}

func (m *Match) SetPlayerNames(player1, player2 string) (command.Decision, error) {
	return m.game.SetPlayerNames(player1, player2), nil
}

// SetAIMode updates the AI seat and plays its turn when it is already active.
func (m *Match) SetAIMode(enabled bool, difficulty game.Difficulty) (command.Decision, error) {
	return m.after(m.game.SetAIMode(enabled, difficulty))
}

func (m *Match) SelectStone(p game.Player, ref board.Ref) (command.Decision, error) {
	return m.after(m.game.SelectStone(p, ref))
}

func (m *Match) SelectUnplacedStone(p game.Player, trayIndex int) (command.Decision, error) {
	return m.after(m.game.SelectUnplacedStone(p, trayIndex))
}

func (m *Match) MoveStone(p game.Player, to board.Ref) (command.Decision, error) {
	return m.after(m.game.MoveStone(p, to))
}

func (m *Match) SelectAbility(p game.Player, id coin.ID) (command.Decision, error) {
	return m.after(m.game.SelectAbility(p, id))
}

func (m *Match) ApplyAbility(p game.Player, target coin.Target) (command.Decision, error) {
	return m.after(m.game.ApplyAbility(p, target))
}

func (m *Match) RotateRing(p game.Player, ring int, direction board.Direction) (command.Decision, error) {
	return m.after(m.game.RotateRing(p, ring, direction))
}

func (m *Match) EndTurn() (command.Decision, error) {
	return m.after(m.game.EndTurn())
}

func (m *Match) Pass(p game.Player) (command.Decision, error) {
	return m.after(m.game.Pass(p))
}

// ExecuteAITurn plays the AI seat's turn now.
func (m *Match) ExecuteAITurn() (command.Decision, error) {
	if m.game.Won() {
		return command.Reject(command.Invalid(game.RejectionGameOver, "the game is over")), nil
	}
	cfg := m.game.AI()
	if !cfg.Enabled {
		return command.Reject(command.Invalid(RejectionAIDisabled, "the AI is disabled")), nil
	}
	if m.game.Active() != cfg.Seat {
		return command.Reject(command.Invalid(RejectionNotAITurn, fmt.Sprintf("it is %s's turn", m.game.Active()))), nil
	}
	return m.playAI()
}

func (m *Match) after(d command.Decision) (command.Decision, error) {
	if !d.Accepted() || m.opts.ManualAI || !m.game.IsAITurn() {
		return d, nil
	}
	// In manual turn-end mode a completed AI turn waits for EndTurn.
	if m.game.TurnComplete() {
		return d, nil
	}
	aiTurn, err := m.playAI()
	if err != nil {
		return d, err
	}
	return d.Merge(aiTurn), nil
}

func (m *Match) playAI() (command.Decision, error) {
	cfg := m.game.AI()
	strategy, err := ai.ForDifficulty(cfg.Difficulty)
	if err != nil {
		return command.Decision{}, fmt.Errorf("%w: %v", ErrAITurnFailed, err)
	}
	report, err := ai.ExecuteTurn(m.game, cfg.Seat, strategy, m.rng)
	if err != nil {
		return command.Decision{}, fmt.Errorf("%w: %v", ErrAITurnFailed, err)
	}
	if m.opts.Logger != nil {
		m.opts.Logger.Printf("ai %s (%s) round %d: move=%s ability=%s passed=%v",
			cfg.Seat, cfg.Difficulty, m.game.Round(), describeMove(report.Move), describeAbility(report.Ability), report.Passed)
	}
	return command.Accept(report.Effects...), nil
}

func describeMove(mv *game.Move) string {
	switch {
	case mv == nil:
		return "none"
	case mv.FromTray():
		return "tray->" + mv.To.String()
	default:
		return mv.From.String() + "->" + mv.To.String()
	}
}

func describeAbility(use *game.AbilityUse) string {
	if use == nil {
		return "none"
	}
	return string(use.Coin)
}
