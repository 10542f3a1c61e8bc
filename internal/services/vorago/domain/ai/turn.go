package ai

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
)

// ErrNotActive indicates the AI was asked to act outside its turn.
var ErrNotActive = errors.New("ai player is not active")

// RejectionError wraps a rejection of a command issued by the AI.
type RejectionError struct {
	Command   string
	Rejection command.Rejection
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("ai %s rejected: %s", e.Command, e.Rejection.Error())
}

// Report describes what the AI did during one turn.
type Report struct {
	Player  game.Player
	Move    *game.Move
	Ability *game.AbilityUse
	Passed  bool
	Effects []command.Effect
}

// ExecuteTurn plays p's turn: one move, then one ability use, passing when a
// missing action has no legal option. In manual turn-end mode the turn is left
// complete for the caller to end.
func ExecuteTurn(g *game.Game, p game.Player, s Strategy, rng *rand.Rand) (Report, error) {
	report := Report{Player: p}
	if g.Won() || g.Active() != p {
		return report, ErrNotActive
	}

	issue := func(name string, d command.Decision) error {
		if first, rejected := d.First(); rejected {
			return &RejectionError{Command: name, Rejection: first}
		}
		report.Effects = append(report.Effects, d.Effects...)
		return nil
	}
	stillActing := func() bool {
		return !g.Won() && g.Active() == p
	}

	tryMove := func() error {
		moves := g.LegalMoves(p)
		if g.HasMovedStone() || len(moves) == 0 {
			return nil
		}
		m := s.ChooseMove(g, p, moves, rng)
		var selected command.Decision
		if m.FromTray() {
			selected = g.SelectUnplacedStone(p, m.TrayIndex)
		} else {
			selected = g.SelectStone(p, m.From)
		}
		if err := issue("select_stone", selected); err != nil {
			return err
		}
		if err := issue("move_stone", g.MoveStone(p, m.To)); err != nil {
			return err
		}
		report.Move = &m
		return nil
	}

	if err := tryMove(); err != nil {
		return report, err
	}
	if !stillActing() {
		return report, nil
	}

	if uses := g.LegalAbilityUses(p); !g.HasUsedCoin() && len(uses) > 0 {
		use := s.ChooseAbility(g, p, uses, rng)
		if err := issue("select_ability", g.SelectAbility(p, use.Coin)); err != nil {
			return report, err
		}
		if err := issue("apply_ability", g.ApplyAbility(p, use.Target)); err != nil {
			return report, err
		}
		report.Ability = &use
	}
	if !stillActing() {
		return report, nil
	}

	// The ability may have opened a path that was blocked before.
	if err := tryMove(); err != nil {
		return report, err
	}
	if !stillActing() || g.TurnComplete() {
		return report, nil
	}

	if err := issue("pass", g.Pass(p)); err != nil {
		return report, err
	}
	report.Passed = true
	return report, nil
}
