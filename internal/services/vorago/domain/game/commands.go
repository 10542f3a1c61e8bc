package game

import (
	"strings"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/coin"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
)

// NewGame resets the board, stones, turn and cooldown state. Player names and
// the AI configuration are kept.
func (g *Game) NewGame() command.Decision {
	g.reset()
	return command.Accept(command.Effect{Type: command.EffectGameStarted, Player: int(g.active), Round: g.round})
}

// SetPlayerNames renames both seats. Allowed in any state.
func (g *Game) SetPlayerNames(player1, player2 string) command.Decision {
	player1 = strings.TrimSpace(player1)
	player2 = strings.TrimSpace(player2)
	if player1 == "" || player2 == "" {
		return invalid(RejectionPlayerNameRequired, "both player names are required")
	}
	g.names[Player1] = player1
	g.names[Player2] = player2
	return command.Accept(command.Effect{Type: command.EffectPlayersNamed})
}

// SetAIMode enables or disables the AI seat. Allowed in any state.
func (g *Game) SetAIMode(enabled bool, difficulty Difficulty) command.Decision {
	parsed, ok := ParseDifficulty(string(difficulty))
	if !ok {
		return invalid(RejectionDifficultyUnknown, "unknown difficulty %q", difficulty)
	}
	g.ai.Enabled = enabled
	g.ai.Difficulty = parsed
	if !g.ai.Seat.Valid() {
		g.ai.Seat = Player2
	}
	return command.Accept(command.Effect{Type: command.EffectAIModeSet, Player: int(g.ai.Seat)})
}

// guard runs the checks shared by every turn command.
func (g *Game) guard(p Player) (command.Decision, bool) {
	if g.won {
		return invalid(RejectionGameOver, "%s already won", g.winner), false
	}
	if !p.Valid() {
		return invalid(RejectionPlayerUnknown, "unknown %s", p), false
	}
	if p != g.active {
		return invalid(RejectionNotYourTurn, "it is %s's turn", g.active), false
	}
	return command.Decision{}, true
}

// SelectStone selects the stone standing on ref, replacing any prior choice.
func (g *Game) SelectStone(p Player, ref board.Ref) command.Decision {
	if d, ok := g.guard(p); !ok {
		return d
	}
	if ref.IsCenter() {
		return violation(RejectionStoneResolved, "stones at center cannot move")
	}
	cell := g.board.Cell(ref)
	if cell.Empty() {
		return violation(RejectionNoStoneAtCell, "no stone at %s", ref)
	}
	if ownerOfStone(cell.Occupant) != p {
		return violation(RejectionStoneNotOwned, "stone at %s belongs to %s", ref, ownerOfStone(cell.Occupant))
	}
	g.selection.Stone = cell.Occupant
	return command.Accept(command.Effect{Type: command.EffectStoneSelected, Player: int(p), Stone: cell.Occupant, From: refPtr(ref)})
}

// SelectUnplacedStone selects a tray stone by its position in the tray.
func (g *Game) SelectUnplacedStone(p Player, trayIndex int) command.Decision {
	if d, ok := g.guard(p); !ok {
		return d
	}
	tray := g.Tray(p)
	if trayIndex < 0 || trayIndex >= len(tray) {
		return invalid(RejectionTrayIndexOutOfRange, "tray index %d out of range (%d stones)", trayIndex, len(tray))
	}
	id := tray[trayIndex].ID
	g.selection.Stone = id
	return command.Accept(command.Effect{Type: command.EffectStoneSelected, Player: int(p), Stone: id})
}

// MoveStone moves the selected stone to to.
func (g *Game) MoveStone(p Player, to board.Ref) command.Decision {
	if d, ok := g.guard(p); !ok {
		return d
	}
	if g.selection.Stone == 0 {
		return invalid(RejectionStoneSelectionRequired, "select a stone first")
	}
	if g.hasMoved {
		return violation(RejectionStoneAlreadyMoved, "a stone was already moved this turn")
	}
	if !g.board.Valid(to) {
		panic(&board.ConfigurationError{Reason: "destination " + to.String() + " out of range"})
	}
	if !to.IsCenter() {
		cell := g.board.Cell(to)
		if !cell.Empty() {
			return violation(RejectionDestinationOccupied, "%s is occupied", to)
		}
		if cell.Wall {
			return violation(RejectionDestinationWalled, "%s is walled", to)
		}
	}

	s := g.stone(g.selection.Stone)
	switch s.Status {
	case StatusCenter:
		return violation(RejectionStoneResolved, "stone %d is already at center", s.ID)
	case StatusTray:
		if !g.isEntryCell(p, to) {
			return violation(RejectionEntryCellRequired, "%s is not an entry cell for %s", to, p)
		}
	case StatusBoard:
		if !g.board.Adjacent(s.At, to) {
			return violation(RejectionDestinationUnreachable, "%s is not one step from %s", to, s.At)
		}
	}

	moved := command.Effect{Type: command.EffectStoneMoved, Player: int(p), Stone: s.ID, To: refPtr(to)}
	if s.Status == StatusBoard {
		moved.From = refPtr(s.At)
		g.board.SetOccupant(s.At, 0)
	}
	effects := []command.Effect{moved}

	s.At = to
	if to.IsCenter() {
		s.Status = StatusCenter
		g.score[p]++
		effects = append(effects, command.Effect{Type: command.EffectStoneResolved, Player: int(p), Stone: s.ID})
	} else {
		s.Status = StatusBoard
		g.board.SetOccupant(to, s.ID)
	}
	g.hasMoved = true
	g.selection.Stone = 0

	if g.score[p] == StonesPerPlayer {
		g.won = true
		g.winner = p
		effects = append(effects, command.Effect{Type: command.EffectGameWon, Player: int(p), Round: g.round})
		return command.Accept(effects...)
	}
	return command.Accept(append(effects, g.autoEndTurn()...)...)
}

// SelectAbility selects a coin for the active player. Unknown ids panic with
// a coin.ConfigurationError.
func (g *Game) SelectAbility(p Player, id coin.ID) command.Decision {
	if d, ok := g.guard(p); !ok {
		return d
	}
	c := g.catalog.MustLookup(id)
	if g.hasUsedCoin {
		return violation(RejectionAbilityAlreadyUsed, "an ability was already used this turn")
	}
	if available, disabled := g.disabled[p][id]; disabled {
		return violation(RejectionAbilityOnCooldown, "%s is available again in round %d", id, available)
	}
	if !c.Applicable(g.board) {
		return violation(RejectionAbilityNotApplicable, "%s has no valid target", id)
	}
	g.selection.Ability = id
	return command.Accept(command.Effect{Type: command.EffectAbilitySelected, Player: int(p), Ability: string(id)})
}

// ApplyAbility applies the selected coin to target.
func (g *Game) ApplyAbility(p Player, target coin.Target) command.Decision {
	if d, ok := g.guard(p); !ok {
		return d
	}
	id := g.selection.Ability
	if id == "" {
		return invalid(RejectionAbilitySelectionRequired, "select an ability first")
	}
	if g.hasUsedCoin {
		return violation(RejectionAbilityAlreadyUsed, "an ability was already used this turn")
	}
	c := g.catalog.MustLookup(id)
	if available, disabled := g.disabled[p][id]; disabled {
		return violation(RejectionAbilityOnCooldown, "%s is available again in round %d", id, available)
	}
	next, rejection := c.Apply(g.board, target)
	if rejection != nil {
		return command.Reject(*rejection)
	}

	g.board = next
	g.hasUsedCoin = true
	available := g.round + c.Cooldown()
	g.disabled[p][id] = available
	g.selection.Ability = ""

	effect := command.Effect{Type: command.EffectAbilityApplied, Player: int(p), Ability: string(id), Round: available}
	if c.TargetKind() == coin.TargetCell {
		effect.To = refPtr(target.Cell)
	}
	return command.Accept(append([]command.Effect{effect}, g.autoEndTurn()...)...)
}

// RotateRing selects and applies rotate_ring in one step. On rejection the
// previous ability selection is kept.
func (g *Game) RotateRing(p Player, ring int, direction board.Direction) command.Decision {
	previous := g.selection.Ability
	selected := g.SelectAbility(p, coin.RotateRing)
	if !selected.Accepted() {
		return selected
	}
	applied := g.ApplyAbility(p, coin.Target{Ring: ring, Direction: direction})
	if !applied.Accepted() {
		g.selection.Ability = previous
		return applied
	}
	return selected.Merge(applied)
}
