package game

import (
	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
)

// TurnComplete reports whether the active player finished both actions.
func (g *Game) TurnComplete() bool {
	return g.hasMoved && g.hasUsedCoin
}

// EndTurn hands control to the other player once both actions are done.
func (g *Game) EndTurn() command.Decision {
	if g.won {
		return invalid(RejectionGameOver, "%s already won", g.winner)
	}
	if !g.TurnComplete() {
		return violation(RejectionTurnIncomplete, "%s must move a stone and use an ability", g.active)
	}
	return command.Accept(g.endTurn()...)
}

// Pass ends the turn when every missing action has no legal option.
func (g *Game) Pass(p Player) command.Decision {
	if d, ok := g.guard(p); !ok {
		return d
	}
	if !g.hasMoved && len(g.LegalMoves(p)) > 0 {
		return violation(RejectionPassNotAllowed, "%s still has a legal move", p)
	}
	if !g.hasUsedCoin && len(g.LegalAbilityUses(p)) > 0 {
		return violation(RejectionPassNotAllowed, "%s still has a legal ability", p)
	}
	passed := command.Effect{Type: command.EffectTurnPassed, Player: int(p), Round: g.round}
	return command.Accept(append([]command.Effect{passed}, g.endTurn()...)...)
}

func (g *Game) autoEndTurn() []command.Effect {
	if g.opts.ManualTurnEnd || !g.TurnComplete() {
		return nil
	}
	return g.endTurn()
}

func (g *Game) endTurn() []command.Effect {
	effects := []command.Effect{{Type: command.EffectTurnEnded, Player: int(g.active), Round: g.round}}
	g.active = g.active.Opponent()
	if g.active == Player1 {
		g.round++
		effects = append(effects, command.Effect{Type: command.EffectRoundStarted, Round: g.round})
	}
	g.hasMoved = false
	g.hasUsedCoin = false
	g.selection = Selection{}
	return append(effects, g.decayCooldowns(g.active)...)
}

// decayCooldowns restores coins whose cooldown elapsed for p.
func (g *Game) decayCooldowns(p Player) []command.Effect {
	var effects []command.Effect
	for _, id := range sortedCoinIDs(g.disabled[p]) {
		if g.disabled[p][id] <= g.round {
			delete(g.disabled[p], id)
			effects = append(effects, command.Effect{Type: command.EffectAbilityRestored, Player: int(p), Ability: string(id), Round: g.round})
		}
	}
	return effects
}
