package ai

import (
	"fmt"
	"math/rand/v2"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
)

// Strategy picks one legal action among candidates. Candidates are never
// empty when a Strategy is called.
type Strategy interface {
	Difficulty() game.Difficulty
	ChooseMove(g *game.Game, p game.Player, moves []game.Move, rng *rand.Rand) game.Move
	ChooseAbility(g *game.Game, p game.Player, uses []game.AbilityUse, rng *rand.Rand) game.AbilityUse
}

// ForDifficulty returns the strategy of a tier.
func ForDifficulty(d game.Difficulty) (Strategy, error) {
	switch d {
	case game.Easy:
		return Easy{}, nil
	case game.Medium:
		return Medium{}, nil
	case game.Hard:
		return Hard{}, nil
	default:
		return nil, fmt.Errorf("unknown difficulty %q", d)
	}
}

// Easy picks uniformly at random.
type Easy struct{}

func (Easy) Difficulty() game.Difficulty { return game.Easy }

func (Easy) ChooseMove(_ *game.Game, _ game.Player, moves []game.Move, rng *rand.Rand) game.Move {
	return moves[rng.IntN(len(moves))]
}

func (Easy) ChooseAbility(_ *game.Game, _ game.Player, uses []game.AbilityUse, rng *rand.Rand) game.AbilityUse {
	return uses[rng.IntN(len(uses))]
}

// Medium is one-ply greedy on distance to Center.
type Medium struct{}

func (Medium) Difficulty() game.Difficulty { return game.Medium }

// ChooseMove prefers the move that shortens the moved stone's path the most.
func (Medium) ChooseMove(g *game.Game, p game.Player, moves []game.Move, rng *rand.Rand) game.Move {
	dist := g.Board().DistanceMap()
	entry := trayDistance(g, p, dist)
	return pickBest(moves, rng, func(m game.Move) int {
		before := entry
		if !m.FromTray() {
			before = stepsOrPenalty(dist, m.From)
		}
		return before - stepsOrPenalty(dist, m.To)
	})
}

// ChooseAbility uses a coin when it improves the race: the opponent's path
// grows or ours shrinks. Otherwise any legal use is taken.
func (Medium) ChooseAbility(g *game.Game, p game.Player, uses []game.AbilityUse, rng *rand.Rand) game.AbilityUse {
	base := raceMargin(g, p)
	best := make([]game.AbilityUse, 0, len(uses))
	bestGain := 0
	for _, use := range uses {
		next, ok := simulateAbility(g, p, use)
		if !ok {
			continue
		}
		gain := raceMargin(next, p) - base
		switch {
		case gain > bestGain:
			bestGain = gain
			best = append(best[:0], use)
		case gain == bestGain && gain > 0:
			best = append(best, use)
		}
	}
	if len(best) == 0 {
		return uses[rng.IntN(len(uses))]
	}
	return best[rng.IntN(len(best))]
}

// Hard scores every candidate on a simulated copy of the game and picks among
// the top scores.
type Hard struct{}

func (Hard) Difficulty() game.Difficulty { return game.Hard }

func (Hard) ChooseMove(g *game.Game, p game.Player, moves []game.Move, rng *rand.Rand) game.Move {
	return pickBest(moves, rng, func(m game.Move) int {
		next, ok := simulateMove(g, p, m)
		if !ok {
			return minScore
		}
		return Evaluate(next, p)
	})
}

func (Hard) ChooseAbility(g *game.Game, p game.Player, uses []game.AbilityUse, rng *rand.Rand) game.AbilityUse {
	return pickBest(uses, rng, func(use game.AbilityUse) int {
		next, ok := simulateAbility(g, p, use)
		if !ok {
			return minScore
		}
		return Evaluate(next, p)
	})
}

// pickBest returns a top-scoring candidate, breaking ties at random.
func pickBest[T any](candidates []T, rng *rand.Rand, score func(T) int) T {
	var top []T
	best := 0
	for i, c := range candidates {
		s := score(c)
		switch {
		case i == 0 || s > best:
			best = s
			top = append(top[:0], c)
		case s == best:
			top = append(top, c)
		}
	}
	return top[rng.IntN(len(top))]
}

func simulateMove(g *game.Game, p game.Player, m game.Move) (*game.Game, bool) {
	next := g.Clone()
	var selected command.Decision
	if m.FromTray() {
		selected = next.SelectUnplacedStone(p, m.TrayIndex)
	} else {
		selected = next.SelectStone(p, m.From)
	}
	if !selected.Accepted() {
		return nil, false
	}
	return next, next.MoveStone(p, m.To).Accepted()
}

func simulateAbility(g *game.Game, p game.Player, use game.AbilityUse) (*game.Game, bool) {
	next := g.Clone()
	if !next.SelectAbility(p, use.Coin).Accepted() {
		return nil, false
	}
	return next, next.ApplyAbility(p, use.Target).Accepted()
}
