package ai

import (
	"math"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
)

const (
	// unreachablePenalty stands in for the path length of a cut-off stone.
	unreachablePenalty = 12
	winScore           = 1_000_000
	minScore           = math.MinInt / 2

	progressWeight = 10
	replyWeight    = 8
	threatWeight   = 25
	centerWeight   = 15
)

// Evaluate scores a position from p's point of view. Higher is better.
//
// It rewards own progress toward Center, penalizes the opponent's best
// single-move reply and every opponent stone one step from Center.
func Evaluate(g *game.Game, p game.Player) int {
	if g.Won() {
		if g.Winner() == p {
			return winScore
		}
		return -winScore
	}
	opp := p.Opponent()
	dist := g.Board().DistanceMap()

	own := remaining(g, p, dist)
	theirs := remaining(g, opp, dist) - bestReplyGain(g, opp, dist)

	score := progressWeight*(theirs-own) + centerWeight*g.Score(p)
	score -= replyWeight * g.Score(opp)
	score -= threatWeight * threats(g, opp, dist)
	return score
}

// raceMargin is the opponent's remaining path minus p's.
func raceMargin(g *game.Game, p game.Player) int {
	dist := g.Board().DistanceMap()
	return remaining(g, p.Opponent(), dist) - remaining(g, p, dist)
}

// remaining sums the steps p's stones still need to reach Center.
func remaining(g *game.Game, p game.Player, dist map[board.Ref]int) int {
	total := 0
	entry := trayDistance(g, p, dist)
	for _, s := range g.Stones() {
		if s.Owner != p {
			continue
		}
		switch s.Status {
		case game.StatusTray:
			total += entry
		case game.StatusBoard:
			total += stepsOrPenalty(dist, s.At)
		}
	}
	return total
}

// trayDistance is the path length of a tray stone through its best entry.
func trayDistance(g *game.Game, p game.Player, dist map[board.Ref]int) int {
	best := unreachablePenalty
	for _, entry := range g.EntryCells(p) {
		if d, ok := dist[entry]; ok && d+1 < best {
			best = d + 1
		}
	}
	return best
}

// bestReplyGain is the largest path reduction p can get from one move.
func bestReplyGain(g *game.Game, p game.Player, dist map[board.Ref]int) int {
	entry := trayDistance(g, p, dist)
	best := 0
	for _, m := range g.LegalMoves(p) {
		before := entry
		if !m.FromTray() {
			before = stepsOrPenalty(dist, m.From)
		}
		if gain := before - stepsOrPenalty(dist, m.To); gain > best {
			best = gain
		}
	}
	return best
}

// threats counts p's stones that can reach Center next move.
func threats(g *game.Game, p game.Player, dist map[board.Ref]int) int {
	count := 0
	for _, s := range g.Stones() {
		if s.Owner == p && s.Status == game.StatusBoard && dist[s.At] == 1 {
			count++
		}
	}
	return count
}

func stepsOrPenalty(dist map[board.Ref]int, ref board.Ref) int {
	if d, ok := dist[ref]; ok {
		return d
	}
	return unreachablePenalty
}
