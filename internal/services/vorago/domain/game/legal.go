package game

import (
	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/coin"
)

// LegalMoves lists every stone relocation available to p on the current
// board, ignoring whose turn it is and whether p already moved. Tray stones
// are interchangeable, so only tray index 0 is listed.
func (g *Game) LegalMoves(p Player) []Move {
	if g.won || !p.Valid() {
		return nil
	}
	var moves []Move
	if tray := g.Tray(p); len(tray) > 0 {
		for _, entry := range g.EntryCells(p) {
			if g.openCell(entry) {
				moves = append(moves, Move{Stone: tray[0].ID, TrayIndex: 0, To: entry})
			}
		}
	}
	for _, s := range g.stones {
		if s.Owner != p || s.Status != StatusBoard {
			continue
		}
		for _, to := range g.board.Neighbors(s.At) {
			if to.IsCenter() || g.openCell(to) {
				moves = append(moves, Move{Stone: s.ID, TrayIndex: -1, From: s.At, To: to})
			}
		}
	}
	return moves
}

// LegalAbilityUses lists every coin application available to p, ignoring
// whose turn it is and whether p already used a coin.
func (g *Game) LegalAbilityUses(p Player) []AbilityUse {
	if g.won || !p.Valid() {
		return nil
	}
	var uses []AbilityUse
	for _, c := range g.catalog.List() {
		if _, disabled := g.disabled[p][c.ID()]; disabled {
			continue
		}
		if !c.Applicable(g.board) {
			continue
		}
		for _, target := range coin.Targets(g.board, c) {
			uses = append(uses, AbilityUse{Coin: c.ID(), Target: target})
		}
	}
	return uses
}

func (g *Game) openCell(ref board.Ref) bool {
	cell := g.board.Cell(ref)
	return cell.Empty() && !cell.Wall
}
