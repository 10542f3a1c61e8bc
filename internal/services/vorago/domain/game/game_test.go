package game

import (
	"reflect"
	"testing"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/coin"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
)

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	g, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func mustAccept(t *testing.T, d command.Decision) command.Decision {
	t.Helper()
	if !d.Accepted() {
		t.Fatalf("decision rejected: %+v", d.Rejections)
	}
	return d
}

func mustReject(t *testing.T, d command.Decision, kind command.Kind, code string) {
	t.Helper()
	first, ok := d.First()
	if !ok {
		t.Fatalf("expected rejection %s, got accepted", code)
	}
	if first.Kind != kind || first.Code != code {
		t.Fatalf("rejection = %s/%s, want %s/%s", first.Kind, first.Code, kind, code)
	}
}

func placeFromTray(t *testing.T, g *Game, p Player, to board.Ref) {
	t.Helper()
	mustAccept(t, g.SelectUnplacedStone(p, 0))
	mustAccept(t, g.MoveStone(p, to))
}

func applyCoin(t *testing.T, g *Game, p Player, id coin.ID, target coin.Target) command.Decision {
	t.Helper()
	mustAccept(t, g.SelectAbility(p, id))
	return mustAccept(t, g.ApplyAbility(p, target))
}

func hasEffect(d command.Decision, typ command.EffectType) bool {
	for _, e := range d.Effects {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestNew_StartsAtRoundOne(t *testing.T) {
	g := newTestGame(t, Options{})
	if g.Round() != 1 || g.Active() != Player1 {
		t.Fatalf("round/active = %d/%s, want 1/player1", g.Round(), g.Active())
	}
	for _, p := range []Player{Player1, Player2} {
		if got := len(g.Tray(p)); got != StonesPerPlayer {
			t.Fatalf("%s tray = %d, want 3", p, got)
		}
	}
	if g.AI().Seat != Player2 || g.AI().Enabled {
		t.Fatalf("ai = %+v, want disabled on player2", g.AI())
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestMoveStone_FromTrayToEntryCell(t *testing.T) {
	g := newTestGame(t, Options{})
	mustAccept(t, g.SelectUnplacedStone(Player1, 0))
	d := mustAccept(t, g.MoveStone(Player1, board.Ref{Ring: 0, Cell: 0}))

	if !g.HasMovedStone() {
		t.Fatal("expected hasMovedStone")
	}
	if got := g.Board().Cell(board.Ref{Ring: 0, Cell: 0}).Occupant; got != 1 {
		t.Fatalf("occupant = %d, want 1", got)
	}
	if got := len(g.Tray(Player1)); got != 2 {
		t.Fatalf("tray = %d, want 2", got)
	}
	if g.Selection().Stone != 0 {
		t.Fatal("selection should clear after move")
	}
	if !hasEffect(d, command.EffectStoneMoved) || hasEffect(d, command.EffectTurnEnded) {
		t.Fatalf("effects = %+v", d.Effects)
	}
}

func TestMoveThenAbility_EndsTurnWithoutNewRound(t *testing.T) {
	g := newTestGame(t, Options{})
	placeFromTray(t, g, Player1, board.Ref{Ring: 0, Cell: 0})
	mustAccept(t, g.SelectAbility(Player1, coin.PlaceWall))
	d := mustAccept(t, g.ApplyAbility(Player1, coin.Target{Cell: board.Ref{Ring: 2, Cell: 2}}))

	if !hasEffect(d, command.EffectAbilityApplied) || !hasEffect(d, command.EffectTurnEnded) {
		t.Fatalf("effects = %+v", d.Effects)
	}
	if hasEffect(d, command.EffectRoundStarted) {
		t.Fatal("round should not advance when player 2 takes over")
	}
	if g.Active() != Player2 || g.Round() != 1 {
		t.Fatalf("active/round = %s/%d, want player2/1", g.Active(), g.Round())
	}
	if g.HasMovedStone() || g.HasUsedCoin() {
		t.Fatal("flags should reset for player 2")
	}
}

func TestAbilityThenMove_OrderFree(t *testing.T) {
	g := newTestGame(t, Options{})
	applyCoin(t, g, Player1, coin.LockRing, coin.Target{Ring: 3})
	if g.Active() != Player1 || !g.HasUsedCoin() {
		t.Fatal("turn should wait for the move")
	}
	placeFromTray(t, g, Player1, board.Ref{Ring: 0, Cell: 8})
	if g.Active() != Player2 {
		t.Fatalf("active = %s, want player2", g.Active())
	}
}

func TestRoundAdvancesWhenPlayerOneResumes(t *testing.T) {
	g := newTestGame(t, Options{})
	placeFromTray(t, g, Player1, board.Ref{Ring: 0, Cell: 0})
	applyCoin(t, g, Player1, coin.PlaceWall, coin.Target{Cell: board.Ref{Ring: 1, Cell: 9}})

	placeFromTray(t, g, Player2, board.Ref{Ring: 0, Cell: 4})
	mustAccept(t, g.SelectAbility(Player2, coin.PlaceWall))
	d := mustAccept(t, g.ApplyAbility(Player2, coin.Target{Cell: board.Ref{Ring: 1, Cell: 10}}))

	if !hasEffect(d, command.EffectRoundStarted) {
		t.Fatalf("effects = %+v, want round started", d.Effects)
	}
	if g.Active() != Player1 || g.Round() != 2 {
		t.Fatalf("active/round = %s/%d, want player1/2", g.Active(), g.Round())
	}
}

func TestMoveStone_RejectsOccupiedAndWalled(t *testing.T) {
	g := newTestGame(t, Options{ManualTurnEnd: true})
	placeFromTray(t, g, Player1, board.Ref{Ring: 0, Cell: 0})
	applyCoin(t, g, Player1, coin.PlaceWall, coin.Target{Cell: board.Ref{Ring: 1, Cell: 0}})
	mustAccept(t, g.EndTurn())

	placeFromTray(t, g, Player2, board.Ref{Ring: 0, Cell: 4})
	applyCoin(t, g, Player2, coin.PlaceWall, coin.Target{Cell: board.Ref{Ring: 0, Cell: 1}})
	mustAccept(t, g.EndTurn())

	mustAccept(t, g.SelectStone(Player1, board.Ref{Ring: 0, Cell: 0}))
	before := g.Snapshot()

	mustReject(t, g.MoveStone(Player1, board.Ref{Ring: 1, Cell: 0}), command.KindRuleViolation, RejectionDestinationWalled)
	mustReject(t, g.MoveStone(Player1, board.Ref{Ring: 0, Cell: 4}), command.KindRuleViolation, RejectionDestinationOccupied)
	mustReject(t, g.MoveStone(Player1, board.Ref{Ring: 0, Cell: 1}), command.KindRuleViolation, RejectionDestinationWalled)

	if after := g.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatal("rejected moves changed state")
	}
}

func TestMoveStone_Validation(t *testing.T) {
	g := newTestGame(t, Options{ManualTurnEnd: true})

	mustReject(t, g.MoveStone(Player1, board.Ref{Ring: 0, Cell: 0}), command.KindInvalidCommand, RejectionStoneSelectionRequired)
	mustReject(t, g.SelectUnplacedStone(Player2, 0), command.KindInvalidCommand, RejectionNotYourTurn)
	mustReject(t, g.SelectUnplacedStone(Player1, 3), command.KindInvalidCommand, RejectionTrayIndexOutOfRange)
	mustReject(t, g.SelectUnplacedStone(Player(3), 0), command.KindInvalidCommand, RejectionPlayerUnknown)

	mustAccept(t, g.SelectUnplacedStone(Player1, 0))
	mustReject(t, g.MoveStone(Player1, board.Ref{Ring: 0, Cell: 4}), command.KindRuleViolation, RejectionEntryCellRequired)
	mustReject(t, g.MoveStone(Player1, board.Ref{Ring: 1, Cell: 0}), command.KindRuleViolation, RejectionEntryCellRequired)

	mustAccept(t, g.MoveStone(Player1, board.Ref{Ring: 0, Cell: 16}))
	mustAccept(t, g.SelectUnplacedStone(Player1, 0))
	mustReject(t, g.MoveStone(Player1, board.Ref{Ring: 0, Cell: 24}), command.KindRuleViolation, RejectionStoneAlreadyMoved)
}

func TestMoveStone_Unreachable(t *testing.T) {
	g := newTestGame(t, Options{ManualTurnEnd: true})
	placeFromTray(t, g, Player1, board.Ref{Ring: 0, Cell: 0})
	applyCoin(t, g, Player1, coin.LockRing, coin.Target{Ring: 4})
	mustAccept(t, g.EndTurn())
	placeFromTray(t, g, Player2, board.Ref{Ring: 0, Cell: 4})
	applyCoin(t, g, Player2, coin.PlaceWall, coin.Target{Cell: board.Ref{Ring: 3, Cell: 3}})
	mustAccept(t, g.EndTurn())

	mustAccept(t, g.SelectStone(Player1, board.Ref{Ring: 0, Cell: 0}))
	mustReject(t, g.MoveStone(Player1, board.Ref{Ring: 0, Cell: 5}), command.KindRuleViolation, RejectionDestinationUnreachable)
	mustAccept(t, g.MoveStone(Player1, board.Ref{Ring: 1, Cell: 0}))
}

func TestSelectStone_Validation(t *testing.T) {
	g := newTestGame(t, Options{ManualTurnEnd: true})
	placeFromTray(t, g, Player1, board.Ref{Ring: 0, Cell: 0})
	applyCoin(t, g, Player1, coin.LockRing, coin.Target{Ring: 4})
	mustAccept(t, g.EndTurn())

	mustReject(t, g.SelectStone(Player2, board.Ref{Ring: 0, Cell: 0}), command.KindRuleViolation, RejectionStoneNotOwned)
	mustReject(t, g.SelectStone(Player2, board.Ref{Ring: 0, Cell: 5}), command.KindRuleViolation, RejectionNoStoneAtCell)
	mustReject(t, g.SelectStone(Player2, board.Center), command.KindRuleViolation, RejectionStoneResolved)
}

func TestSelectionIsReplaced(t *testing.T) {
	g := newTestGame(t, Options{})
	mustAccept(t, g.SelectUnplacedStone(Player1, 0))
	mustAccept(t, g.SelectUnplacedStone(Player1, 2))
	if got := g.Selection().Stone; got != 3 {
		t.Fatalf("selected stone = %d, want 3", got)
	}
}

func TestSelectAbility_Validation(t *testing.T) {
	g := newTestGame(t, Options{ManualTurnEnd: true})
	mustReject(t, g.SelectAbility(Player1, coin.RemoveWall), command.KindRuleViolation, RejectionAbilityNotApplicable)
	mustReject(t, g.ApplyAbility(Player1, coin.Target{}), command.KindInvalidCommand, RejectionAbilitySelectionRequired)

	applyCoin(t, g, Player1, coin.PlaceWall, coin.Target{Cell: board.Ref{Ring: 2, Cell: 0}})
	mustReject(t, g.SelectAbility(Player1, coin.LockRing), command.KindRuleViolation, RejectionAbilityAlreadyUsed)
}

func TestSelectAbility_UnknownPanics(t *testing.T) {
	g := newTestGame(t, Options{})
	defer func() {
		if _, ok := recover().(*coin.ConfigurationError); !ok {
			t.Fatal("expected *coin.ConfigurationError")
		}
	}()
	g.SelectAbility(Player1, "teleport")
}

func TestApplyAbility_RejectedTargetKeepsState(t *testing.T) {
	g := newTestGame(t, Options{})
	placeFromTray(t, g, Player1, board.Ref{Ring: 0, Cell: 0})
	mustAccept(t, g.SelectAbility(Player1, coin.PlaceWall))
	before := g.Snapshot()
	mustReject(t, g.ApplyAbility(Player1, coin.Target{Cell: board.Ref{Ring: 0, Cell: 0}}), command.KindRuleViolation, coin.RejectionTargetOccupied)
	if !reflect.DeepEqual(before, g.Snapshot()) {
		t.Fatal("rejected ability changed state")
	}
}

// playTurn moves any legal stone and applies id to target for the active player.
func playTurn(t *testing.T, g *Game, id coin.ID, target coin.Target) {
	t.Helper()
	p := g.Active()
	moves := g.LegalMoves(p)
	if len(moves) == 0 {
		t.Fatalf("%s has no legal move", p)
	}
	m := moves[0]
	if m.FromTray() {
		mustAccept(t, g.SelectUnplacedStone(p, m.TrayIndex))
	} else {
		mustAccept(t, g.SelectStone(p, m.From))
	}
	mustAccept(t, g.MoveStone(p, m.To))
	applyCoin(t, g, p, id, target)
}

func TestCooldown_RestoredWhenNextRoundBegins(t *testing.T) {
	g := newTestGame(t, Options{})
	playTurn(t, g, coin.PlaceWall, coin.Target{Cell: board.Ref{Ring: 2, Cell: 5}})
	if got := g.Disabled(Player1)[coin.PlaceWall]; got != 2 {
		t.Fatalf("place_wall available round = %d, want 2", got)
	}

	// Player 2 acts in round 1; player 1 is still on cooldown.
	playTurn(t, g, coin.PlaceWall, coin.Target{Cell: board.Ref{Ring: 2, Cell: 6}})
	if _, disabled := g.Disabled(Player2)[coin.PlaceWall]; !disabled {
		t.Fatal("player 2 place_wall should be disabled")
	}

	// Round 2 begins for player 1.
	if g.Round() != 2 || g.Active() != Player1 {
		t.Fatalf("round/active = %d/%s", g.Round(), g.Active())
	}
	if _, disabled := g.Disabled(Player1)[coin.PlaceWall]; disabled {
		t.Fatal("place_wall should be available again for player 1")
	}
	if _, disabled := g.Disabled(Player2)[coin.PlaceWall]; !disabled {
		t.Fatal("player 2 decays only at the start of its own turn")
	}
	playTurn(t, g, coin.PlaceWall, coin.Target{Cell: board.Ref{Ring: 2, Cell: 7}})
	if _, disabled := g.Disabled(Player2)[coin.PlaceWall]; disabled {
		t.Fatal("player 2 place_wall should decay when its round 2 turn begins")
	}
}

func TestCooldown_LockRingSkipsOneRound(t *testing.T) {
	g := newTestGame(t, Options{})
	playTurn(t, g, coin.LockRing, coin.Target{Ring: 0})
	playTurn(t, g, coin.PlaceWall, coin.Target{Cell: board.Ref{Ring: 2, Cell: 6}})

	mustReject(t, g.SelectAbility(Player1, coin.LockRing), command.KindRuleViolation, RejectionAbilityOnCooldown)
	playTurn(t, g, coin.PlaceWall, coin.Target{Cell: board.Ref{Ring: 2, Cell: 8}})
	playTurn(t, g, coin.LockRing, coin.Target{Ring: 1})

	if g.Round() != 3 {
		t.Fatalf("round = %d, want 3", g.Round())
	}
	mustAccept(t, g.SelectAbility(Player1, coin.LockRing))
}

func TestEndTurn_ManualRequiresBothActions(t *testing.T) {
	g := newTestGame(t, Options{ManualTurnEnd: true})
	mustReject(t, g.EndTurn(), command.KindRuleViolation, RejectionTurnIncomplete)

	placeFromTray(t, g, Player1, board.Ref{Ring: 0, Cell: 0})
	mustReject(t, g.EndTurn(), command.KindRuleViolation, RejectionTurnIncomplete)

	applyCoin(t, g, Player1, coin.PlaceWall, coin.Target{Cell: board.Ref{Ring: 3, Cell: 3}})
	if g.Active() != Player1 {
		t.Fatal("manual mode should not end the turn automatically")
	}
	mustAccept(t, g.EndTurn())
	if g.Active() != Player2 || g.HasMovedStone() || g.HasUsedCoin() {
		t.Fatalf("after EndTurn active=%s moved=%v used=%v", g.Active(), g.HasMovedStone(), g.HasUsedCoin())
	}
}

func TestRotateRing_Shorthand(t *testing.T) {
	g := newTestGame(t, Options{ManualTurnEnd: true})
	d := mustAccept(t, g.RotateRing(Player1, 3, board.Clockwise))
	if !hasEffect(d, command.EffectAbilitySelected) || !hasEffect(d, command.EffectAbilityApplied) {
		t.Fatalf("effects = %+v", d.Effects)
	}
	if got := g.Board().Ring(3).Offset; got != 1 {
		t.Fatalf("offset = %d, want 1", got)
	}
	if !g.HasUsedCoin() {
		t.Fatal("rotation should consume the ability action")
	}
	if _, disabled := g.Disabled(Player1)[coin.RotateRing]; !disabled {
		t.Fatal("rotate_ring should be on cooldown")
	}
}

func TestRotateRing_LockedKeepsSelection(t *testing.T) {
	g := newTestGame(t, Options{ManualTurnEnd: true})
	placeFromTray(t, g, Player1, board.Ref{Ring: 0, Cell: 0})
	applyCoin(t, g, Player1, coin.LockRing, coin.Target{Ring: 2})
	mustAccept(t, g.EndTurn())

	mustAccept(t, g.SelectAbility(Player2, coin.PlaceWall))
	mustReject(t, g.RotateRing(Player2, 2, board.CounterClockwise), command.KindRuleViolation, coin.RejectionRingLocked)
	if got := g.Selection().Ability; got != coin.PlaceWall {
		t.Fatalf("selection = %q, want place_wall", got)
	}
	if got := g.Board().Ring(2).Offset; got != 0 {
		t.Fatalf("locked ring offset = %d, want 0", got)
	}
}

func TestPass_OnlyWithoutAlternatives(t *testing.T) {
	g := newTestGame(t, Options{})
	mustReject(t, g.Pass(Player1), command.KindRuleViolation, RejectionPassNotAllowed)

	snap := g.Snapshot()
	for _, entry := range g.EntryCells(Player1) {
		snap.Cells[cellIndex(t, snap, entry)].Wall = true
	}
	g = restore(t, snap)
	if moves := g.LegalMoves(Player1); len(moves) != 0 {
		t.Fatalf("LegalMoves = %v, want none", moves)
	}
	mustReject(t, g.Pass(Player1), command.KindRuleViolation, RejectionPassNotAllowed)

	applyCoin(t, g, Player1, coin.LockRing, coin.Target{Ring: 1})
	d := mustAccept(t, g.Pass(Player1))
	if !hasEffect(d, command.EffectTurnPassed) || g.Active() != Player2 {
		t.Fatalf("effects = %+v active = %s", d.Effects, g.Active())
	}
}

func TestWin_PreemptsTurnAndIsTerminal(t *testing.T) {
	g := newTestGame(t, Options{})
	snap := g.Snapshot()
	inner := board.Ref{Ring: 4, Cell: 0}
	snap.Stones[0] = Stone{ID: 1, Owner: Player1, Status: StatusCenter, At: board.Center}
	snap.Stones[1] = Stone{ID: 2, Owner: Player1, Status: StatusCenter, At: board.Center}
	snap.Stones[2] = Stone{ID: 3, Owner: Player1, Status: StatusBoard, At: inner}
	snap.Cells[cellIndex(t, snap, inner)].Occupant = 3
	snap.Players[0].Score = 2
	snap.Players[0].Tray = []int{}
	g = restore(t, snap)

	applyCoin(t, g, Player1, coin.LockRing, coin.Target{Ring: 0})
	mustAccept(t, g.SelectStone(Player1, inner))
	d := mustAccept(t, g.MoveStone(Player1, board.Center))

	if !g.Won() || g.Winner() != Player1 || g.Score(Player1) != 3 {
		t.Fatalf("won=%v winner=%s score=%d", g.Won(), g.Winner(), g.Score(Player1))
	}
	if !hasEffect(d, command.EffectGameWon) || hasEffect(d, command.EffectTurnEnded) {
		t.Fatalf("effects = %+v", d.Effects)
	}
	if g.Active() != Player1 {
		t.Fatal("win should pre-empt the turn swap")
	}

	mustReject(t, g.SelectUnplacedStone(Player2, 0), command.KindInvalidCommand, RejectionGameOver)
	mustReject(t, g.MoveStone(Player1, board.Center), command.KindInvalidCommand, RejectionGameOver)
	mustReject(t, g.ApplyAbility(Player1, coin.Target{}), command.KindInvalidCommand, RejectionGameOver)
	mustReject(t, g.EndTurn(), command.KindInvalidCommand, RejectionGameOver)
	mustReject(t, g.Pass(Player1), command.KindInvalidCommand, RejectionGameOver)

	mustAccept(t, g.SetPlayerNames("Ana", "Bruno"))
	mustAccept(t, g.SetAIMode(true, Hard))
	mustAccept(t, g.NewGame())
	if g.Won() || g.PlayerName(Player1) != "Ana" || !g.AI().Enabled || g.AI().Difficulty != Hard {
		t.Fatalf("after NewGame won=%v name=%q ai=%+v", g.Won(), g.PlayerName(Player1), g.AI())
	}
}

func TestSetPlayerNamesAndAIMode_Validation(t *testing.T) {
	g := newTestGame(t, Options{})
	mustReject(t, g.SetPlayerNames(" ", "Bo"), command.KindInvalidCommand, RejectionPlayerNameRequired)
	mustReject(t, g.SetAIMode(true, "impossible"), command.KindInvalidCommand, RejectionDifficultyUnknown)
	mustAccept(t, g.SetAIMode(true, "MEDIUM"))
	if g.AI().Difficulty != Medium {
		t.Fatalf("difficulty = %s, want medium", g.AI().Difficulty)
	}
}

func TestEntryCells(t *testing.T) {
	g := newTestGame(t, Options{})
	want1 := []board.Ref{{Ring: 0, Cell: 0}, {Ring: 0, Cell: 8}, {Ring: 0, Cell: 16}, {Ring: 0, Cell: 24}}
	want2 := []board.Ref{{Ring: 0, Cell: 4}, {Ring: 0, Cell: 12}, {Ring: 0, Cell: 20}, {Ring: 0, Cell: 28}}
	if got := g.EntryCells(Player1); !reflect.DeepEqual(got, want1) {
		t.Fatalf("EntryCells(player1) = %v", got)
	}
	if got := g.EntryCells(Player2); !reflect.DeepEqual(got, want2) {
		t.Fatalf("EntryCells(player2) = %v", got)
	}
}
