package match

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/coin"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
)

func mustNewMatch(t *testing.T, opts Options) *Match {
	t.Helper()
	m, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

// acceptor returns a checker that takes a match command's results directly.
func acceptor(t *testing.T) func(command.Decision, error) command.Decision {
	return func(d command.Decision, err error) command.Decision {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !d.Accepted() {
			t.Fatalf("rejected: %+v", d.Rejections)
		}
		return d
	}
}

func rejectCode(t *testing.T, d command.Decision, err error, code string) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, ok := d.First()
	if !ok || first.Code != code {
		t.Fatalf("rejection = %+v, want %s", d.Rejections, code)
	}
}

// humanTurn places a tray stone for player 1 and applies the first legal
// ability use.
func humanTurn(t *testing.T, m *Match) command.Decision {
	t.Helper()
	accept := acceptor(t)
	accept(m.SelectUnplacedStone(game.Player1, 0))
	g := m.Game()
	moves := g.LegalMoves(game.Player1)
	if len(moves) == 0 || !moves[0].FromTray() {
		t.Fatalf("no tray move available: %+v", moves)
	}
	accept(m.MoveStone(game.Player1, moves[0].To))

	uses := m.Game().LegalAbilityUses(game.Player1)
	if len(uses) == 0 {
		t.Fatal("no ability available")
	}
	accept(m.SelectAbility(game.Player1, uses[0].Coin))
	return accept(m.ApplyAbility(game.Player1, uses[0].Target))
}

func TestAITriggersAfterHumanTurn(t *testing.T) {
	var buf bytes.Buffer
	m := mustNewMatch(t, Options{Seed: 5, Logger: log.New(&buf, "", 0)})
	acceptor(t)(m.SetAIMode(true, game.Easy))

	d := humanTurn(t, m)
	g := m.Game()
	if g.Active() != game.Player1 || g.Round() != 2 {
		t.Fatalf("active/round = %s/%d, want player1/2", g.Active(), g.Round())
	}
	if len(g.Tray(game.Player2)) != 2 {
		t.Fatalf("player2 tray = %d, want 2", len(g.Tray(game.Player2)))
	}
	aiMoved := false
	for _, e := range d.Effects {
		if e.Type == command.EffectStoneMoved && e.Player == int(game.Player2) {
			aiMoved = true
		}
	}
	if !aiMoved {
		t.Fatalf("effects = %+v, want AI move", d.Effects)
	}
	if !strings.Contains(buf.String(), "ai player2 (easy)") {
		t.Fatalf("log = %q", buf.String())
	}
}

func TestManualAI(t *testing.T) {
	m := mustNewMatch(t, Options{Seed: 9, ManualAI: true})
	d, err := m.ExecuteAITurn()
	rejectCode(t, d, err, RejectionAIDisabled)
	acceptor(t)(m.SetAIMode(true, game.Medium))
	d, err = m.ExecuteAITurn()
	rejectCode(t, d, err, RejectionNotAITurn)

	humanTurn(t, m)
	if m.Game().Active() != game.Player2 {
		t.Fatal("manual AI should wait")
	}
	acceptor(t)(m.ExecuteAITurn())
	if m.Game().Active() != game.Player1 {
		t.Fatalf("active = %s, want player1", m.Game().Active())
	}
}

func TestSetAIMode_PlaysWhenSeatIsActive(t *testing.T) {
	m := mustNewMatch(t, Options{Seed: 1})
	humanTurn(t, m)
	if m.Game().Active() != game.Player2 {
		t.Fatal("expected player2 turn")
	}
	acceptor(t)(m.SetAIMode(true, game.Hard))
	if m.Game().Active() != game.Player1 {
		t.Fatal("enabling the AI on its turn should play it")
	}
}

func TestRejectedCommandDoesNotTriggerAI(t *testing.T) {
	m := mustNewMatch(t, Options{Seed: 2})
	acceptor(t)(m.SetAIMode(true, game.Easy))
	d, err := m.SelectAbility(game.Player1, coin.RemoveWall)
	rejectCode(t, d, err, game.RejectionAbilityNotApplicable)
	if m.Game().Active() != game.Player1 {
		t.Fatal("rejection changed the active player")
	}
}

func TestSameSeedPlaysSameGame(t *testing.T) {
	play := func() game.Snapshot {
		m := mustNewMatch(t, Options{Seed: 77})
		acceptor(t)(m.SetAIMode(true, game.Medium))
		humanTurn(t, m)
		humanTurn(t, m)
		return m.Snapshot()
	}
	a, b := play(), play()
	if a.Round != b.Round || len(a.Cells) != len(b.Cells) {
		t.Fatal("snapshots differ")
	}
	for i := range a.Cells {
		if a.Cells[i] != b.Cells[i] {
			t.Fatalf("cell %s differs: %+v vs %+v", a.Cells[i].Ref, a.Cells[i], b.Cells[i])
		}
	}
}

func TestRestore(t *testing.T) {
	m := mustNewMatch(t, Options{Seed: 3})
	humanTurn(t, m)
	restored, err := Restore(m.Snapshot(), Options{Seed: 3})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Game().Active() != game.Player2 {
		t.Fatalf("active = %s", restored.Game().Active())
	}
}
