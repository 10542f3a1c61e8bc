package scenario

import (
	"fmt"
	"log"
	"sort"
	"strings"

	voragogrpc "github.com/louisbranch/vorago/internal/services/vorago/api/grpc/vorago"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/coin"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/game"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/match"
)

func (r *Runner) runStep(state *scenarioState, step Step) error {
	switch step.Kind {
	case "game":
		return r.runGame(state, step.Args)
	case "command":
		return r.runCommand(state, step.Args)
	case "ability":
		return r.runAbility(state, step.Args)
	case "expect":
		return r.runExpect(state, step.Args)
	case "expect_stone":
		return r.runExpectStone(state, step.Args)
	case "expect_cell":
		return r.runExpectCell(state, step.Args)
	case "expect_ring":
		return r.runExpectRing(state, step.Args)
	case "expect_cooldown":
		return r.runExpectCooldown(state, step.Args)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runGame(state *scenarioState, args map[string]any) error {
	seed := r.seed
	if value, ok, err := intArg(args, "seed"); err != nil {
		return err
	} else if ok {
		seed = uint64(value)
	}
	manualTurnEnd, _, err := boolArg(args, "manual_turn_end")
	if err != nil {
		return err
	}
	manualAI, _, err := boolArg(args, "manual_ai")
	if err != nil {
		return err
	}
	opts := match.Options{
		Game:     game.Options{ManualTurnEnd: manualTurnEnd},
		Seed:     seed,
		ManualAI: manualAI,
	}
	if r.verbose {
		opts.Logger = log.New(r.logger.Writer(), "[AI] ", 0)
	}
	m, err := match.New(opts)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}

	player1 := stringOr(args, "player1", "Player 1")
	player2 := stringOr(args, "player2", "Player 2")
	decision, err := m.SetPlayerNames(player1, player2)
	if err := r.expectAccepted("set_player_names", decision, err); err != nil {
		return err
	}
	aiEnabled, _, err := boolArg(args, "ai")
	if err != nil {
		return err
	}
	if aiEnabled {
		difficulty := stringOr(args, "difficulty", string(game.Medium))
		decision, err := m.SetAIMode(true, game.Difficulty(difficulty))
		if err := r.expectAccepted("set_ai_mode", decision, err); err != nil {
			return err
		}
	}
	state.match = m
	return nil
}

// expectAccepted fails a setup command that the game refused.
func (r *Runner) expectAccepted(name string, decision command.Decision, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if rejection, rejected := decision.First(); rejected {
		return fmt.Errorf("%s rejected: %s (%s)", name, rejection.Code, rejection.Message)
	}
	return nil
}

// ensureMatch starts a default two-player match for scripts without a game step.
func (r *Runner) ensureMatch(state *scenarioState) (*match.Match, error) {
	if state.match == nil {
		if err := r.runGame(state, map[string]any{}); err != nil {
			return nil, err
		}
	}
	return state.match, nil
}

func (r *Runner) runCommand(state *scenarioState, args map[string]any) error {
	m, err := r.ensureMatch(state)
	if err != nil {
		return err
	}
	player, _, err := intArg(args, "player")
	if err != nil {
		return err
	}
	name := stringOr(args, "command", "")
	cmdArgs, _ := args["args"].(map[string]any)

	decision, err := voragogrpc.Dispatch(m, game.Player(player), name, cmdArgs)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return r.checkDecision(name, args, decision)
}

func (r *Runner) runAbility(state *scenarioState, args map[string]any) error {
	m, err := r.ensureMatch(state)
	if err != nil {
		return err
	}
	player, _, err := intArg(args, "player")
	if err != nil {
		return err
	}
	ability := stringOr(args, "ability", "")
	target, _ := args["target"].(map[string]any)

	decision, err := voragogrpc.Dispatch(m, game.Player(player), voragogrpc.CommandSelectAbility, map[string]any{"ability": ability})
	if err == nil && decision.Accepted() {
		decision, err = voragogrpc.Dispatch(m, game.Player(player), voragogrpc.CommandApplyAbility, target)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ability, err)
	}
	return r.checkDecision(ability, args, decision)
}

// checkDecision compares a decision with the step's expected rejection code.
func (r *Runner) checkDecision(name string, args map[string]any, decision command.Decision) error {
	want := stringOr(args, "reject", "")
	rejection, rejected := decision.First()
	switch {
	case want == "" && rejected:
		return r.assertions.Failf("%s rejected: %s (%s)", name, rejection.Code, rejection.Message)
	case want != "" && !rejected:
		return r.assertions.Failf("%s accepted, want rejection %s", name, want)
	case want != "" && rejection.Code != want:
		return r.assertions.Failf("%s rejected with %s, want %s", name, rejection.Code, want)
	}
	if rejected {
		r.logf("%s rejected as expected: %s", name, rejection.Code)
	} else {
		r.logf("%s accepted: %d effects", name, len(decision.Effects))
	}
	return nil
}

func (r *Runner) runExpect(state *scenarioState, args map[string]any) error {
	m, err := r.ensureMatch(state)
	if err != nil {
		return err
	}
	g := m.Game()
	actual := map[string]any{
		"round":            g.Round(),
		"active":           int(g.Active()),
		"won":              g.Won(),
		"winner":           int(g.Winner()),
		"score1":           g.Score(game.Player1),
		"score2":           g.Score(game.Player2),
		"has_moved":        g.HasMovedStone(),
		"has_used_coin":    g.HasUsedCoin(),
		"selected_stone":   g.Selection().Stone,
		"selected_ability": string(g.Selection().Ability),
	}
	return r.compare("game", args, actual)
}

func (r *Runner) runExpectStone(state *scenarioState, args map[string]any) error {
	m, err := r.ensureMatch(state)
	if err != nil {
		return err
	}
	id, _, err := intArg(args, "stone")
	if err != nil {
		return err
	}
	stone, ok := m.Game().Stone(id)
	if !ok {
		return fmt.Errorf("unknown stone %d", id)
	}
	actual := map[string]any{
		"stone":  stone.ID,
		"owner":  int(stone.Owner),
		"status": string(stone.Status),
		"ring":   stone.At.Ring,
		"cell":   stone.At.Cell,
	}
	return r.compare(fmt.Sprintf("stone %d", id), args, actual)
}

func (r *Runner) runExpectCell(state *scenarioState, args map[string]any) error {
	m, err := r.ensureMatch(state)
	if err != nil {
		return err
	}
	ref, err := refArg(args)
	if err != nil {
		return err
	}
	b := m.Game().Board()
	if !b.ValidCell(ref) {
		return fmt.Errorf("cell %s is off the board", ref)
	}
	cell := b.Cell(ref)
	actual := map[string]any{
		"ring":     ref.Ring,
		"cell":     ref.Cell,
		"occupant": cell.Occupant,
		"wall":     cell.Wall,
		"bridge":   cell.Bridge,
	}
	return r.compare("cell "+ref.String(), args, actual)
}

func (r *Runner) runExpectRing(state *scenarioState, args map[string]any) error {
	m, err := r.ensureMatch(state)
	if err != nil {
		return err
	}
	index, _, err := intArg(args, "ring")
	if err != nil {
		return err
	}
	b := m.Game().Board()
	if !b.ValidRing(index) {
		return fmt.Errorf("ring %d is off the board", index)
	}
	ring := b.Ring(index)
	actual := map[string]any{
		"ring":   index,
		"size":   ring.Size,
		"offset": ring.Offset,
		"locked": ring.Locked,
	}
	return r.compare(fmt.Sprintf("ring %d", index), args, actual)
}

func (r *Runner) runExpectCooldown(state *scenarioState, args map[string]any) error {
	m, err := r.ensureMatch(state)
	if err != nil {
		return err
	}
	player, _, err := intArg(args, "player")
	if err != nil {
		return err
	}
	want, _, err := intArg(args, "round")
	if err != nil {
		return err
	}
	ability := coin.ID(strings.ToLower(stringOr(args, "ability", "")))
	got, disabled := m.Game().Disabled(game.Player(player))[ability]
	switch {
	case want == 0 && disabled:
		return r.assertions.Failf("%s for player %d is recharging until round %d, want available", ability, player, got)
	case want != 0 && !disabled:
		return r.assertions.Failf("%s for player %d is available, want recharging until round %d", ability, player, want)
	case want != 0 && got != want:
		return r.assertions.Failf("%s for player %d recharges until round %d, want %d", ability, player, got, want)
	}
	return nil
}

// compare checks every expected key against actual. Unknown keys are errors
// so a typo never passes silently.
func (r *Runner) compare(subject string, expected, actual map[string]any) error {
	keys := make([]string, 0, len(expected))
	for key := range expected {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		got, known := actual[key]
		if !known {
			return fmt.Errorf("%s: unknown field %q", subject, key)
		}
		if want := expected[key]; !equalValue(want, got) {
			if err := r.assertions.Failf("%s: %s = %v, want %v", subject, key, got, want); err != nil {
				return err
			}
		}
	}
	return nil
}

func equalValue(want, got any) bool {
	if w, ok := want.(string); ok {
		if g, ok := got.(string); ok {
			return strings.EqualFold(w, g)
		}
	}
	return want == got
}

func refArg(args map[string]any) (board.Ref, error) {
	ring, ok, err := intArg(args, "ring")
	if err != nil {
		return board.Ref{}, err
	}
	if !ok {
		return board.Ref{}, fmt.Errorf("ring is required")
	}
	cell, ok, err := intArg(args, "cell")
	if err != nil {
		return board.Ref{}, err
	}
	if !ok {
		return board.Ref{}, fmt.Errorf("cell is required")
	}
	return board.Ref{Ring: ring, Cell: cell}, nil
}

func intArg(args map[string]any, key string) (int, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch value := raw.(type) {
	case int:
		return value, true, nil
	case float64:
		return 0, true, fmt.Errorf("%s must be an integer, got %v", key, value)
	default:
		return 0, true, fmt.Errorf("%s must be a number, got %T", key, raw)
	}
}

func boolArg(args map[string]any, key string) (bool, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return false, false, nil
	}
	value, isBool := raw.(bool)
	if !isBool {
		return false, true, fmt.Errorf("%s must be a boolean, got %T", key, raw)
	}
	return value, true, nil
}

func stringOr(args map[string]any, key, fallback string) string {
	if value, ok := args[key].(string); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}
