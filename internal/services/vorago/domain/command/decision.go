package command

import (
	"fmt"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
)

// Kind classifies a rejection.
type Kind string

const (
	// KindInvalidCommand covers commands issued out of turn, without a required
	// selection or after the game ended.
	KindInvalidCommand Kind = "invalid_command"
	// KindRuleViolation covers commands that are well formed but break a game rule.
	KindRuleViolation Kind = "rule_violation"
)

// Decision represents the pure outcome of handling a command.
type Decision struct {
	Effects    []Effect
	Rejections []Rejection
}

// Rejection captures a domain-level reason a command was declined.
type Rejection struct {
	Kind    Kind
	Code    string
	Message string
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// Accept returns a decision that carries the provided effects.
func Accept(effects ...Effect) Decision {
	return Decision{Effects: append([]Effect(nil), effects...)}
}

// Reject returns a decision that carries the provided rejections.
func Reject(rejections ...Rejection) Decision {
	return Decision{Rejections: append([]Rejection(nil), rejections...)}
}

// Invalid builds an InvalidCommand rejection.
func Invalid(code, message string) Rejection {
	return Rejection{Kind: KindInvalidCommand, Code: code, Message: message}
}

// Violation builds a RuleViolation rejection.
func Violation(code, message string) Rejection {
	return Rejection{Kind: KindRuleViolation, Code: code, Message: message}
}

// Accepted reports whether the decision carries no rejections.
func (d Decision) Accepted() bool {
	return len(d.Rejections) == 0
}

// First returns the first rejection, if any.
func (d Decision) First() (Rejection, bool) {
	if len(d.Rejections) == 0 {
		return Rejection{}, false
	}
	return d.Rejections[0], true
}

// Merge appends the effects of other to d. Rejections in other win.
func (d Decision) Merge(other Decision) Decision {
	if !other.Accepted() {
		return other
	}
	d.Effects = append(append([]Effect(nil), d.Effects...), other.Effects...)
	return d
}

// EffectType names something that happened to the game.
type EffectType string

const (
	EffectGameStarted     EffectType = "game.started"
	EffectPlayersNamed    EffectType = "game.players_named"
	EffectAIModeSet       EffectType = "game.ai_mode_set"
	EffectStoneSelected   EffectType = "stone.selected"
	EffectStoneMoved      EffectType = "stone.moved"
	EffectStoneResolved   EffectType = "stone.resolved"
	EffectAbilitySelected EffectType = "ability.selected"
	EffectAbilityApplied  EffectType = "ability.applied"
	EffectAbilityRestored EffectType = "ability.restored"
	EffectTurnPassed      EffectType = "turn.passed"
	EffectTurnEnded       EffectType = "turn.ended"
	EffectRoundStarted    EffectType = "round.started"
	EffectGameWon         EffectType = "game.won"
)

// Effect describes one observable state change produced by a command.
type Effect struct {
	Type    EffectType `json:"type"`
	Player  int        `json:"player,omitempty"`
	Stone   int        `json:"stone,omitempty"`
	From    *board.Ref `json:"from,omitempty"`
	To      *board.Ref `json:"to,omitempty"`
	Ability string     `json:"ability,omitempty"`
	Round   int        `json:"round,omitempty"`
}
