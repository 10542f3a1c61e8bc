package coin

import (
	"fmt"
	"strings"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
)

// ID is the stable identifier of a coin.
type ID string

// Kind groups coins by the board feature they touch.
type Kind string

const (
	KindWall     Kind = "wall"
	KindBridge   Kind = "bridge"
	KindLock     Kind = "lock"
	KindRotation Kind = "rotation"
)

// TargetKind describes which Target fields a coin reads.
type TargetKind string

const (
	// TargetCell reads Target.Cell.
	TargetCell TargetKind = "cell"
	// TargetRing reads Target.Ring.
	TargetRing TargetKind = "ring"
	// TargetRingDirection reads Target.Ring and Target.Direction.
	TargetRingDirection TargetKind = "ring_direction"
)

// DefaultCooldown is the number of rounds a coin stays disabled after use.
const DefaultCooldown = 1

// Target addresses what a coin acts on.
type Target struct {
	Cell      board.Ref       `json:"cell"`
	Ring      int             `json:"ring"`
	Direction board.Direction `json:"direction,omitempty"`
}

func (t Target) describe(kind TargetKind) string {
	switch kind {
	case TargetCell:
		return t.Cell.String()
	case TargetRing:
		return fmt.Sprintf("ring %d", t.Ring)
	default:
		return fmt.Sprintf("ring %d %s", t.Ring, t.Direction)
	}
}

// Coin is one ability of the catalog.
type Coin interface {
	ID() ID
	Kind() Kind
	TargetKind() TargetKind
	Cooldown() int
	// Applicable reports whether at least one target could be valid.
	Applicable(b *board.Board) bool
	// Validate checks a target without touching the board.
	Validate(b *board.Board, target Target) *command.Rejection
	// Apply returns a new board with the effect applied. The input board is
	// never modified.
	Apply(b *board.Board, target Target) (*board.Board, *command.Rejection)
}

// ConfigurationError reports an unknown coin or an inconsistent catalog.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "coin configuration: " + e.Reason
}

// Spec declares a coin from its rule functions.
type Spec struct {
	ID         ID
	Kind       Kind
	TargetKind TargetKind
	// Cooldown defaults to DefaultCooldown when zero.
	Cooldown   int
	Applicable func(*board.Board) bool
	Validate   func(*board.Board, Target) *command.Rejection
	Effect     func(*board.Board, Target)
}

type definedCoin struct {
	spec Spec
}

// Define builds a Coin from a Spec.
func Define(spec Spec) (Coin, error) {
	spec.ID = ID(strings.TrimSpace(string(spec.ID)))
	if spec.ID == "" {
		return nil, fmt.Errorf("coin id is required")
	}
	switch spec.TargetKind {
	case TargetCell, TargetRing, TargetRingDirection:
	default:
		return nil, fmt.Errorf("coin %s: unknown target kind %q", spec.ID, spec.TargetKind)
	}
	if spec.Applicable == nil || spec.Validate == nil || spec.Effect == nil {
		return nil, fmt.Errorf("coin %s: applicable, validate and effect are required", spec.ID)
	}
	if spec.Cooldown < 0 {
		return nil, fmt.Errorf("coin %s: cooldown must not be negative", spec.ID)
	}
	if spec.Cooldown == 0 {
		spec.Cooldown = DefaultCooldown
	}
	return definedCoin{spec: spec}, nil
}

func (c definedCoin) ID() ID                 { return c.spec.ID }
func (c definedCoin) Kind() Kind             { return c.spec.Kind }
func (c definedCoin) TargetKind() TargetKind { return c.spec.TargetKind }
func (c definedCoin) Cooldown() int          { return c.spec.Cooldown }

func (c definedCoin) Applicable(b *board.Board) bool {
	return c.spec.Applicable(b)
}

func (c definedCoin) Validate(b *board.Board, target Target) *command.Rejection {
	if c.spec.TargetKind == TargetRingDirection && !target.Direction.Valid() {
		panic(&ConfigurationError{Reason: fmt.Sprintf("coin %s: invalid direction %d", c.spec.ID, int(target.Direction))})
	}
	return c.spec.Validate(b, target)
}

func (c definedCoin) Apply(b *board.Board, target Target) (*board.Board, *command.Rejection) {
	if rejection := c.Validate(b, target); rejection != nil {
		return nil, rejection
	}
	next := b.Clone()
	c.spec.Effect(next, target)
	return next, nil
}

func (c definedCoin) String() string {
	return string(c.spec.ID)
}
