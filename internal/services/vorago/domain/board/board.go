package board

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// RingCount is the number of concentric rings on a Vorago board.
	RingCount = 5
	// CenterRing is the pseudo ring index addressing the Center goal.
	CenterRing = RingCount
	// AngularUnits is the resolution used to compare spans across rings.
	AngularUnits = 32
)

// DefaultRingSizes is the cell count per ring from outer to inner.
var DefaultRingSizes = []int{32, 16, 16, 8, 4}

// ErrRingLocked indicates a rotation was attempted on a locked ring.
var ErrRingLocked = errors.New("ring is locked")

// Center addresses the goal shared by both players.
var Center = Ref{Ring: CenterRing}

// Direction is one discrete rotation step.
type Direction int

const (
	// Clockwise advances a ring offset by one cell.
	Clockwise Direction = 1
	// CounterClockwise moves a ring offset back by one cell.
	CounterClockwise Direction = -1
)

// ParseDirection accepts "cw"/"clockwise" and "ccw"/"counterclockwise".
func ParseDirection(value string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "cw", "clockwise":
		return Clockwise, true
	case "ccw", "counterclockwise", "counter_clockwise":
		return CounterClockwise, true
	default:
		return 0, false
	}
}

// Valid reports whether d is one of the two rotation steps.
func (d Direction) Valid() bool {
	return d == Clockwise || d == CounterClockwise
}

func (d Direction) String() string {
	switch d {
	case Clockwise:
		return "cw"
	case CounterClockwise:
		return "ccw"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Ref addresses one ring cell, or Center when Ring is CenterRing.
type Ref struct {
	Ring int `json:"ring"`
	Cell int `json:"cell"`
}

// IsCenter reports whether the ref addresses the Center goal.
func (r Ref) IsCenter() bool {
	return r.Ring == CenterRing
}

func (r Ref) String() string {
	if r.IsCenter() {
		return "center"
	}
	return fmt.Sprintf("r%dc%d", r.Ring, r.Cell)
}

// Cell is the mutable content of one ring position.
type Cell struct {
	// Occupant is the id of the stone on the cell, zero when empty.
	Occupant int `json:"occupant,omitempty"`
	Wall     bool `json:"wall,omitempty"`
	Bridge   bool `json:"bridge,omitempty"`
}

// Empty reports whether no stone stands on the cell.
func (c Cell) Empty() bool {
	return c.Occupant == 0
}

// Ring carries the per-ring rotation state.
type Ring struct {
	Size   int  `json:"size"`
	Offset int  `json:"offset"`
	Locked bool `json:"locked,omitempty"`
}

// ConfigurationError reports an internally inconsistent board access, such as
// an out-of-range ring or cell. It is raised with panic because it signals an
// integration bug rather than a player mistake.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "board configuration: " + e.Reason
}

func configurationPanic(format string, args ...any) {
	panic(&ConfigurationError{Reason: fmt.Sprintf(format, args...)})
}

// Board is the cell table plus ring rotation state.
type Board struct {
	rings []Ring
	cells [][]Cell
}

// New builds an empty board from ring sizes listed outer to inner.
func New(sizes []int) (*Board, error) {
	if len(sizes) != RingCount {
		return nil, fmt.Errorf("ring sizes: want %d rings, got %d", RingCount, len(sizes))
	}
	b := &Board{
		rings: make([]Ring, RingCount),
		cells: make([][]Cell, RingCount),
	}
	for i, size := range sizes {
		if size <= 0 || AngularUnits%size != 0 {
			return nil, fmt.Errorf("ring %d size %d must divide %d", i, size, AngularUnits)
		}
		b.rings[i] = Ring{Size: size}
		b.cells[i] = make([]Cell, size)
	}
	return b, nil
}

// NewDefault builds the standard 32/16/16/8/4 board.
func NewDefault() *Board {
	b, err := New(DefaultRingSizes)
	if err != nil {
		panic(err)
	}
	return b
}

// Clone returns a deep copy.
func (b *Board) Clone() *Board {
	out := &Board{
		rings: append([]Ring(nil), b.rings...),
		cells: make([][]Cell, len(b.cells)),
	}
	for i, ring := range b.cells {
		out.cells[i] = append([]Cell(nil), ring...)
	}
	return out
}

// CellCount returns the number of ring cells, Center excluded.
func (b *Board) CellCount() int {
	total := 0
	for _, ring := range b.rings {
		total += ring.Size
	}
	return total
}

// RingSizes returns the configured sizes outer to inner.
func (b *Board) RingSizes() []int {
	sizes := make([]int, len(b.rings))
	for i, ring := range b.rings {
		sizes[i] = ring.Size
	}
	return sizes
}

// Rings returns a copy of the ring rotation state.
func (b *Board) Rings() []Ring {
	return append([]Ring(nil), b.rings...)
}

// Ring returns the rotation state of one ring.
func (b *Board) Ring(index int) Ring {
	b.mustRing(index)
	return b.rings[index]
}

// Offsets returns the rotation offset of each ring.
func (b *Board) Offsets() []int {
	offsets := make([]int, len(b.rings))
	for i, ring := range b.rings {
		offsets[i] = ring.Offset
	}
	return offsets
}

// ValidRing reports whether index names a ring.
func (b *Board) ValidRing(index int) bool {
	return index >= 0 && index < len(b.rings)
}

// ValidCell reports whether ref addresses a ring cell.
func (b *Board) ValidCell(ref Ref) bool {
	return b.ValidRing(ref.Ring) && ref.Cell >= 0 && ref.Cell < b.rings[ref.Ring].Size
}

// Valid reports whether ref addresses a ring cell or Center.
func (b *Board) Valid(ref Ref) bool {
	return ref == Center || b.ValidCell(ref)
}

// Cell returns the content of a ring cell.
func (b *Board) Cell(ref Ref) Cell {
	b.mustCell(ref)
	return b.cells[ref.Ring][ref.Cell]
}

// Refs lists every ring cell ordered by ring then index.
func (b *Board) Refs() []Ref {
	refs := make([]Ref, 0, b.CellCount())
	for ring, cells := range b.cells {
		for cell := range cells {
			refs = append(refs, Ref{Ring: ring, Cell: cell})
		}
	}
	return refs
}

// SetOccupant places a stone id on a ring cell; zero clears it.
func (b *Board) SetOccupant(ref Ref, stone int) {
	b.mustCell(ref)
	b.cells[ref.Ring][ref.Cell].Occupant = stone
}

// SetWall sets or clears the wall flag on a ring cell.
func (b *Board) SetWall(ref Ref, wall bool) {
	b.mustCell(ref)
	b.cells[ref.Ring][ref.Cell].Wall = wall
}

// SetBridge sets or clears the bridge flag on a ring cell.
func (b *Board) SetBridge(ref Ref, bridge bool) {
	b.mustCell(ref)
	b.cells[ref.Ring][ref.Cell].Bridge = bridge
}

// SetLocked sets or clears the lock flag on a ring.
func (b *Board) SetLocked(index int, locked bool) {
	b.mustRing(index)
	b.rings[index].Locked = locked
}

// SetOffset forces a ring offset, normalized into [0, size).
func (b *Board) SetOffset(index, offset int) {
	b.mustRing(index)
	size := b.rings[index].Size
	b.rings[index].Offset = ((offset % size) + size) % size
}

// Rotate advances a ring by one step in the given direction.
func (b *Board) Rotate(index int, direction Direction) error {
	b.mustRing(index)
	if !direction.Valid() {
		configurationPanic("invalid rotation direction %d", int(direction))
	}
	if b.rings[index].Locked {
		return ErrRingLocked
	}
	b.SetOffset(index, b.rings[index].Offset+int(direction))
	return nil
}

func (b *Board) mustRing(index int) {
	if !b.ValidRing(index) {
		configurationPanic("ring %d out of range", index)
	}
}

func (b *Board) mustCell(ref Ref) {
	if !b.ValidCell(ref) {
		configurationPanic("cell %s out of range", ref)
	}
}
