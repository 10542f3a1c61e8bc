package coin

import (
	"fmt"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
	"github.com/louisbranch/vorago/internal/services/vorago/domain/command"
)

const (
	PlaceWall    ID = "place_wall"
	RemoveWall   ID = "remove_wall"
	PlaceBridge  ID = "place_bridge"
	RemoveBridge ID = "remove_bridge"
	LockRing     ID = "lock_ring"
	UnlockRing   ID = "unlock_ring"
	RotateRing   ID = "rotate_ring"
)

const (
	RejectionTargetOccupied    = "TARGET_OCCUPIED"
	RejectionCellWalled        = "CELL_WALLED"
	RejectionCellBridged       = "CELL_BRIDGED"
	RejectionCellNotWalled     = "CELL_NOT_WALLED"
	RejectionCellNotBridged    = "CELL_NOT_BRIDGED"
	RejectionRingLocked        = "RING_LOCKED"
	RejectionRingNotLocked     = "RING_NOT_LOCKED"
	RejectionBridgeRingInvalid = "BRIDGE_RING_INVALID"
)

// lockCooldown keeps a lock from being chained every round by the same player.
const lockCooldown = 2

// lastBridgeRing is the innermost ring that can carry a bridge; ring 3
// bridges lead to Center.
const lastBridgeRing = board.RingCount - 2

// DefaultCatalog returns the standard Vorago abilities.
func DefaultCatalog() *Catalog {
	specs := []Spec{
		{
			ID:         PlaceWall,
			Kind:       KindWall,
			TargetKind: TargetCell,
			Applicable: func(b *board.Board) bool { return anyCell(b, canHoldFeature) },
			Validate: func(b *board.Board, t Target) *command.Rejection {
				return checkFeatureTarget(b, t.Cell)
			},
			Effect: func(b *board.Board, t Target) { b.SetWall(t.Cell, true) },
		},
		{
			ID:         RemoveWall,
			Kind:       KindWall,
			TargetKind: TargetCell,
			Applicable: func(b *board.Board) bool {
				return anyCell(b, func(c board.Cell, _ board.Ref) bool { return c.Wall })
			},
			Validate: func(b *board.Board, t Target) *command.Rejection {
				if !b.Cell(t.Cell).Wall {
					return violation(RejectionCellNotWalled, "%s has no wall", t.Cell)
				}
				return nil
			},
			Effect: func(b *board.Board, t Target) { b.SetWall(t.Cell, false) },
		},
		{
			ID:         PlaceBridge,
			Kind:       KindBridge,
			TargetKind: TargetCell,
			Applicable: func(b *board.Board) bool {
				return anyCell(b, func(c board.Cell, ref board.Ref) bool {
					return ref.Ring <= lastBridgeRing && canHoldFeature(c, ref)
				})
			},
			Validate: func(b *board.Board, t Target) *command.Rejection {
				if rejection := checkFeatureTarget(b, t.Cell); rejection != nil {
					return rejection
				}
				if t.Cell.Ring > lastBridgeRing {
					return violation(RejectionBridgeRingInvalid, "bridges cannot be placed on ring %d", t.Cell.Ring)
				}
				return nil
			},
			Effect: func(b *board.Board, t Target) { b.SetBridge(t.Cell, true) },
		},
		{
			ID:         RemoveBridge,
			Kind:       KindBridge,
			TargetKind: TargetCell,
			Applicable: func(b *board.Board) bool {
				return anyCell(b, func(c board.Cell, _ board.Ref) bool { return c.Bridge })
			},
			Validate: func(b *board.Board, t Target) *command.Rejection {
				if !b.Cell(t.Cell).Bridge {
					return violation(RejectionCellNotBridged, "%s has no bridge", t.Cell)
				}
				return nil
			},
			Effect: func(b *board.Board, t Target) { b.SetBridge(t.Cell, false) },
		},
		{
			ID:         LockRing,
			Kind:       KindLock,
			TargetKind: TargetRing,
			Cooldown:   lockCooldown,
			Applicable: func(b *board.Board) bool { return anyRing(b, false) },
			Validate: func(b *board.Board, t Target) *command.Rejection {
				if b.Ring(t.Ring).Locked {
					return violation(RejectionRingLocked, "ring %d is already locked", t.Ring)
				}
				return nil
			},
			Effect: func(b *board.Board, t Target) { b.SetLocked(t.Ring, true) },
		},
		{
			ID:         UnlockRing,
			Kind:       KindLock,
			TargetKind: TargetRing,
			Applicable: func(b *board.Board) bool { return anyRing(b, true) },
			Validate: func(b *board.Board, t Target) *command.Rejection {
				if !b.Ring(t.Ring).Locked {
					return violation(RejectionRingNotLocked, "ring %d is not locked", t.Ring)
				}
				return nil
			},
			Effect: func(b *board.Board, t Target) { b.SetLocked(t.Ring, false) },
		},
		{
			ID:         RotateRing,
			Kind:       KindRotation,
			TargetKind: TargetRingDirection,
			Applicable: func(b *board.Board) bool { return anyRing(b, false) },
			Validate: func(b *board.Board, t Target) *command.Rejection {
				if b.Ring(t.Ring).Locked {
					return violation(RejectionRingLocked, "ring %d is locked", t.Ring)
				}
				return nil
			},
			Effect: func(b *board.Board, t Target) {
				if err := b.Rotate(t.Ring, t.Direction); err != nil {
					panic(&ConfigurationError{Reason: fmt.Sprintf("rotate validated ring %d: %v", t.Ring, err)})
				}
			},
		},
	}

	coins := make([]Coin, 0, len(specs))
	for _, spec := range specs {
		coin, err := Define(spec)
		if err != nil {
			panic(&ConfigurationError{Reason: err.Error()})
		}
		coins = append(coins, coin)
	}
	catalog, err := NewCatalog(coins...)
	if err != nil {
		panic(&ConfigurationError{Reason: err.Error()})
	}
	return catalog
}

// canHoldFeature reports whether a wall or bridge may be placed on a cell.
// A cell never carries both, and features are never dropped under a stone.
func canHoldFeature(c board.Cell, _ board.Ref) bool {
	return c.Empty() && !c.Wall && !c.Bridge
}

func checkFeatureTarget(b *board.Board, ref board.Ref) *command.Rejection {
	cell := b.Cell(ref)
	switch {
	case !cell.Empty():
		return violation(RejectionTargetOccupied, "%s is occupied", ref)
	case cell.Wall:
		return violation(RejectionCellWalled, "%s already has a wall", ref)
	case cell.Bridge:
		return violation(RejectionCellBridged, "%s already has a bridge", ref)
	}
	return nil
}

func anyCell(b *board.Board, match func(board.Cell, board.Ref) bool) bool {
	for _, ref := range b.Refs() {
		if match(b.Cell(ref), ref) {
			return true
		}
	}
	return false
}

func anyRing(b *board.Board, locked bool) bool {
	for _, ring := range b.Rings() {
		if ring.Locked == locked {
			return true
		}
	}
	return false
}

func violation(code, format string, args ...any) *command.Rejection {
	rejection := command.Violation(code, fmt.Sprintf(format, args...))
	return &rejection
}
