package coin

import (
	"fmt"
	"sort"

	"github.com/louisbranch/vorago/internal/services/vorago/domain/board"
)

// Catalog stores coins by id.
type Catalog struct {
	coins map[ID]Coin
}

// NewCatalog builds a catalog, rejecting duplicate ids.
func NewCatalog(coins ...Coin) (*Catalog, error) {
	c := &Catalog{coins: make(map[ID]Coin, len(coins))}
	for _, coin := range coins {
		if coin == nil {
			return nil, fmt.Errorf("coin is required")
		}
		if _, exists := c.coins[coin.ID()]; exists {
			return nil, fmt.Errorf("coin already registered: %s", coin.ID())
		}
		c.coins[coin.ID()] = coin
	}
	return c, nil
}

// Lookup returns the coin registered under id.
func (c *Catalog) Lookup(id ID) (Coin, bool) {
	if c == nil {
		return nil, false
	}
	coin, ok := c.coins[id]
	return coin, ok
}

// MustLookup returns the coin registered under id and panics with a
// ConfigurationError when it is unknown.
func (c *Catalog) MustLookup(id ID) Coin {
	coin, ok := c.Lookup(id)
	if !ok {
		panic(&ConfigurationError{Reason: fmt.Sprintf("unknown coin %q", id)})
	}
	return coin
}

// List returns every coin sorted by id.
func (c *Catalog) List() []Coin {
	if c == nil {
		return nil
	}
	out := make([]Coin, 0, len(c.coins))
	for _, coin := range c.coins {
		out = append(out, coin)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// IDs returns every coin id sorted.
func (c *Catalog) IDs() []ID {
	coins := c.List()
	ids := make([]ID, len(coins))
	for i, coin := range coins {
		ids[i] = coin.ID()
	}
	return ids
}

// Targets enumerates every target the coin accepts on b.
func Targets(b *board.Board, coin Coin) []Target {
	var candidates []Target
	switch coin.TargetKind() {
	case TargetCell:
		for _, ref := range b.Refs() {
			candidates = append(candidates, Target{Cell: ref})
		}
	case TargetRing:
		for ring := 0; ring < board.RingCount; ring++ {
			candidates = append(candidates, Target{Ring: ring})
		}
	case TargetRingDirection:
		for ring := 0; ring < board.RingCount; ring++ {
			candidates = append(candidates,
				Target{Ring: ring, Direction: board.Clockwise},
				Target{Ring: ring, Direction: board.CounterClockwise},
			)
		}
	}
	out := candidates[:0]
	for _, target := range candidates {
		if coin.Validate(b, target) == nil {
			out = append(out, target)
		}
	}
	return out
}
