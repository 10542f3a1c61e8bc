// Package coin defines the Vorago ability catalog.
//
// A coin is a stateless rule: an applicability predicate over the board, a
// target validator, a pure effect and a cooldown measured in rounds. Coins are
// not owned by players; the game tracks per player which coins are disabled.
// The catalog is closed: adding an ability means adding one Spec to
// DefaultCatalog, and nothing outside this package dispatches on coin ids.
package coin
