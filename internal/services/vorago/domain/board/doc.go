// Package board models the Vorago ring topology.
//
// The board is five concentric rings (0 outer, 4 inner) around a terminal
// Center. Each ring has a fixed number of cells and an independent rotation
// offset. Rotation never changes cell identity; it only changes which cells of
// neighboring rings line up.
//
// Alignment is computed on a circle split into 32 angular units, the least
// common multiple of every supported ring size. Two cells on adjacent rings are
// aligned when their spans share at least one unit; touching edges do not
// count.
//
// The package holds:
//   - construction of the cell table from a ring-size configuration,
//   - neighbor and reachability queries under rotation, walls and bridges,
//   - the low-level mutators used by the game command processor.
package board
