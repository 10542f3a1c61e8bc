// Package ai implements the Vorago opponent.
//
// The AI issues the same commands a human does and never touches game state
// directly. Difficulty only changes how a Strategy picks among the moves and
// ability uses the game reports as legal.
package ai
