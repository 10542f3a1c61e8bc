// Package game implements the Vorago aggregate, its command processor and the
// turn controller.
//
// A Game is the only owner of board, stone, cooldown and turn state. Every
// mutation goes through one of its command methods, which validate first and
// then transform. Commands return a command.Decision: accepted decisions list
// the effects that happened, rejected decisions leave the game untouched.
//
// Turn flow:
//
//	AwaitingActions --(move and ability, any order)--> TurnComplete --> next player
//	any state --(third stone reaches Center)--> Win (terminal)
//
// The turn ends automatically once both actions are done unless
// Options.ManualTurnEnd is set, in which case EndTurn must be called.
package game
