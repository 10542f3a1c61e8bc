// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Command rejections surfaced from the game engine. The rejection code is
	// carried in the "reason" metadata entry.
	CodeInvalidCommand Code = "INVALID_COMMAND"
	CodeRuleViolation  Code = "RULE_VIOLATION"

	// Request errors
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeUnknownCommand   Code = "UNKNOWN_COMMAND"
	CodeUnknownAbility   Code = "UNKNOWN_ABILITY"
	CodeFilterInvalid    Code = "FILTER_INVALID"
	CodePageTokenInvalid Code = "PAGE_TOKEN_INVALID"

	// Game errors
	CodeGameNotFound    Code = "GAME_NOT_FOUND"
	CodeGameExists      Code = "GAME_ALREADY_EXISTS"
	CodeSnapshotInvalid Code = "SNAPSHOT_INVALID"
	CodeAITurnFailed    Code = "AI_TURN_FAILED"

	// Seat grant errors
	CodeSeatGrantMissing  Code = "SEAT_GRANT_MISSING"
	CodeSeatGrantInvalid  Code = "SEAT_GRANT_INVALID"
	CodeSeatGrantExpired  Code = "SEAT_GRANT_EXPIRED"
	CodeSeatGrantMismatch Code = "SEAT_GRANT_MISMATCH"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - malformed input or commands the engine never accepts
	case CodeInvalidCommand,
		CodeInvalidRequest,
		CodeUnknownCommand,
		CodeUnknownAbility,
		CodeFilterInvalid,
		CodePageTokenInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - game state doesn't allow the command
	case CodeRuleViolation:
		return codes.FailedPrecondition

	case CodeGameNotFound:
		return codes.NotFound

	case CodeGameExists:
		return codes.AlreadyExists

	case CodeSeatGrantMissing,
		CodeSeatGrantInvalid,
		CodeSeatGrantExpired:
		return codes.Unauthenticated

	case CodeSeatGrantMismatch:
		return codes.PermissionDenied

	case CodeSnapshotInvalid:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}
