package domain

import (
	"fmt"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// ToolError is returned to MCP clients when the game service refuses a call.
type ToolError struct {
	Action string
	// Reason is the ErrorInfo reason, usually an engine rejection code.
	Reason  string
	Message string
	// Metadata mirrors ErrorInfo metadata, for example available_round.
	Metadata map[string]string
}

func (e *ToolError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s failed: %s", e.Action, e.Message)
	}
	return fmt.Sprintf("%s failed: %s (%s)", e.Action, e.Message, e.Reason)
}

// toolError prefers the localized message from the status details.
func toolError(action string, err error) error {
	action = strings.TrimSpace(action)
	if action == "" {
		action = "call"
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%s failed: %w", action, err)
	}
	out := &ToolError{Action: action, Message: st.Message()}
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			out.Reason = d.GetReason()
			out.Metadata = d.GetMetadata()
		case *errdetails.LocalizedMessage:
			if msg := strings.TrimSpace(d.GetMessage()); msg != "" {
				out.Message = msg
			}
		}
	}
	return out
}
