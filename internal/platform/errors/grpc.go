package errors

import (
	"errors"

	"github.com/louisbranch/vorago/internal/platform/i18n"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultLocale is the default locale for error messages.
const DefaultLocale = i18n.BaseLocale

// HandleError converts domain errors to gRPC status for client responses.
// The user-facing message comes from the rejection catalog when the error
// carries an engine reason, otherwise from the error catalog keyed by code.
// Existing gRPC statuses pass through; anything else becomes a generic
// Internal status.
func HandleError(err error, locale string) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		if _, ok := status.FromError(err); ok {
			return err
		}
		return status.Error(codes.Internal, "an unexpected error occurred")
	}

	bundle := i18n.Default()
	resolved := bundle.Match(locale)
	userMsg, ok := "", false
	if reason := appErr.Reason(); reason != "" {
		userMsg, ok = bundle.Format(resolved, i18n.NamespaceRejections, reason, appErr.Metadata)
	}
	if !ok {
		userMsg, ok = bundle.Format(resolved, i18n.NamespaceErrors, string(appErr.Code), appErr.Metadata)
	}
	if !ok {
		userMsg = string(appErr.Code)
	}
	return appErr.ToGRPCStatus(resolved, userMsg)
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata extracts metadata from an error if present.
// Returns nil if the error is not a domain error or has no metadata.
func GetMetadata(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Metadata
	}
	return nil
}
