package vorago

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/louisbranch/vorago/internal/platform/requestctx"
)

// LocaleHeader is the gRPC metadata key for the caller's preferred locale.
const LocaleHeader = "x-vorago-locale"

// AcceptLanguageHeader is consulted when LocaleHeader is absent.
const AcceptLanguageHeader = "accept-language"

// SeatGrantHeader carries a seat grant for callers that keep it out of the
// request body.
const SeatGrantHeader = "x-vorago-seat-grant"

// IsPrintableASCII reports whether a string contains only printable ASCII characters.
func IsPrintableASCII(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] > 0x7e {
			return false
		}
	}
	return true
}

// FirstMetadataValue returns the first printable value stored under key.
func FirstMetadataValue(md metadata.MD, key string) string {
	for mdKey, values := range md {
		if !strings.EqualFold(mdKey, key) {
			continue
		}
		for _, value := range values {
			if value != "" && IsPrintableASCII(value) {
				return value
			}
		}
	}
	return ""
}

// UnaryServerInterceptor copies locale and seat grant headers into the
// request context.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(withRequestMetadata(ctx), req)
	}
}

func withRequestMetadata(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}
	locale := FirstMetadataValue(md, LocaleHeader)
	if locale == "" {
		locale = FirstMetadataValue(md, AcceptLanguageHeader)
	}
	if locale != "" {
		ctx = requestctx.WithLocale(ctx, locale)
	}
	if grant := FirstMetadataValue(md, SeatGrantHeader); grant != "" {
		ctx = requestctx.WithSeatGrant(ctx, grant)
	}
	return ctx
}
