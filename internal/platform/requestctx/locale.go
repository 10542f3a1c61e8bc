// Package requestctx carries per-call values through context.
package requestctx

import "context"

type localeContextKey struct{}

type seatGrantContextKey struct{}

// WithLocale stores the caller's requested locale in context.
func WithLocale(ctx context.Context, locale string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, localeContextKey{}, locale)
}

// LocaleFromContext returns the requested locale, or "" when unset.
func LocaleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(localeContextKey{}).(string)
	return value
}

// WithSeatGrant stores a seat grant presented outside the request body.
func WithSeatGrant(ctx context.Context, grant string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, seatGrantContextKey{}, grant)
}

// SeatGrantFromContext returns the seat grant stored in context.
func SeatGrantFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(seatGrantContextKey{}).(string)
	return value
}
