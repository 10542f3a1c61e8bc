package vorago

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls vorago.v1.VoragoService.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CreateGameMethod, in, opts...)
}

func (c *Client) GetGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetGameMethod, in, opts...)
}

func (c *Client) Execute(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ExecuteMethod, in, opts...)
}

func (c *Client) ListGames(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ListGamesMethod, in, opts...)
}

// Call invokes method with a request built from plain Go values, as decoded
// from JSON.
func (c *Client) Call(ctx context.Context, method string, request map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(request)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.invoke(ctx, method, in)
}

// WithLocale asks the server to localize error messages.
func WithLocale(ctx context.Context, locale string) context.Context {
	if locale == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, LocaleHeader, locale)
}

// WithSeatGrant attaches a seat grant as request metadata.
func WithSeatGrant(ctx context.Context, grant string) context.Context {
	if grant == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, SeatGrantHeader, grant)
}
