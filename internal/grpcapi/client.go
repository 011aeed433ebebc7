package grpcapi

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

// Client is what a terminal (or the CLI) uses to ask for decisions.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Evaluate(ctx context.Context, req types.AccessRequest, opts ...grpc.CallOption) (types.AccessResponse, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, evaluateMethod, accessRequestToStruct(req), out, opts...); err != nil {
		return types.AccessResponse{}, err
	}
	return accessResponseFromStruct(out), nil
}

func (c *Client) Now(ctx context.Context, opts ...grpc.CallOption) (time.Time, error) {
	out := new(timestamppb.Timestamp)
	if err := c.cc.Invoke(ctx, nowMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return time.Time{}, err
	}
	return out.AsTime(), nil
}
