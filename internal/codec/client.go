package codec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region client-struct
// EvaluatorClient wraps the gRPC connection to a remote evaluator.
type EvaluatorClient struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}
// #endregion client-struct

// #region constructor
// NewEvaluatorClient connects to an evaluator gRPC server.
func NewEvaluatorClient(addr string) (*EvaluatorClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &EvaluatorClient{conn: conn, cc: conn}, nil
}

// NewEvaluatorClientWithConn creates a client over an existing connection.
// Close does not close cc.
func NewEvaluatorClientWithConn(cc grpc.ClientConnInterface) *EvaluatorClient {
	return &EvaluatorClient{cc: cc}
}
// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *EvaluatorClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region compare
// Compare sends a trajectory pair to the evaluator.
func (c *EvaluatorClient) Compare(ctx context.Context, req Request) (Response, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, compareMethod, EncodeRequest(req), out); err != nil {
		return Response{}, fmt.Errorf("compare rpc: %w", err)
	}
	resp, err := DecodeResponse(out)
	if err != nil {
		return Response{}, fmt.Errorf("compare rpc: %w", err)
	}
	return resp, nil
}
// #endregion compare
