package codec

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/trajeval/internal/config"
	"github.com/danielpatrickdp/trajeval/internal/eval"
	"github.com/danielpatrickdp/trajeval/internal/toolcall"
	"github.com/danielpatrickdp/trajeval/internal/value"
)

// #region helpers
func startServer(t *testing.T) *EvaluatorClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterEvaluatorServer(srv, NewServer(config.Default(), nil, nil))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewEvaluatorClientWithConn(conn)
}

func searchTrajectory(query string) toolcall.Trajectory {
	return toolcall.Trajectory{
		toolcall.New("mcp__proxy__retrieve_tools", map[string]any{"query": query}),
		toolcall.New("mcp__proxy__call_tool", map[string]any{"name": "weather:get_forecast", "args": map[string]any{"days": 3}}),
	}
}
// #endregion helpers

// #region wire-tests
func TestRequestWireForm(t *testing.T) {
	req := Request{
		Scenario:  "search",
		Baseline:  searchTrajectory("weather"),
		Candidate: searchTrajectory("weather forecast")[:1],
		Status:    eval.ExecutionStatus{HadError: true, MissingTools: []string{"mcp__proxy__call_tool"}},
	}

	got, err := DecodeRequest(EncodeRequest(req))
	require.NoError(t, err)
	assert.Equal(t, "search", got.Scenario)
	assert.Equal(t, req.Status, got.Status)
	require.Len(t, got.Baseline, 2)
	require.Len(t, got.Candidate, 1)
	assert.True(t, got.Baseline[1].Equal(req.Baseline[1]))
	days, ok := got.Baseline[1].Args["args"].Get("days")
	require.True(t, ok)
	assert.True(t, value.Equal(days, value.Number(3)))
}

func TestDecodeRequestRejectsMalformed(t *testing.T) {
	cases := map[string]*structpb.Struct{
		"baseline not list": {Fields: map[string]*structpb.Value{
			"baseline": structpb.NewStringValue("x"),
		}},
		"nameless invocation": {Fields: map[string]*structpb.Value{
			"candidate": structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{
				structpb.NewStructValue(&structpb.Struct{}),
			}}),
		}},
		"missing tool not string": {Fields: map[string]*structpb.Value{
			"status": structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
				"missing_tools": structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{structpb.NewNumberValue(1)}}),
			}}),
		}},
	}
	for name, s := range cases {
		_, err := DecodeRequest(s)
		assert.Error(t, err, name)
	}
}

func TestDecodeResponseRequiresLabel(t *testing.T) {
	_, err := DecodeResponse(&structpb.Struct{})
	require.Error(t, err)
}
// #endregion wire-tests

// #region rpc-tests
func TestCompareOverGRPC(t *testing.T) {
	client := startServer(t)

	resp, err := client.Compare(context.Background(), Request{
		Scenario:  "search",
		Baseline:  searchTrajectory("weather"),
		Candidate: searchTrajectory("weather"),
	})
	require.NoError(t, err)
	assert.Equal(t, "search", resp.Scenario)
	assert.Equal(t, 1.0, resp.FinalScore)
	assert.Equal(t, eval.LabelGood, resp.Label)
	assert.True(t, resp.Passed)
	require.Len(t, resp.Invocations, 2)
	assert.Equal(t, "EXACT MATCH", resp.Invocations[0].Detail)
	assert.Equal(t, 1, resp.Invocations[1].Position)
}

func TestCompareOverGRPC_MissingToolVeto(t *testing.T) {
	client := startServer(t)

	resp, err := client.Compare(context.Background(), Request{
		Scenario:  "search",
		Baseline:  searchTrajectory("weather"),
		Candidate: searchTrajectory("weather")[:1],
		Status:    eval.ExecutionStatus{MissingTools: []string{"mcp__proxy__call_tool"}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.3, resp.FinalScore, 1e-9)
	assert.False(t, resp.Passed)
	assert.True(t, resp.Vetoed)
	assert.Equal(t, "missing", resp.Invocations[1].Kind)
}

func TestCompareOverGRPC_InvalidArgument(t *testing.T) {
	client := startServer(t)

	out := new(structpb.Struct)
	err := client.cc.Invoke(context.Background(), compareMethod, &structpb.Struct{Fields: map[string]*structpb.Value{
		"baseline": structpb.NewBoolValue(true),
	}}, out)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestNewEvaluatorClientLazyDial(t *testing.T) {
	client, err := NewEvaluatorClient("localhost:0")
	require.NoError(t, err)
	require.NoError(t, client.Close())

	assert.NoError(t, NewEvaluatorClientWithConn(nil).Close())
}
// #endregion rpc-tests
