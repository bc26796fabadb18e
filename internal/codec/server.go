package codec

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/trajeval/internal/config"
	"github.com/danielpatrickdp/trajeval/internal/metrics"
	"github.com/danielpatrickdp/trajeval/internal/replay"
)

// #region service-desc
const (
	ServiceName   = "trajeval.v1.Evaluator"
	compareMethod = "/" + ServiceName + "/Compare"
)

// EvaluatorServer is the server API of the Evaluator service.
type EvaluatorServer interface {
	Compare(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// EvaluatorServiceDesc describes the Evaluator service. Messages are
// google.protobuf.Struct so no generated code is needed.
var EvaluatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Compare", Handler: compareHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "trajeval/v1/evaluator.proto",
}

// RegisterEvaluatorServer registers srv on s.
func RegisterEvaluatorServer(s grpc.ServiceRegistrar, srv EvaluatorServer) {
	s.RegisterService(&EvaluatorServiceDesc, srv)
}

func compareHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluatorServer).Compare(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: compareMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EvaluatorServer).Compare(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
// #endregion service-desc

// #region server
// Server evaluates trajectory pairs sent over gRPC.
type Server struct {
	config   config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewServer creates a server. Nil logger and recorder are replaced by no-ops.
func NewServer(cfg config.Config, logger *slog.Logger, recorder metrics.Recorder) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &Server{config: cfg, logger: logger, recorder: recorder}
}

// Compare implements EvaluatorServer.
func (s *Server) Compare(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	start := time.Now()
	req, err := DecodeRequest(in)
	if err != nil {
		s.recorder.ObserveError(in.GetFields()["scenario"].GetStringValue())
		return nil, status.Errorf(codes.InvalidArgument, "compare: %v", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	resp := s.Evaluate(req)
	elapsed := time.Since(start)
	s.recorder.ObserveEvaluation(req.Scenario, string(resp.Label), resp.FinalScore, elapsed)
	action := "fail"
	if resp.Passed {
		action = "pass"
	}
	s.recorder.ObserveGate(req.Scenario, action, resp.Vetoed)
	s.logger.Info("compare",
		"scenario", req.Scenario,
		"final_score", resp.FinalScore,
		"label", resp.Label,
		"passed", resp.Passed,
		"duration", elapsed,
	)
	return EncodeResponse(resp), nil
}

// Evaluate runs the comparison pipeline for a decoded request.
func (s *Server) Evaluate(req Request) Response {
	c := replay.CompareTrajectories(req.Baseline, req.Candidate, req.Status, s.config)
	resp := Response{
		Scenario:   req.Scenario,
		RawScore:   c.Verdict.RawScore,
		FinalScore: c.Verdict.FinalScore,
		Label:      c.Verdict.Label,
		Passed:     c.Passed(),
		Vetoed:     c.Gate.Vetoed,
		Reason:     c.Gate.Reason,
	}
	for _, inv := range c.Trajectory.PerInvocation {
		resp.Invocations = append(resp.Invocations, InvocationSummary{
			Position:   inv.Position,
			Kind:       string(inv.Kind),
			Similarity: inv.Similarity,
			Detail:     inv.Describe(),
		})
	}
	return resp
}
// #endregion server
