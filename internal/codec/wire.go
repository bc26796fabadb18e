package codec

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/trajeval/internal/eval"
	"github.com/danielpatrickdp/trajeval/internal/toolcall"
	"github.com/danielpatrickdp/trajeval/internal/value"
)

// #region types
// Request asks the evaluator to compare two trajectories.
type Request struct {
	Scenario  string
	Baseline  toolcall.Trajectory
	Candidate toolcall.Trajectory
	Status    eval.ExecutionStatus
}

// InvocationSummary is one aligned position of a response.
type InvocationSummary struct {
	Position   int
	Kind       string
	Similarity float64
	Detail     string
}

// Response carries the verdict and gate decision of one comparison.
type Response struct {
	Scenario    string
	RawScore    float64
	FinalScore  float64
	Label       eval.Label
	Passed      bool
	Vetoed      bool
	Reason      string
	Invocations []InvocationSummary
}
// #endregion types

// #region encode
// EncodeRequest converts r into its google.protobuf.Struct wire form.
func EncodeRequest(r Request) *structpb.Struct {
	missing := make([]*structpb.Value, len(r.Status.MissingTools))
	for i, name := range r.Status.MissingTools {
		missing[i] = structpb.NewStringValue(name)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"scenario":  structpb.NewStringValue(r.Scenario),
		"baseline":  encodeTrajectory(r.Baseline),
		"candidate": encodeTrajectory(r.Candidate),
		"status": structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"had_error":          structpb.NewBoolValue(r.Status.HadError),
			"missing_tools":      structpb.NewListValue(&structpb.ListValue{Values: missing}),
			"critical_op_failed": structpb.NewBoolValue(r.Status.CriticalOpFailed),
		}}),
	}}
}

func encodeTrajectory(t toolcall.Trajectory) *structpb.Value {
	items := make([]*structpb.Value, len(t))
	for i, inv := range t {
		items[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"name": structpb.NewStringValue(inv.Name),
			"args": structpb.NewStructValue(value.ToProtoStruct(inv.Args)),
		}})
	}
	return structpb.NewListValue(&structpb.ListValue{Values: items})
}

// EncodeResponse converts r into its google.protobuf.Struct wire form.
func EncodeResponse(r Response) *structpb.Struct {
	items := make([]*structpb.Value, len(r.Invocations))
	for i, inv := range r.Invocations {
		items[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"position":   structpb.NewNumberValue(float64(inv.Position)),
			"kind":       structpb.NewStringValue(inv.Kind),
			"similarity": structpb.NewNumberValue(inv.Similarity),
			"detail":     structpb.NewStringValue(inv.Detail),
		}})
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"scenario":    structpb.NewStringValue(r.Scenario),
		"raw_score":   structpb.NewNumberValue(r.RawScore),
		"final_score": structpb.NewNumberValue(r.FinalScore),
		"label":       structpb.NewStringValue(string(r.Label)),
		"passed":      structpb.NewBoolValue(r.Passed),
		"vetoed":      structpb.NewBoolValue(r.Vetoed),
		"reason":      structpb.NewStringValue(r.Reason),
		"invocations": structpb.NewListValue(&structpb.ListValue{Values: items}),
	}}
}
// #endregion encode

// #region decode
// DecodeRequest parses the wire form of a request.
func DecodeRequest(s *structpb.Struct) (Request, error) {
	f := s.GetFields()
	var r Request
	var err error

	r.Scenario = f["scenario"].GetStringValue()
	if r.Baseline, err = decodeTrajectory(f["baseline"]); err != nil {
		return Request{}, fmt.Errorf("decode baseline: %w", err)
	}
	if r.Candidate, err = decodeTrajectory(f["candidate"]); err != nil {
		return Request{}, fmt.Errorf("decode candidate: %w", err)
	}

	st := f["status"].GetStructValue().GetFields()
	r.Status.HadError = st["had_error"].GetBoolValue()
	r.Status.CriticalOpFailed = st["critical_op_failed"].GetBoolValue()
	for i, v := range st["missing_tools"].GetListValue().GetValues() {
		name, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return Request{}, fmt.Errorf("decode status: missing_tools[%d] is not a string", i)
		}
		r.Status.MissingTools = append(r.Status.MissingTools, name.StringValue)
	}
	return r, nil
}

func decodeTrajectory(v *structpb.Value) (toolcall.Trajectory, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("trajectory is not a list")
	}
	out := make(toolcall.Trajectory, 0, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		obj, ok := item.GetKind().(*structpb.Value_StructValue)
		if !ok {
			return nil, fmt.Errorf("invocation %d is not an object", i)
		}
		fields := obj.StructValue.GetFields()
		name := fields["name"].GetStringValue()
		if name == "" {
			return nil, fmt.Errorf("invocation %d has no name", i)
		}
		out = append(out, toolcall.Invocation{
			Name: name,
			Args: value.FromProtoStruct(fields["args"].GetStructValue()),
		})
	}
	return out, nil
}

// DecodeResponse parses the wire form of a response.
func DecodeResponse(s *structpb.Struct) (Response, error) {
	f := s.GetFields()
	r := Response{
		Scenario:   f["scenario"].GetStringValue(),
		RawScore:   f["raw_score"].GetNumberValue(),
		FinalScore: f["final_score"].GetNumberValue(),
		Label:      eval.Label(f["label"].GetStringValue()),
		Passed:     f["passed"].GetBoolValue(),
		Vetoed:     f["vetoed"].GetBoolValue(),
		Reason:     f["reason"].GetStringValue(),
	}
	if r.Label == "" {
		return Response{}, fmt.Errorf("decode response: missing label")
	}
	for i, v := range f["invocations"].GetListValue().GetValues() {
		obj := v.GetStructValue()
		if obj == nil {
			return Response{}, fmt.Errorf("decode response: invocation %d is not an object", i)
		}
		inv := obj.GetFields()
		r.Invocations = append(r.Invocations, InvocationSummary{
			Position:   int(inv["position"].GetNumberValue()),
			Kind:       inv["kind"].GetStringValue(),
			Similarity: inv["similarity"].GetNumberValue(),
			Detail:     inv["detail"].GetStringValue(),
		})
	}
	return r, nil
}
// #endregion decode
