package value

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// #region to-proto
// ToProto converts v into a google.protobuf.Value. List-flagged objects become
// ListValues so the wire form matches the original JSON shape.
func ToProto(v Value) *structpb.Value {
	switch v.kind {
	case KindString:
		return structpb.NewStringValue(v.str)
	case KindNumber:
		return structpb.NewNumberValue(v.num)
	case KindBool:
		return structpb.NewBoolValue(v.flag)
	case KindObject:
		if v.list {
			items := v.Items()
			values := make([]*structpb.Value, len(items))
			for i, it := range items {
				values[i] = ToProto(it)
			}
			return structpb.NewListValue(&structpb.ListValue{Values: values})
		}
		return structpb.NewStructValue(ToProtoStruct(v.fields))
	default:
		return structpb.NewNullValue()
	}
}

// ToProtoStruct converts an argument map into a google.protobuf.Struct.
func ToProtoStruct(m map[string]Value) *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(m))
	for k, v := range m {
		fields[k] = ToProto(v)
	}
	return &structpb.Struct{Fields: fields}
}

// #endregion to-proto

// #region from-proto
// FromProto converts a google.protobuf.Value. A nil value or unset kind is Null.
func FromProto(pv *structpb.Value) Value {
	if pv == nil {
		return Null()
	}
	switch k := pv.GetKind().(type) {
	case *structpb.Value_StringValue:
		return String(k.StringValue)
	case *structpb.Value_NumberValue:
		return Number(k.NumberValue)
	case *structpb.Value_BoolValue:
		return Bool(k.BoolValue)
	case *structpb.Value_StructValue:
		return Value{kind: KindObject, fields: FromProtoStruct(k.StructValue)}
	case *structpb.Value_ListValue:
		values := k.ListValue.GetValues()
		items := make([]Value, len(values))
		for i, it := range values {
			items[i] = FromProto(it)
		}
		return List(items...)
	default:
		return Null()
	}
}

// FromProtoStruct converts a google.protobuf.Struct into an argument map.
func FromProtoStruct(s *structpb.Struct) map[string]Value {
	fields := s.GetFields()
	out := make(map[string]Value, len(fields))
	for k, v := range fields {
		out[k] = FromProto(v)
	}
	return out
}

// #endregion from-proto
