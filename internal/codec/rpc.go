package codec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region dial
// Dial opens an insecure client connection to a Python-side gRPC service.
// Payloads are google.protobuf.Struct messages, so no generated stubs are needed.
func Dial(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return conn, nil
}

// #endregion dial

// #region call
// Call performs one unary RPC "/<service>/<method>" with Struct payloads.
func Call(ctx context.Context, cc grpc.ClientConnInterface, service, method string, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	resp := new(structpb.Struct)
	if err := cc.Invoke(ctx, "/"+service+"/"+method, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// #endregion call

// #region payload-helpers
// FloatList encodes a float32 vector as a Struct list value.
func FloatList(v []float32) *structpb.Value {
	vals := make([]*structpb.Value, len(v))
	for i, f := range v {
		vals[i] = structpb.NewNumberValue(float64(f))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: vals})
}

// FloatMatrix encodes a list of vectors.
func FloatMatrix(rows [][]float32) *structpb.Value {
	vals := make([]*structpb.Value, len(rows))
	for i, r := range rows {
		vals[i] = FloatList(r)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: vals})
}

// IntList encodes integer ids.
func IntList(v []int) *structpb.Value {
	vals := make([]*structpb.Value, len(v))
	for i, n := range v {
		vals[i] = structpb.NewNumberValue(float64(n))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: vals})
}

// GetFloats decodes field key of s as a float32 vector.
func GetFloats(s *structpb.Struct, key string) ([]float32, error) {
	list, err := getList(s, key)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(list.Values))
	for i, v := range list.Values {
		n, ok := v.Kind.(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("field %q[%d]: expected number", key, i)
		}
		out[i] = float32(n.NumberValue)
	}
	return out, nil
}

// GetInts decodes field key of s as integer ids.
func GetInts(s *structpb.Struct, key string) ([]int, error) {
	fs, err := GetFloats(s, key)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(fs))
	for i, f := range fs {
		out[i] = int(f)
	}
	return out, nil
}

// GetNumber decodes field key of s as a number.
func GetNumber(s *structpb.Struct, key string) (float64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	n, ok := v.Kind.(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("field %q: expected number", key)
	}
	return n.NumberValue, nil
}

// GetBool decodes field key of s as a bool; a missing field is false.
func GetBool(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

// GetStringMap decodes an object field with scalar values into strings.
func GetStringMap(s *structpb.Struct, key string) (map[string]string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return map[string]string{}, nil
	}
	obj := v.GetStructValue()
	if obj == nil {
		return nil, fmt.Errorf("field %q: expected object", key)
	}
	out := make(map[string]string, len(obj.Fields))
	for k, fv := range obj.Fields {
		switch x := fv.Kind.(type) {
		case *structpb.Value_StringValue:
			out[k] = x.StringValue
		case *structpb.Value_NumberValue:
			out[k] = fmt.Sprint(x.NumberValue)
		case *structpb.Value_BoolValue:
			out[k] = fmt.Sprint(x.BoolValue)
		default:
			return nil, fmt.Errorf("field %q.%s: expected scalar", key, k)
		}
	}
	return out, nil
}

func getList(s *structpb.Struct, key string) (*structpb.ListValue, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, fmt.Errorf("missing field %q", key)
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("field %q: expected list", key)
	}
	return list, nil
}

// #endregion payload-helpers
