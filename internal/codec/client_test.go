package codec

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type handlerFunc func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// serveFake registers handlers under ServiceName on an in-memory listener.
func serveFake(t *testing.T, handlers map[string]handlerFunc) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()

	desc := grpc.ServiceDesc{ServiceName: ServiceName, HandlerType: (*any)(nil)}
	for name, h := range handlers {
		h := h
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: name,
			Handler: func(_ any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				req := new(structpb.Struct)
				if err := dec(req); err != nil {
					return nil, err
				}
				return h(ctx, req)
			},
		})
	}
	srv.RegisterService(&desc, struct{}{})
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		srv.Stop()
	})
	return conn
}

func TestCodecClient_Embed(t *testing.T) {
	var gotText string
	conn := serveFake(t, map[string]handlerFunc{
		"Embed": func(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			gotText = req.Fields["text"].GetStringValue()
			return &structpb.Struct{Fields: map[string]*structpb.Value{
				"embedding": FloatList([]float32{0.5, -1, 2}),
			}}, nil
		},
	})
	c := NewCodecClientWithConn(conn, Options{EmbeddingDim: 3})

	emb, err := c.Embed(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, "hello there", gotText)
	assert.Equal(t, []float32{0.5, -1, 2}, emb)
	assert.Equal(t, 3, c.Dim())
}

func TestCodecClient_PredictProba(t *testing.T) {
	conn := serveFake(t, map[string]handlerFunc{
		"ClassifyIntent": func(context.Context, *structpb.Struct) (*structpb.Struct, error) {
			return &structpb.Struct{Fields: map[string]*structpb.Value{
				"probs": FloatList([]float32{0.25, 0.75}),
			}}, nil
		},
	})
	c := NewCodecClientWithConn(conn, Options{IntentClasses: 2})

	probs, err := c.PredictProba(context.Background(), "book a table")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.75}, probs)
}

func TestCodecClient_FillSlots(t *testing.T) {
	conn := serveFake(t, map[string]handlerFunc{
		"FillSlots": func(context.Context, *structpb.Struct) (*structpb.Struct, error) {
			return structpb.NewStruct(map[string]any{
				"slots": map[string]any{"food": "italian", "people": 4.0},
			})
		},
	})
	c := NewCodecClientWithConn(conn, Options{})

	slots, err := c.FillSlots(context.Background(), "italian for 4")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"food": "italian", "people": "4"}, slots)
}

func TestCodecClient_MissingField(t *testing.T) {
	conn := serveFake(t, map[string]handlerFunc{
		"Embed": func(context.Context, *structpb.Struct) (*structpb.Struct, error) {
			return &structpb.Struct{}, nil
		},
	})
	c := NewCodecClientWithConn(conn, Options{})

	_, err := c.Embed(context.Background(), "x")
	assert.ErrorContains(t, err, "embedding")
}

func TestCodecClient_UnimplementedMethod(t *testing.T) {
	conn := serveFake(t, map[string]handlerFunc{})
	c := NewCodecClientWithConn(conn, Options{})

	_, err := c.FillSlots(context.Background(), "x")
	assert.Error(t, err)
}

func TestGetInts(t *testing.T) {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{"ids": IntList([]int{3, 0, 7})}}
	ids, err := GetInts(s, "ids")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 0, 7}, ids)

	_, err = GetInts(s, "nope")
	assert.Error(t, err)
}

func TestCodecClient_Shutdown(t *testing.T) {
	called := false
	conn := serveFake(t, map[string]handlerFunc{
		"Shutdown": func(context.Context, *structpb.Struct) (*structpb.Struct, error) {
			called = true
			return &structpb.Struct{}, nil
		},
	})
	c := NewCodecClientWithConn(conn, Options{})

	require.NoError(t, c.Shutdown())
	assert.True(t, called)
}
