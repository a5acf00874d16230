package codec

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/gobot/internal/nlp"
)

// ServiceName is the fully qualified gRPC service of the NLP sidecar.
const ServiceName = "gobot.NLPService"

// #region options
// Options describes the shape of the sidecar's models. Sizes are fixed for
// the lifetime of the client because they determine the feature layout.
type Options struct {
	EmbeddingDim  int
	IntentClasses int
}

// #endregion options

// #region client-struct
// CodecClient wraps the gRPC connection to the Python NLP service, which
// hosts the embedder, the intent classifier and the slot filler.
type CodecClient struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
	opts Options
}

var (
	_ nlp.Embedder         = (*CodecClient)(nil)
	_ nlp.IntentClassifier = (*CodecClient)(nil)
	_ nlp.SlotFiller       = (*CodecClient)(nil)
)

// #endregion client-struct

// #region constructor
// NewCodecClient connects to the NLP gRPC server.
func NewCodecClient(addr string, opts Options) (*CodecClient, error) {
	conn, err := Dial(addr)
	if err != nil {
		return nil, err
	}
	return &CodecClient{conn: conn, cc: conn, opts: opts}, nil
}

// NewCodecClientWithConn creates a CodecClient over an existing connection.
// The caller keeps ownership of cc.
func NewCodecClientWithConn(cc grpc.ClientConnInterface, opts Options) *CodecClient {
	return &CodecClient{cc: cc, opts: opts}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection if this client opened it.
func (c *CodecClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region embed
// Dim implements nlp.Embedder.
func (c *CodecClient) Dim() int {
	return c.opts.EmbeddingDim
}

// Embed returns the mean-pooled embedding of normalized text.
func (c *CodecClient) Embed(ctx context.Context, normalized string) ([]float32, error) {
	resp, err := Call(ctx, c.cc, ServiceName, "Embed", textRequest(normalized, true))
	if err != nil {
		return nil, fmt.Errorf("embed rpc: %w", err)
	}
	emb, err := GetFloats(resp, "embedding")
	if err != nil {
		return nil, fmt.Errorf("embed rpc: %w", err)
	}
	return emb, nil
}

// #endregion embed

// #region intent
// NumClasses implements nlp.IntentClassifier.
func (c *CodecClient) NumClasses() int {
	return c.opts.IntentClasses
}

// PredictProba returns the intent probability distribution for normalized text.
func (c *CodecClient) PredictProba(ctx context.Context, normalized string) ([]float32, error) {
	resp, err := Call(ctx, c.cc, ServiceName, "ClassifyIntent", textRequest(normalized, true))
	if err != nil {
		return nil, fmt.Errorf("classify intent rpc: %w", err)
	}
	probs, err := GetFloats(resp, "probs")
	if err != nil {
		return nil, fmt.Errorf("classify intent rpc: %w", err)
	}
	return probs, nil
}

// #endregion intent

// #region slots
// FillSlots extracts slot values from normalized text.
func (c *CodecClient) FillSlots(ctx context.Context, normalized string) (map[string]string, error) {
	resp, err := Call(ctx, c.cc, ServiceName, "FillSlots", textRequest(normalized, false))
	if err != nil {
		return nil, fmt.Errorf("fill slots rpc: %w", err)
	}
	slots, err := GetStringMap(resp, "slots")
	if err != nil {
		return nil, fmt.Errorf("fill slots rpc: %w", err)
	}
	return slots, nil
}

// Shutdown asks the sidecar to release the slot filler, then closes the
// connection.
func (c *CodecClient) Shutdown() error {
	var rpcErr error
	if _, err := Call(context.Background(), c.cc, ServiceName, "Shutdown", nil); err != nil {
		rpcErr = fmt.Errorf("shutdown rpc: %w", err)
	}
	return errors.Join(rpcErr, c.Close())
}

// #endregion slots

// #region helpers
func textRequest(text string, mean bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"text": structpb.NewStringValue(text),
		"mean": structpb.NewBoolValue(mean),
	}}
}

// #endregion helpers
