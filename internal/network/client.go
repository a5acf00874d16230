package network

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/gobot/internal/codec"
)

// ServiceName is the fully qualified gRPC service of the policy model.
const ServiceName = "gobot.PolicyService"

// #region client-struct
// Client talks to the policy model over gRPC. Shape and train flag are read
// once from the Describe RPC at construction.
type Client struct {
	conn     *grpc.ClientConn
	cc       grpc.ClientConnInterface
	shape    Shape
	trainNow bool
}

var _ Network = (*Client)(nil)

// #endregion client-struct

// #region constructor
// NewClient dials addr and describes the remote model.
func NewClient(ctx context.Context, addr string) (*Client, error) {
	conn, err := codec.Dial(addr)
	if err != nil {
		return nil, err
	}
	c, err := NewClientWithConn(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.conn = conn
	return c, nil
}

// NewClientWithConn builds a client over an existing connection.
func NewClientWithConn(ctx context.Context, cc grpc.ClientConnInterface) (*Client, error) {
	c := &Client{cc: cc}
	resp, err := codec.Call(ctx, cc, ServiceName, "Describe", nil)
	if err != nil {
		return nil, fmt.Errorf("describe rpc: %w", err)
	}
	obs, err := codec.GetNumber(resp, "obs_size")
	if err != nil {
		return nil, fmt.Errorf("describe rpc: %w", err)
	}
	acts, err := codec.GetNumber(resp, "action_size")
	if err != nil {
		return nil, fmt.Errorf("describe rpc: %w", err)
	}
	c.shape = Shape{ObsSize: int(obs), ActionSize: int(acts)}
	c.trainNow = codec.GetBool(resp, "train_now")
	return c, nil
}

// #endregion constructor

// Shape returns the model geometry reported by the server.
func (c *Client) Shape() Shape {
	return c.shape
}

// TrainEnabled reports whether the remote model accepts training steps.
func (c *Client) TrainEnabled() bool {
	return c.trainNow
}

// #region train
// Train submits one dialog's features, gold actions and masks.
func (c *Client) Train(ctx context.Context, features [][]float32, actions []int, masks [][]float32) (TrainResult, error) {
	if len(features) != len(actions) || len(features) != len(masks) {
		return TrainResult{}, fmt.Errorf("train: %d feature rows, %d actions, %d masks", len(features), len(actions), len(masks))
	}
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"features": codec.FloatMatrix(features),
		"actions":  codec.IntList(actions),
		"masks":    codec.FloatMatrix(masks),
	}}
	resp, err := codec.Call(ctx, c.cc, ServiceName, "Train", req)
	if err != nil {
		return TrainResult{}, fmt.Errorf("train rpc: %w", err)
	}
	loss, err := codec.GetNumber(resp, "loss")
	if err != nil {
		return TrainResult{}, fmt.Errorf("train rpc: %w", err)
	}
	preds, err := codec.GetInts(resp, "predictions")
	if err != nil {
		return TrainResult{}, fmt.Errorf("train rpc: %w", err)
	}
	if len(preds) != len(actions) {
		return TrainResult{}, fmt.Errorf("train rpc: %d predictions for %d turns", len(preds), len(actions))
	}
	return TrainResult{Loss: float32(loss), Predictions: preds}, nil
}

// #endregion train

// #region infer
// Infer scores a single turn and advances the remote recurrent state.
func (c *Client) Infer(ctx context.Context, features []float32, mask []float32) ([]float32, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"features": codec.FloatList(features),
		"mask":     codec.FloatList(mask),
	}}
	resp, err := codec.Call(ctx, c.cc, ServiceName, "Infer", req)
	if err != nil {
		return nil, fmt.Errorf("infer rpc: %w", err)
	}
	probs, err := codec.GetFloats(resp, "probs")
	if err != nil {
		return nil, fmt.Errorf("infer rpc: %w", err)
	}
	if c.shape.ActionSize > 0 && len(probs) != c.shape.ActionSize {
		return nil, fmt.Errorf("infer rpc: got %d probabilities, want %d", len(probs), c.shape.ActionSize)
	}
	return probs, nil
}

// #endregion infer

// #region state
// ResetState clears the remote recurrent state.
func (c *Client) ResetState(ctx context.Context) error {
	if _, err := codec.Call(ctx, c.cc, ServiceName, "ResetState", nil); err != nil {
		return fmt.Errorf("reset state rpc: %w", err)
	}
	return nil
}

// Save asks the server to persist the model weights.
func (c *Client) Save(ctx context.Context) error {
	if _, err := codec.Call(ctx, c.cc, ServiceName, "Save", nil); err != nil {
		return fmt.Errorf("save rpc: %w", err)
	}
	return nil
}

// Close shuts down the connection if this client opened it.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion state
