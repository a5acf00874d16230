package policy

import (
	"fmt"

	"github.com/danielpatrickdp/gobot/internal/templates"
)

// ActionCodec maps action labels to indices in the fixed template order.
type ActionCodec struct {
	store *templates.Store
}

// NewActionCodec builds a codec over store. The action set is fixed for the
// lifetime of the codec.
func NewActionCodec(store *templates.Store) *ActionCodec {
	return &ActionCodec{store: store}
}

// Len is the number of actions.
func (c *ActionCodec) Len() int {
	return c.store.Len()
}

// Encode returns the index of label.
func (c *ActionCodec) Encode(label string) (int, error) {
	i, ok := c.store.Index(label)
	if !ok {
		return -1, fmt.Errorf("encode %q: %w", label, ErrUnknownAction)
	}
	return i, nil
}

// Decode returns the template at index i.
func (c *ActionCodec) Decode(i int) (templates.Template, error) {
	if i < 0 || i >= c.store.Len() {
		return templates.Template{}, fmt.Errorf("decode %d: %w", i, ErrActionOutOfRange)
	}
	return c.store.At(i), nil
}

// Label returns the action label at index i.
func (c *ActionCodec) Label(i int) (string, error) {
	t, err := c.Decode(i)
	if err != nil {
		return "", err
	}
	return t.Act, nil
}
