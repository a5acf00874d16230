package policy

import (
	"fmt"
	"maps"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/danielpatrickdp/gobot/internal/corpus"
)

// #region decoder
// ResponseDecoder renders the template of a chosen action.
type ResponseDecoder struct {
	codec *ActionCodec
	state *DialogState
}

// NewResponseDecoder returns a decoder reading slot values from state.
func NewResponseDecoder(codec *ActionCodec, state *DialogState) *ResponseDecoder {
	return &ResponseDecoder{codec: codec, state: state}
}

// Decode renders action i with tracker values overlaid by database values.
func (d *ResponseDecoder) Decode(i int) (string, error) {
	t, err := d.codec.Decode(i)
	if err != nil {
		return "", err
	}
	slots := d.state.Tracker().State()
	maps.Copy(slots, stringValues(d.state.DBResult()))
	return t.Render(slots), nil
}

// #endregion decoder

// stringValues converts database values to slot strings. Scalars go
// through a weak decode; anything else falls back to its fmt form. A nil
// value renders empty.
func stringValues(r corpus.DBResult) map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		switch v := v.(type) {
		case nil:
			out[k] = ""
			continue
		case bool:
			out[k] = strconv.FormatBool(v)
			continue
		}
		var s string
		if err := mapstructure.WeakDecode(v, &s); err != nil {
			s = fmt.Sprint(v)
		}
		out[k] = s
	}
	return out
}
