package policy

// #region mask
// MaskBuilder marks actions whose template slots can all be filled.
type MaskBuilder struct {
	codec   *ActionCodec
	state   *DialogState
	enabled bool
}

// NewMaskBuilder returns a builder; when enabled is false every mask is all ones.
func NewMaskBuilder(codec *ActionCodec, state *DialogState, enabled bool) *MaskBuilder {
	return &MaskBuilder{codec: codec, state: state, enabled: enabled}
}

// Mask returns one entry per action: 1 if eligible, 0 if a referenced slot
// is known neither to the tracker nor to the stored database result.
func (m *MaskBuilder) Mask() []float32 {
	mask := make([]float32, m.codec.Len())
	for i := range mask {
		mask[i] = 1
	}
	if !m.enabled {
		return mask
	}

	known := m.state.Tracker().State()
	for k := range m.state.DBResult() {
		known[k] = ""
	}
	for i := range mask {
		t, _ := m.codec.Decode(i)
		for _, slot := range t.Slots() {
			if _, ok := known[slot]; !ok {
				mask[i] = 0
				break
			}
		}
	}
	return mask
}

// #endregion mask
