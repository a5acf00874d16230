package corpus

// #region db-result

// DBResult is the outcome of a knowledge-base lookup.
//
// The zero value (nil) means "no lookup": either the turn did not query the
// database or, for stored state, nothing has been queried yet in this dialog.
// A non-nil empty map means the lookup ran and returned nothing.
type DBResult map[string]any

// Known reports whether a lookup happened.
func (r DBResult) Known() bool {
	return r != nil
}

// IsEmpty reports whether a lookup happened and found nothing.
func (r DBResult) IsEmpty() bool {
	return r != nil && len(r) == 0
}

// Clone returns a shallow copy, preserving nil.
func (r DBResult) Clone() DBResult {
	if r == nil {
		return nil
	}
	c := make(DBResult, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// #endregion db-result

// #region turn-types

// Context is the user side of a turn.
type Context struct {
	Text        string   `json:"text"`
	DBResult    DBResult `json:"db_result,omitempty"`
	PrevRespAct string   `json:"prev_resp_act,omitempty"`
}

// Response is the system side of a turn: the ground-truth action and text.
type Response struct {
	Text string `json:"text"`
	Act  string `json:"act"`
}

// Turn pairs a user context with the system response that followed it.
type Turn struct {
	Context  Context  `json:"context"`
	Response Response `json:"response"`
}

// Dialog is an ordered sequence of turns sharing one state.
type Dialog struct {
	ID    string `json:"id,omitempty"`
	Turns []Turn `json:"turns"`
}

// Contexts returns the user side of every turn, in order.
func (d Dialog) Contexts() []Context {
	ctxs := make([]Context, len(d.Turns))
	for i, t := range d.Turns {
		ctxs[i] = t.Context
	}
	return ctxs
}

// Batch is a group of dialogs yielded together by the batch generator.
type Batch []Dialog

// #endregion turn-types
