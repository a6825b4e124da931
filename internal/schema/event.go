package schema

// Event types, discriminated by the wire field "t".
const (
	EventActivity = "activity"
	EventStart    = "start"
	EventLog      = "log"
	EventPartial  = "partial"
	EventDone     = "done"
	EventResult   = "result"
	EventError    = "error"
)

// Event is one entry in a run's event stream. The populated fields depend on
// T: start/log/done/partial may carry Name; log/activity/error carry Msg;
// partial carries Field and Value; result carries Payload. The wire form is
// the CLI json-stream contract, so field names stay camelCase where the
// consumers expect them.
type Event struct {
	T       string `json:"t"`
	RunID   string `json:"runId"`
	Agent   string `json:"agent"`
	Name    string `json:"name,omitempty"`
	Msg     string `json:"msg,omitempty"`
	Field   string `json:"field,omitempty"`
	Value   any    `json:"value,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Critical reports whether the event must survive retention rotation.
// Only log and partial events are rotatable.
func (e Event) Critical() bool {
	switch e.T {
	case EventResult, EventError, EventDone, EventStart, EventActivity:
		return true
	}
	return false
}
