package export

// State is a step of the export state machine.
type State int

// States in the order an export visits them. Done and Failed are terminal
// for one export; the next export starts again from Preparing.
const (
	Idle State = iota
	Preparing
	Rasterizing
	Encoding
	Done
	Failed
)

var stateNames = [...]string{
	Idle:        "idle",
	Preparing:   "preparing",
	Rasterizing: "rasterizing",
	Encoding:    "encoding",
	Done:        "done",
	Failed:      "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Busy reports whether an export in this state is still running.
func (s State) Busy() bool {
	return s == Preparing || s == Rasterizing || s == Encoding
}
