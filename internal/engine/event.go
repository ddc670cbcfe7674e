package engine

import (
	"fmt"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

type EventKind int

const (
	EventChannelResolved EventKind = iota
	EventChannelFailed
	EventSettled
)

func (k EventKind) String() string {
	switch k {
	case EventChannelResolved:
		return "resolved"
	case EventChannelFailed:
		return "failed"
	case EventSettled:
		return "settled"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one step of a run. A run emits exactly one resolved or failed
// event per channel it attempts, then one settled event.
type Event struct {
	RunID   uint64
	Mode    mockup.Mode
	Kind    EventKind
	Channel mockup.Channel

	// Patch holds the resolved channel only.
	Patch mockup.RunOutput
	// Message is the user-facing text of a failed channel; Err is the cause.
	Message string
	Err     error

	// Output and Errors are the final state, set on the settled event.
	Output mockup.RunOutput
	Errors mockup.ChannelErrors
}

// Result is the settled state of a run.
type Result struct {
	Output mockup.RunOutput
	Errors mockup.ChannelErrors
}

// Failed reports whether every attempted channel failed.
func (r Result) Failed() bool {
	return r.Output.Empty() && len(r.Errors) > 0
}
