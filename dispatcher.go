package drawgen

import (
	"io"
	"log/slog"
)

// DispatchState is the state of a Dispatcher.
type DispatchState int

const (
	DispatchStreaming DispatchState = iota // Initial; applying content deltas.
	DispatchCompleted                      // Terminal; complete event applied.
	DispatchFailed                         // Terminal; failure applied.
)

func (s DispatchState) String() string {
	switch s {
	case DispatchStreaming:
		return "streaming"
	case DispatchCompleted:
		return "completed"
	case DispatchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is Completed or Failed.
func (s DispatchState) Terminal() bool {
	return s == DispatchCompleted || s == DispatchFailed
}

// errorMarker prefixes the status of a failed record.
const errorMarker = "❌ "

// APITracker records which backend provider served or failed a call.
type APITracker interface {
	SetLastAPI(api string)
	LastAPI() string
	MarkFailed(api string)
}

// Sinks groups the collaborators a Dispatcher writes to. Conversation is
// required; the rest may be nil.
type Sinks struct {
	Conversation ConversationSink
	History      HistorySink
	Status       StatusSink
	Artifact     ArtifactLoader
	APIs         APITracker
}

// Dispatcher applies decoded events to the in-flight record of one
// generation call. It is not safe for concurrent use; events must be
// applied in stream order.
type Dispatcher struct {
	sinks   Sinks
	index   int
	state   DispatchState
	message string
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher for the in-flight record at index.
// A nil logger discards output.
func NewDispatcher(index int, sinks Sinks, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{sinks: sinks, index: index, logger: logger}
}

// State returns the current state.
func (d *Dispatcher) State() DispatchState { return d.state }

// Index returns the in-flight record index.
func (d *Dispatcher) Index() int { return d.index }

// Message returns the failure message shown on the record, or "" if the
// dispatcher has not failed.
func (d *Dispatcher) Message() string { return d.message }

// Apply dispatches evt and returns the resulting state. Once a terminal
// state is reached, Apply does nothing and returns that state.
func (d *Dispatcher) Apply(evt Event) DispatchState {
	if d.state.Terminal() {
		return d.state
	}
	switch e := evt.(type) {
	case EventContent:
		d.sinks.Conversation.AppendContent(d.index, e.Content)
	case EventValidationFailed:
		d.fail(e.Message, LabelValidationFailed)
	case EventFailed:
		d.fail(e.Message, LabelError)
	case EventComplete:
		d.complete(e)
	case EventStart:
		d.logger.Debug("provider started", "api", e.API)
		if d.sinks.APIs != nil {
			d.sinks.APIs.SetLastAPI(e.API)
		}
	case EventSkip:
		d.logger.Debug("provider skipped", "api", e.API)
	case EventUnknown:
		d.logger.Debug("ignoring unrecognized event", "type", e.Type)
	}
	return d.state
}

// Fail moves the dispatcher to the failed state with message, for failures
// that did not arrive as server events. It reports whether the transition
// happened; a dispatcher that is already terminal is left unchanged.
func (d *Dispatcher) Fail(message, label string) bool {
	if d.state.Terminal() {
		return false
	}
	d.state = DispatchFailed
	d.message = message
	d.sinks.Conversation.Finalize(d.index, errorMarker+message, false, true)
	d.setStatus(Status{Kind: StatusError, Label: label})
	return true
}

func (d *Dispatcher) fail(message, label string) {
	if d.sinks.APIs != nil {
		d.sinks.APIs.MarkFailed(d.sinks.APIs.LastAPI())
	}
	d.Fail(message, label)
}

func (d *Dispatcher) complete(e EventComplete) {
	d.state = DispatchCompleted
	if d.sinks.History != nil {
		d.sinks.History.ReplaceHistory(e.Messages)
	}
	if d.sinks.APIs != nil && e.APIUsed != "" {
		d.sinks.APIs.SetLastAPI(e.APIUsed)
	}
	if d.sinks.Artifact != nil {
		if err := d.sinks.Artifact.LoadXML(e.XML); err != nil {
			d.logger.Warn("load diagram into editor", "error", err)
		}
	}
	d.sinks.Conversation.Finalize(d.index, "", true, false)
	d.setStatus(Status{Kind: StatusReady, Label: LabelReady})
}

func (d *Dispatcher) setStatus(s Status) {
	if d.sinks.Status != nil {
		d.sinks.Status.SetStatus(s)
	}
}
