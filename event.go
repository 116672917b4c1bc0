package drawgen

// Event is a sealed interface representing a decoded server event.
// Transport and decode failures come from Stream.Next's error return,
// not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventContent carries a delta of generated text.
type EventContent struct {
	Content string
}

func (EventContent) event() {}

// EventValidationFailed reports that the server rejected the generated
// diagram. Terminal.
type EventValidationFailed struct {
	Message string
	Detail  string
}

func (EventValidationFailed) event() {}

// EventFailed reports a server-side failure. Type is "error" or "failed".
// Terminal.
type EventFailed struct {
	Type    string
	Message string
}

func (EventFailed) event() {}

// EventComplete carries the final diagram and the server's canonical
// history. Terminal.
type EventComplete struct {
	XML      string
	Messages History
	APIUsed  string
}

func (EventComplete) event() {}

// EventStart announces the provider the server is about to call.
type EventStart struct {
	API string
}

func (EventStart) event() {}

// EventSkip announces a provider the server skipped.
type EventSkip struct {
	API string
}

func (EventSkip) event() {}

// EventUnknown carries a well-formed event whose type the client does not
// recognize. Dispatchers ignore it.
type EventUnknown struct {
	Type string
}

func (EventUnknown) event() {}

// Interface compliance checks.
var (
	_ Event = EventContent{}
	_ Event = EventValidationFailed{}
	_ Event = EventFailed{}
	_ Event = EventComplete{}
	_ Event = EventStart{}
	_ Event = EventSkip{}
	_ Event = EventUnknown{}
)
