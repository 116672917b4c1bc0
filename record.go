package drawgen

import (
	"encoding/json"
	"time"
)

// Record is one entry in the user-facing transcript.
//
// Content only grows while a streaming record is in flight. Status,
// Completed and Error are written once, by the terminal transition.
type Record struct {
	Role      Role
	Content   string
	Timestamp time.Time
	Stream    bool
	Status    string
	Completed bool
	Error     bool
}

// InFlight reports whether r is a streaming record that has not reached a
// terminal state.
func (r Record) InFlight() bool {
	return r.Stream && !r.Completed && !r.Error
}

// History is the server's canonical turn sequence. Turns are opaque to the
// client: they are stored as received and sent back verbatim as context for
// the next request.
type History []json.RawMessage

// Clone returns a deep copy of h.
func (h History) Clone() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	for i, turn := range h {
		out[i] = append(json.RawMessage(nil), turn...)
	}
	return out
}
