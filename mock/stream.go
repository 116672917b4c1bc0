package mock

import (
	"io"

	"github.com/fwojciec/drawgen"
)

// Interface compliance check.
var _ drawgen.Stream = (*Stream)(nil)

// Stream is a test double for drawgen.Stream.
// Set the function fields for the methods you need. NextFn panics when nil
// to catch missing setup. CloseFn and StateFn are nil-safe (no-op and zero
// value) because callers always defer stream.Close().
type Stream struct {
	NextFn  func() (drawgen.Event, error)
	StateFn func() drawgen.StreamState
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (drawgen.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() drawgen.StreamState {
	if s.StateFn == nil {
		return drawgen.StreamStateNew
	}
	return s.StateFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Events returns a Stream that yields events in order and then end, which
// is io.EOF when nil.
func Events(end error, events ...drawgen.Event) *Stream {
	if end == nil {
		end = io.EOF
	}
	i := 0
	return &Stream{
		NextFn: func() (drawgen.Event, error) {
			if i >= len(events) {
				return nil, end
			}
			evt := events[i]
			i++
			return evt, nil
		},
	}
}
