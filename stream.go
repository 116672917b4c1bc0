package drawgen

import "context"

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving events.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream uses a pull-based iterator pattern over decoded server events.
// Cancellation flows through the context passed to Transport.Open().
//
// Next returns events in the order their lines appear in the response body.
// It returns io.EOF when the body is exhausted, an error wrapping ErrDecode
// for a malformed payload, and ErrStreamClosed after Close.
//
// Close releases the response body. It is safe to call more than once and
// must be called on every exit path.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Close() error
}

// Transport opens a generation stream. Open fails with an error wrapping
// ErrRequestFailed when the request cannot be sent or the server answers
// with a non-success status; no stream data has been read in that case.
type Transport interface {
	Open(ctx context.Context, req Request) (Stream, error)
}
