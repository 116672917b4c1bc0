package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fwojciec/drawgen"
)

// stream implements [drawgen.Stream] over a generation response body.
type stream struct {
	body   io.ReadCloser
	ctx    context.Context
	dec    *FrameDecoder
	buf    []byte
	lines  []string // decoded lines not yet consumed
	eof    bool
	rerr   error // read error held until lines is drained
	closed bool
	state  drawgen.StreamState
	err    error // terminal error, if any
}

// Interface compliance check.
var _ drawgen.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser, bufSize int) *stream {
	return &stream{
		body:  body,
		ctx:   ctx,
		dec:   NewFrameDecoder(),
		buf:   make([]byte, bufSize),
		state: drawgen.StreamStateNew,
	}
}

// Next returns the next decoded event. Non-data lines are skipped.
// Returns io.EOF once the body is exhausted.
func (s *stream) Next() (drawgen.Event, error) {
	switch s.state {
	case drawgen.StreamStateComplete:
		return nil, io.EOF
	case drawgen.StreamStateError:
		return nil, s.err
	case drawgen.StreamStateClosed:
		return nil, fmt.Errorf("backend: %w", drawgen.ErrStreamClosed)
	}

	for {
		for len(s.lines) > 0 {
			line := s.lines[0]
			s.lines = s.lines[1:]
			evt, ok, err := ExtractEvent(line)
			if err != nil {
				s.terminate(err)
				return nil, s.err
			}
			if ok {
				return evt, nil
			}
		}
		if s.eof {
			s.state = drawgen.StreamStateComplete
			return nil, io.EOF
		}
		if s.rerr != nil {
			s.terminate(s.rerr)
			return nil, s.err
		}
		s.rerr = s.fill()
	}
}

// fill reads one chunk from the body into the line queue. Lines decoded
// from a read that also failed are still queued ahead of the error.
func (s *stream) fill() error {
	n, err := s.body.Read(s.buf)
	if n > 0 {
		s.state = drawgen.StreamStateStreaming
		s.lines = append(s.lines, s.dec.Feed(s.buf[:n])...)
	}
	if errors.Is(err, io.EOF) {
		s.eof = true
		s.lines = append(s.lines, s.dec.Flush()...)
		return nil
	}
	if err != nil {
		return fmt.Errorf("backend: read stream: %w", err)
	}
	return nil
}

func (s *stream) State() drawgen.StreamState {
	return s.state
}

// Close releases the response body. Calling it again is a no-op.
func (s *stream) Close() error {
	if s.state != drawgen.StreamStateComplete && s.state != drawgen.StreamStateError {
		s.state = drawgen.StreamStateClosed
	}
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

func (s *stream) terminate(err error) {
	s.state = drawgen.StreamStateError
	if s.ctx.Err() != nil {
		err = fmt.Errorf("backend: %w", s.ctx.Err())
	}
	s.err = err
}
