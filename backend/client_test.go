package backend_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/drawgen"
	"github.com/fwojciec/drawgen/backend"
	"github.com/fwojciec/drawgen/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseServer answers the generation endpoint by writing chunks, flushing
// after each one.
func sseServer(t *testing.T, chunks ...string) (*httptest.Server, <-chan []byte) {
	t.Helper()
	bodies := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate-diagram-stream", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		select {
		case bodies <- body:
		default:
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, c := range chunks {
			fmt.Fprint(w, c)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, bodies
}

func openStream(t *testing.T, srv *httptest.Server, opts ...backend.Option) drawgen.Stream {
	t.Helper()
	client := backend.New(append([]backend.Option{backend.WithBaseURL(srv.URL)}, opts...)...)
	s, err := client.Open(context.Background(), drawgen.Request{Prompt: "draw a box"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func collectEvents(t *testing.T, s drawgen.Stream) []drawgen.Event {
	t.Helper()
	var events []drawgen.Event
	for {
		evt, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
	return events
}

func TestClient_Open_SendsRequest(t *testing.T) {
	t.Parallel()
	srv, bodies := sseServer(t, "data: {\"type\":\"content\",\"content\":\"A\"}\n")
	client := backend.New(backend.WithBaseURL(srv.URL + "/"))

	s, err := client.Open(context.Background(), drawgen.Request{
		Prompt:       "draw",
		SkipAPIs:     []string{"openai"},
		SystemPrompt: "be brief",
	})
	require.NoError(t, err)
	defer s.Close()
	collectEvents(t, s)

	req, err := json.UnmarshalRequest(<-bodies)
	require.NoError(t, err)
	assert.Equal(t, "draw", req.Prompt)
	assert.Equal(t, []string{"openai"}, req.SkipAPIs)
	assert.Equal(t, "be brief", req.SystemPrompt)
}

func TestStream_ContentAcrossChunks(t *testing.T) {
	t.Parallel()
	srv, _ := sseServer(t,
		"data: {\"type\":\"content\",\"content\":\"A\"}\n",
		"data: {\"type\":\"content\",\"content\":\"B\"}\n",
	)
	s := openStream(t, srv)

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, drawgen.EventContent{Content: "A"}, evt)
	assert.Equal(t, drawgen.StreamStateStreaming, s.State())

	evt, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, drawgen.EventContent{Content: "B"}, evt)

	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, drawgen.StreamStateComplete, s.State())
}

func TestStream_EventSplitMidLine(t *testing.T) {
	t.Parallel()
	srv, _ := sseServer(t,
		"data: {\"type\":\"con",
		"tent\",\"content\":\"\xe5\x9b",
		"\xbe\"}\n\ndata: {\"type\":\"complete\",\"xml\":\"<graph/>\",\"messages\":[{\"role\":\"user\",\"content\":\"hi\"}]}\n",
	)
	s := openStream(t, srv, backend.WithReadBufferSize(7))

	events := collectEvents(t, s)
	require.Len(t, events, 2)
	assert.Equal(t, drawgen.EventContent{Content: "图"}, events[0])
	complete, ok := events[1].(drawgen.EventComplete)
	require.True(t, ok)
	assert.Equal(t, "<graph/>", complete.XML)
	require.Len(t, complete.Messages, 1)
	assert.JSONEq(t, `{"role":"user","content":"hi"}`, string(complete.Messages[0]))
}

func TestStream_SkipsNonDataLines(t *testing.T) {
	t.Parallel()
	srv, _ := sseServer(t,
		": keepalive\n",
		"event: message\n",
		"data: {\"type\":\"start\",\"api\":\"openai\"}\n\n",
		"data: {\"type\":\"heartbeat\"}\n",
	)
	events := collectEvents(t, openStream(t, srv))
	assert.Equal(t, []drawgen.Event{
		drawgen.EventStart{API: "openai"},
		drawgen.EventUnknown{Type: "heartbeat"},
	}, events)
}

func TestStream_FinalLineWithoutNewline(t *testing.T) {
	t.Parallel()
	srv, _ := sseServer(t, "data: {\"type\":\"failed\",\"message\":\"boom\"}")
	events := collectEvents(t, openStream(t, srv))
	assert.Equal(t, []drawgen.Event{drawgen.EventFailed{Type: "failed", Message: "boom"}}, events)
}

func TestStream_MalformedPayload(t *testing.T) {
	t.Parallel()
	srv, _ := sseServer(t,
		"data: {\"type\":\"content\",\"content\":\"A\"}\n",
		"data: not json\n",
		"data: {\"type\":\"content\",\"content\":\"B\"}\n",
	)
	s := openStream(t, srv)

	_, err := s.Next()
	require.NoError(t, err)

	_, err = s.Next()
	require.ErrorIs(t, err, drawgen.ErrDecode)
	assert.Equal(t, drawgen.StreamStateError, s.State())

	// Terminal error is sticky.
	_, err2 := s.Next()
	assert.Equal(t, err, err2)
}

func TestStream_NextAfterClose(t *testing.T) {
	t.Parallel()
	srv, _ := sseServer(t, "data: {\"type\":\"content\",\"content\":\"A\"}\n")
	s := openStream(t, srv)

	require.NoError(t, s.Close())
	assert.Equal(t, drawgen.StreamStateClosed, s.State())
	_, err := s.Next()
	assert.ErrorIs(t, err, drawgen.ErrStreamClosed)
	assert.NoError(t, s.Close())
}

func TestClient_Open_NonSuccessStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"detail":"all providers failed"}`)
	}))
	t.Cleanup(srv.Close)

	_, err := backend.New(backend.WithBaseURL(srv.URL)).Open(context.Background(), drawgen.Request{Prompt: "x"})
	require.ErrorIs(t, err, drawgen.ErrRequestFailed)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "all providers failed")
}

func TestClient_Open_ConnectionRefused(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := backend.New(backend.WithBaseURL(url)).Open(context.Background(), drawgen.Request{Prompt: "x"})
	assert.ErrorIs(t, err, drawgen.ErrRequestFailed)
}

func TestStream_ContextCancelled(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "data: {\"type\":\"content\",\"content\":\"A\"}\n")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() { close(release); srv.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	s, err := backend.New(backend.WithBaseURL(srv.URL)).Open(ctx, drawgen.Request{Prompt: "x"})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Next()
	require.NoError(t, err)

	cancel()
	_, err = s.Next()
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStream_EventWithoutTypeIgnored(t *testing.T) {
	t.Parallel()
	srv, _ := sseServer(t,
		"data: {\"type\":\"content\",\"content\":\"A\"}\n",
		"data: {}\n",
		"data: {\"foo\":1}\n",
		"data: {\"type\":\"content\",\"content\":\"B\"}\n",
	)
	s := openStream(t, srv)

	events := collectEvents(t, s)
	assert.Equal(t, []drawgen.Event{
		drawgen.EventContent{Content: "A"},
		drawgen.EventUnknown{},
		drawgen.EventUnknown{},
		drawgen.EventContent{Content: "B"},
	}, events)
	assert.Equal(t, drawgen.StreamStateComplete, s.State())
}

// failingBody returns its data and err from the same Read call.
type failingBody struct {
	data []byte
	err  error
}

func (b *failingBody) Read(p []byte) (int, error) {
	if len(b.data) == 0 {
		return 0, b.err
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	if len(b.data) == 0 {
		return n, b.err
	}
	return n, nil
}

func (b *failingBody) Close() error { return nil }

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestStream_ReadErrorAfterData(t *testing.T) {
	t.Parallel()
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
			Body: &failingBody{
				data: []byte("data: {\"type\":\"content\",\"content\":\"A\"}\ndata: {\"type\":\"content\",\"content\":\"B\"}\n"),
				err:  io.ErrUnexpectedEOF,
			},
			Request: r,
		}, nil
	})}
	client := backend.New(backend.WithBaseURL("http://backend.test"), backend.WithHTTPClient(hc))
	s, err := client.Open(context.Background(), drawgen.Request{Prompt: "draw a box"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, drawgen.EventContent{Content: "A"}, evt)
	evt, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, drawgen.EventContent{Content: "B"}, evt)

	_, err = s.Next()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, drawgen.StreamStateError, s.State())
}
