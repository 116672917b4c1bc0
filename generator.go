package drawgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Failure messages shown on the in-flight record.
const (
	msgRequestFailed = "network error or request failed, check your connection and retry"
	msgDecodeFailed  = "received a malformed event from the server"
	msgStreamEnded   = "stream ended before the server finished"
	msgCancelled     = "generation cancelled"
)

// Generator runs generation calls against a Transport and applies the
// streamed events to a Session. At most one call is active at a time.
type Generator struct {
	transport Transport
	session   *Session
	artifact  ArtifactLoader
	logger    *slog.Logger
	inflight  *semaphore.Weighted

	mu     sync.Mutex
	callID string
	cancel context.CancelFunc
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithArtifactLoader sets the collaborator that receives the finished
// diagram. Without one, completed diagrams are only reflected in the
// Session.
func WithArtifactLoader(a ArtifactLoader) Option {
	return func(g *Generator) { g.artifact = a }
}

// NewGenerator creates a Generator that writes to session.
func NewGenerator(transport Transport, session *Session, opts ...Option) *Generator {
	g := &Generator{
		transport: transport,
		session:   session,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		inflight:  semaphore.NewWeighted(1),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// GenerateOption configures a single Generate invocation.
type GenerateOption func(*generateConfig)

type generateConfig struct {
	systemPrompt string
	regenerate   bool
}

// WithSystemPrompt overrides the server's default system prompt.
func WithSystemPrompt(prompt string) GenerateOption {
	return func(c *generateConfig) { c.systemPrompt = prompt }
}

// WithRegenerate skips adding a user record for the prompt, for retries of
// a prompt that is already in the transcript.
func WithRegenerate() GenerateOption {
	return func(c *generateConfig) { c.regenerate = true }
}

// Active reports whether a generation call is in flight.
func (g *Generator) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancel != nil
}

// Cancel aborts the in-flight call, if any, and reports whether there was
// one. The call returns a GenerationError with Kind FailureCancelled.
func (g *Generator) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel == nil {
		return false
	}
	g.logger.Info("cancelling generation", "generation", g.callID)
	g.cancel()
	return true
}

// Generate sends prompt to the backend and consumes the streamed response.
// It returns true only when the server completed the diagram. Every other
// outcome returns false and an error: ErrValidation for an empty prompt,
// ErrGenerationInProgress when another call is active, or a
// *GenerationError whose Kind says why the call failed. Whatever the
// outcome, the status is left non-loading and streamed content is kept.
func (g *Generator) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (bool, error) {
	var cfg generateConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	req := Request{
		Prompt:       prompt,
		Messages:     g.session.History(),
		SkipAPIs:     g.session.FailedAPIs(),
		SystemPrompt: cfg.systemPrompt,
	}
	if err := req.Validate(); err != nil {
		return false, err
	}

	if !g.inflight.TryAcquire(1) {
		return false, ErrGenerationInProgress
	}
	defer g.inflight.Release(1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	id := uuid.NewString()
	g.setActive(id, cancel)
	defer g.setActive("", nil)
	logger := g.logger.With("generation", id)

	g.session.SetLastPrompt(prompt)
	if !cfg.regenerate {
		g.session.AddRecord(RoleUser, prompt)
	}
	index := g.session.CreateInFlight()
	g.session.SetStatus(Status{Kind: StatusLoading, Label: LabelGenerating})

	d := NewDispatcher(index, Sinks{
		Conversation: g.session,
		History:      g.session,
		Status:       g.session,
		Artifact:     g.artifact,
		APIs:         g.session,
	}, logger)

	logger.Info("generation started", "record", index, "history", len(req.Messages), "skip_apis", req.SkipAPIs)

	stream, err := g.transport.Open(ctx, req)
	if err != nil {
		return false, g.abort(ctx, d, logger, FailureRequest, msgRequestFailed, err)
	}
	defer stream.Close()

	for {
		evt, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return false, g.abort(ctx, d, logger, FailureRequest, msgStreamEnded,
				fmt.Errorf("%w: unexpected end of stream", ErrRequestFailed))
		}
		if err != nil {
			if errors.Is(err, ErrDecode) {
				return false, g.abort(ctx, d, logger, FailureDecode, msgDecodeFailed, err)
			}
			return false, g.abort(ctx, d, logger, FailureRequest, msgRequestFailed, err)
		}

		switch d.Apply(evt) {
		case DispatchCompleted:
			logger.Info("generation completed", "api", g.session.LastAPI())
			return true, nil
		case DispatchFailed:
			logger.Warn("server reported failure", "message", d.Message())
			return false, &GenerationError{Kind: FailureApplication, Message: d.Message(), Err: ErrApplication}
		}
	}
}

// abort finalizes the in-flight record for a failure that did not arrive as
// a server event. A cancelled context takes precedence over transport
// errors, which are usually its side effect.
func (g *Generator) abort(ctx context.Context, d *Dispatcher, logger *slog.Logger, kind FailureKind, msg string, err error) error {
	label := LabelError
	if ctx.Err() != nil && kind != FailureDecode {
		kind, msg, label, err = FailureCancelled, msgCancelled, LabelCancelled, ctx.Err()
	}
	d.Fail(msg, label)
	logger.Warn("generation failed", "kind", kind.String(), "error", err)
	return &GenerationError{Kind: kind, Message: msg, Err: err}
}

func (g *Generator) setActive(id string, cancel context.CancelFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.callID = id
	g.cancel = cancel
}
