package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/drawgen"
	"github.com/gorilla/websocket"
)

// Interface compliance check.
var _ drawgen.ArtifactLoader = (*Bridge)(nil)

// Bridge is the server side of the relay page. It implements
// [drawgen.ArtifactLoader] by sending load actions to the connected editor.
// At most one editor is connected; a new connection replaces the previous
// one.
type Bridge struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	exports  chan Export

	mu         sync.Mutex
	conn       *websocket.Conn
	ready      bool
	currentXML string

	writeMu sync.Mutex
}

// Option configures a [Bridge].
type Option func(*Bridge)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

// New creates a Bridge with no editor connected.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		upgrader: websocket.Upgrader{
			// The relay page is served by the same local process.
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
		exports: make(chan Export, exportBuffer),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Handler serves the relay page at / and the websocket at /ws.
func (b *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(relayPage)
	})
	mux.HandleFunc("GET "+wsPath, b.serveWS)
	return mux
}

// ListenAndServe serves Handler on addr until ctx is done.
func (b *Bridge) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("editor: listen: %w", err)
	}
	return b.Serve(ctx, ln)
}

// Serve serves Handler on ln until ctx is done.
func (b *Bridge) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: b.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		b.disconnect()
	}()
	b.logger.Info("editor bridge listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("editor: serve: %w", err)
	}
	return nil
}

// Ready reports whether an editor is connected and initialized.
func (b *Bridge) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

// CurrentXML returns the diagram last loaded or autosaved by the editor.
func (b *Bridge) CurrentXML() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentXML
}

// Exports delivers finished exports requested with Export.
func (b *Bridge) Exports() <-chan Export {
	return b.exports
}

// LoadXML replaces the editor's diagram with xml. It fails with
// [drawgen.ErrEditorNotReady] when no initialized editor is connected.
func (b *Bridge) LoadXML(xml string) error {
	b.mu.Lock()
	conn, ready := b.conn, b.ready
	if ready {
		b.currentXML = xml
	}
	b.mu.Unlock()
	if !ready {
		return fmt.Errorf("editor: load: %w", drawgen.ErrEditorNotReady)
	}
	return b.send(conn, outbound{Action: "load", XML: xml, Autosave: 1})
}

// Export asks the editor to export the current diagram in format, e.g.
// "png" or "svg". The result arrives on Exports.
func (b *Bridge) Export(format string) error {
	b.mu.Lock()
	conn, ready, hasXML := b.conn, b.ready, b.currentXML != ""
	b.mu.Unlock()
	if !ready || !hasXML {
		return fmt.Errorf("editor: export: %w", drawgen.ErrEditorNotReady)
	}
	return b.send(conn, outbound{Action: "export", Format: format, Spin: exportSpin})
}

func (b *Bridge) send(conn *websocket.Conn, msg outbound) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("editor: send %s: %w", msg.Action, err)
	}
	b.logger.Debug("sent editor action", "action", msg.Action)
	return nil
}

func (b *Bridge) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("editor upgrade failed", "error", err)
		return
	}

	b.mu.Lock()
	prev := b.conn
	b.conn = conn
	b.ready = false
	b.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	b.logger.Info("editor connected", "remote", r.RemoteAddr)

	b.readLoop(conn)
}

func (b *Bridge) readLoop(conn *websocket.Conn) {
	defer func() {
		b.mu.Lock()
		if b.conn == conn {
			b.conn = nil
			b.ready = false
		}
		b.mu.Unlock()
		conn.Close()
		b.logger.Info("editor disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			b.logger.Warn("ignoring malformed editor message", "error", err)
			continue
		}
		b.handle(conn, msg)
	}
}

func (b *Bridge) handle(conn *websocket.Conn, msg inbound) {
	switch msg.Event {
	case "init":
		b.mu.Lock()
		b.ready = b.conn == conn
		xml := b.currentXML
		b.mu.Unlock()
		b.logger.Info("editor ready")
		// A reloaded page gets the diagram back.
		if xml != "" {
			if err := b.send(conn, outbound{Action: "load", XML: xml, Autosave: 1}); err != nil {
				b.logger.Warn("reload diagram", "error", err)
			}
		}
	case "autosave", "save":
		b.mu.Lock()
		b.currentXML = msg.XML
		b.mu.Unlock()
	case "export":
		select {
		case b.exports <- Export{Format: msg.Format, Data: msg.Data}:
		default:
			b.logger.Warn("dropping export, no reader", "format", msg.Format)
		}
	default:
		b.logger.Debug("ignoring editor event", "event", msg.Event)
	}
}

func (b *Bridge) disconnect() {
	b.mu.Lock()
	conn := b.conn
	b.conn = nil
	b.ready = false
	b.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}
