// Package editor connects a running draw.io editor to drawgen.
//
// The editor is the draw.io embed page hosted inside a small relay page that
// the Bridge serves. The relay forwards the embed protocol's JSON messages
// between the draw.io iframe and a websocket back to the Bridge, so a
// terminal program can load diagrams into a browser editor and request
// exports from it.
package editor

import _ "embed"

// relayPage hosts the draw.io iframe and relays its messages.
//
//go:embed relay.html
var relayPage []byte

const (
	wsPath       = "/ws"
	exportBuffer = 4
	exportSpin   = "Exporting..."
)

// outbound is a message to the editor.
type outbound struct {
	Action   string `json:"action"`
	XML      string `json:"xml,omitempty"`
	Autosave int    `json:"autosave,omitempty"`
	Format   string `json:"format,omitempty"`
	Spin     string `json:"spin,omitempty"`
}

// inbound is a message from the editor. Only Event is always present.
type inbound struct {
	Event  string `json:"event"`
	XML    string `json:"xml"`
	Data   string `json:"data"`
	Format string `json:"format"`
}

// Export is a finished export delivered by the editor. Data is what
// draw.io returns for Format, typically a data: URI.
type Export struct {
	Format string
	Data   string
}
