// Package backend implements [drawgen.Transport] and [drawgen.ConfigService]
// against the diagram-generation HTTP backend.
//
// Generation responses are server-sent events: a sequence of lines where
// every "data: " line carries one JSON event and every other line is
// ignored. [FrameDecoder] turns arbitrarily chunked body bytes into those
// lines; the stream type pulls chunks from the response body on demand.
package backend

const (
	defaultBaseURL = "http://localhost:8000"
	generatePath   = "/api/generate-diagram-stream"
	configsPath    = "/api/ai-configs"

	dataPrefix     = "data: "
	readBufferSize = 32 * 1024
	maxErrorBody   = 64 * 1024
)
