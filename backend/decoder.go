package backend

import (
	"fmt"
	"strings"

	"github.com/fwojciec/drawgen"
	"github.com/fwojciec/drawgen/json"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FrameDecoder splits a byte stream into text lines. Bytes are decoded as
// UTF-8 incrementally: a multi-byte character split across chunks is held
// back until the rest arrives, and a trailing partial line is buffered until
// its newline. Line endings are "\n" with an optional preceding "\r".
//
// The lines produced for a byte stream do not depend on how it was chunked.
type FrameDecoder struct {
	utf8    transform.Transformer
	pending []byte // undecoded tail of the previous chunk
	partial string // decoded text after the last newline
}

// NewFrameDecoder creates a FrameDecoder. A leading byte order mark is
// dropped and invalid sequences decode to U+FFFD.
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{utf8: unicode.UTF8BOM.NewDecoder()}
}

// Feed decodes chunk and returns the lines it completes, in order.
func (d *FrameDecoder) Feed(chunk []byte) []string {
	d.partial += d.decode(chunk, false)
	return d.split()
}

// Flush decodes any held-back bytes and returns the remaining lines,
// including a final line without a trailing newline. The decoder is reset
// and may be reused.
func (d *FrameDecoder) Flush() []string {
	d.partial += d.decode(nil, true)
	lines := d.split()
	if d.partial != "" {
		lines = append(lines, strings.TrimSuffix(d.partial, "\r"))
		d.partial = ""
	}
	d.utf8.Reset()
	return lines
}

func (d *FrameDecoder) decode(chunk []byte, atEOF bool) string {
	src := append(d.pending, chunk...)
	d.pending = nil
	if len(src) == 0 {
		return ""
	}
	// Each invalid byte may expand to a three-byte replacement character.
	dst := make([]byte, 3*len(src))
	nDst, nSrc, _ := d.utf8.Transform(dst, src, atEOF)
	if nSrc < len(src) {
		d.pending = append([]byte(nil), src[nSrc:]...)
	}
	return string(dst[:nDst])
}

func (d *FrameDecoder) split() []string {
	parts := strings.Split(d.partial, "\n")
	d.partial = parts[len(parts)-1]
	lines := parts[:len(parts)-1]
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// ExtractEvent decodes the event carried by an SSE line. It reports false
// for lines that are not data lines. A data line whose payload does not
// decode returns an error wrapping [drawgen.ErrDecode].
func ExtractEvent(line string) (drawgen.Event, bool, error) {
	payload, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		return nil, false, nil
	}
	evt, err := json.DecodeEvent([]byte(payload))
	if err != nil {
		return nil, true, fmt.Errorf("backend: %w", err)
	}
	return evt, true, nil
}
