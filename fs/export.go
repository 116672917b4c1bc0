package fs

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/fwojciec/drawgen"
	"github.com/zeebo/blake3"
)

// SaveExport writes an editor export to <dir>/<hash>.<format> and returns
// the path. data is either a data: URI, as draw.io returns for images, or
// the raw document.
func (s *ArtifactStore) SaveExport(format, data string) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if format == "" || strings.ContainsAny(format, `/\`) {
		return "", fmt.Errorf("fs: export format %q: %w", format, drawgen.ErrValidation)
	}
	body, err := decodeExport(data)
	if err != nil {
		return "", fmt.Errorf("fs: export: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("fs: empty export: %w", drawgen.ErrValidation)
	}
	sum := blake3.Sum256(body)
	path := filepath.Join(s.dir, hex.EncodeToString(sum[:])[:nameLen]+"."+format)
	if err := writeAtomic(path, body); err != nil {
		return "", fmt.Errorf("fs: save export: %w", err)
	}
	return path, nil
}

func decodeExport(data string) ([]byte, error) {
	rest, ok := strings.CutPrefix(data, "data:")
	if !ok {
		return []byte(data), nil
	}
	header, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, fmt.Errorf("data URI without payload: %w", drawgen.ErrValidation)
	}
	if strings.HasSuffix(header, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI: %w", err)
		}
		return b, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI: %w", err)
	}
	return []byte(s), nil
}
