package fs

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fwojciec/drawgen"
	"github.com/zeebo/blake3"
)

// artifactExt is the extension draw.io opens natively.
const artifactExt = ".drawio"

// nameLen is the number of hex digits of the content hash used as the file
// name.
const nameLen = 16

// Interface compliance check.
var _ drawgen.ArtifactLoader = (*ArtifactStore)(nil)

// ArtifactStore writes finished diagrams to a directory. Files are named by
// content hash, so saving the same diagram twice yields the same path.
type ArtifactStore struct {
	dir string

	mu   sync.Mutex
	last string
}

// NewArtifactStore creates an ArtifactStore rooted at dir. The directory is
// created on first write.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// LoadXML saves xml and remembers its path.
func (s *ArtifactStore) LoadXML(xml string) error {
	_, err := s.Save(xml)
	return err
}

// Save writes xml to <dir>/<hash>.drawio and returns the path.
func (s *ArtifactStore) Save(xml string) (string, error) {
	if strings.TrimSpace(xml) == "" {
		return "", fmt.Errorf("fs: empty diagram: %w", drawgen.ErrValidation)
	}
	path := s.Path(xml)
	if err := writeAtomic(path, []byte(xml)); err != nil {
		return "", fmt.Errorf("fs: save diagram: %w", err)
	}
	s.mu.Lock()
	s.last = path
	s.mu.Unlock()
	return path, nil
}

// Path returns where xml is stored.
func (s *ArtifactStore) Path(xml string) string {
	sum := blake3.Sum256([]byte(xml))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])[:nameLen]+artifactExt)
}

// LastPath returns the path of the most recently saved diagram, or "".
func (s *ArtifactStore) LastPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
