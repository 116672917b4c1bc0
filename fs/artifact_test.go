package fs_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/drawgen"
	"github.com/fwojciec/drawgen/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactStore_Save(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "out")
	s := fs.NewArtifactStore(dir)
	assert.Empty(t, s.LastPath())

	xml := `<mxGraphModel><root><mxCell id="0"/></root></mxGraphModel>`
	path, err := s.Save(xml)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".drawio"))
	assert.Len(t, strings.TrimSuffix(filepath.Base(path), ".drawio"), 16)
	assert.Equal(t, path, s.LastPath())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, xml, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestArtifactStore_ContentAddressed(t *testing.T) {
	t.Parallel()
	s := fs.NewArtifactStore(t.TempDir())

	a1, err := s.Save("<a/>")
	require.NoError(t, err)
	b, err := s.Save("<b/>")
	require.NoError(t, err)
	a2, err := s.Save("<a/>")
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.Equal(t, s.Path("<a/>"), a1)
	assert.Equal(t, a2, s.LastPath())
}

func TestArtifactStore_LoadXML(t *testing.T) {
	t.Parallel()
	s := fs.NewArtifactStore(t.TempDir())

	require.NoError(t, s.LoadXML("<g/>"))
	assert.FileExists(t, s.LastPath())

	err := s.LoadXML("  ")
	assert.ErrorIs(t, err, drawgen.ErrValidation)
}

func TestArtifactStore_UnwritableDir(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := fs.NewArtifactStore(filepath.Join(file, "sub")).Save("<g/>")
	assert.Error(t, err)
}

func TestArtifactStore_SaveExport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format string
		data   string
		ext    string
		want   string
	}{
		{"base64 data uri", "png", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG")), ".png", "\x89PNG"},
		{"escaped data uri", "svg", "data:image/svg+xml,%3Csvg%2F%3E", ".svg", "<svg/>"},
		{"raw document", ".XML", "<mxfile/>", ".xml", "<mxfile/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			s := fs.NewArtifactStore(dir)

			path, err := s.SaveExport(tt.format, tt.data)
			require.NoError(t, err)
			assert.Equal(t, dir, filepath.Dir(path))
			assert.Equal(t, tt.ext, filepath.Ext(path))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestArtifactStore_SaveExportErrors(t *testing.T) {
	t.Parallel()
	s := fs.NewArtifactStore(t.TempDir())

	_, err := s.SaveExport("", "<svg/>")
	assert.ErrorIs(t, err, drawgen.ErrValidation)
	_, err = s.SaveExport("../png", "<svg/>")
	assert.ErrorIs(t, err, drawgen.ErrValidation)
	_, err = s.SaveExport("png", "data:image/png;base64")
	assert.ErrorIs(t, err, drawgen.ErrValidation)
	_, err = s.SaveExport("png", "data:image/png;base64,%%%")
	assert.Error(t, err)
	_, err = s.SaveExport("svg", "")
	assert.ErrorIs(t, err, drawgen.ErrValidation)
}
