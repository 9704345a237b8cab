package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{"debug": LevelDebug, "": LevelInfo, "Warning": LevelWarn, "ERROR": LevelError}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: LevelWarn, Output: &buf, Service: "bench"})
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown", "cell", 3)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "service=bench")
	assert.Contains(t, out, "cell=3")
}

func TestFileLogging(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	l, err := New(Config{Level: LevelDebug, Output: &buf, LogDir: dir, Service: "assemble"})
	require.NoError(t, err)
	l.Debug("tree generated", "seed", 42)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "assemble_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"tree generated"`)
	assert.Contains(t, buf.String(), "tree generated")
}

func TestDiscardAndQuiet(t *testing.T) {
	Discard().Error("nothing")
	l, err := New(Config{Quiet: true})
	require.NoError(t, err)
	l.Info("nowhere")
	assert.NoError(t, l.Close())
}
