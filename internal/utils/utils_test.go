package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenMonotonic(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 1000; i++ {
		tok := NewToken()
		assert.False(t, seen[tok], "token %q repeated", tok)
		seen[tok] = true
		if prev != "" {
			assert.Greater(t, tok, prev)
		}
		prev = tok
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0644))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "info")
	logger.Debugf("hidden %d", 1)
	logger.Infof("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "INFO: shown 2")

	buf.Reset()
	debug := NewLoggerTo(&buf, "debug")
	debug.Debugf("visible")
	assert.Contains(t, buf.String(), "DEBUG: visible")
}
