package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer

	NewWithWriter(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	NewWithWriter(&buf, true).Debug("shown", "op", "load")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "load", entry["op"])
}

func TestNewWritesToDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	logger, closer, err := New(dir, false)
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
