package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "morselive.log")
	log, err := New(path, "info")
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("connected")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"connected"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "x.log"), "loud")
	require.Error(t, err)
}

func TestNewEmptyPathIsNop(t *testing.T) {
	log, err := New("", "nonsense")
	require.NoError(t, err)
	log.Info("dropped")
}
