package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 2000, c.Identify.MaxPeriod)
	assert.Equal(t, 5*time.Second, c.Search.FlushInterval)
	assert.Equal(t, "B3/S23", c.Viewer.Rule)
	require.NoError(t, c.Validate())
}

func TestLoadOverlaysFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  threads: 3\n  seed: 99\nstore:\n  path: /tmp/x.db\n"), 0o644))
	t.Setenv("CASEARCH_SEARCH_THREADS", "8")
	t.Setenv("CASEARCH_IDENTIFY_MAX_PERIOD", "500")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Search.Threads)
	assert.Equal(t, int64(99), c.Search.Seed)
	assert.Equal(t, 500, c.Identify.MaxPeriod)
	assert.Equal(t, "/tmp/x.db", c.Store.Path)
	assert.Equal(t, 10000, c.Search.Iterations)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("CASEARCH_SEARCH_FLUSH_INTERVAL", "often")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Log.Level = "chatty"
	assert.Error(t, c.Validate())

	c = Default()
	c.Identify.MaxPeriod = 0
	assert.Error(t, c.Validate())

	c = Default()
	c.Search.Threads = -1
	assert.Error(t, c.Validate())
}

func TestViewerSettings(t *testing.T) {
	t.Setenv("CASEARCH_VIEWER_SOUP_DENSITY", "0.3")
	t.Setenv("CASEARCH_VIEWER_WIDTH", "64")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.3, c.Viewer.SoupDensity)
	assert.Equal(t, 64, c.Viewer.Width)
	assert.Equal(t, 144, c.Viewer.Height)

	c.Viewer.SoupDensity = 1.5
	assert.Error(t, c.Validate())
}
