package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_DiscardsWhenDebugDisabled(t *testing.T) {
	t.Setenv("DEVBOARD_DEBUG", "")
	t.Setenv("DEVBOARD_DEBUG_FILE", "")

	path, err := Initialize(false, "", DefaultMaxLogFiles)

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NotNil(t, Logger)
}

func TestInitialize_WritesToDebugFile(t *testing.T) {
	t.Setenv("DEVBOARD_DEBUG", "1")
	t.Cleanup(func() { Logger = discard() })
	logPath := filepath.Join(t.TempDir(), "nested", "debug.log")

	path, err := Initialize(false, logPath, DefaultMaxLogFiles)
	require.NoError(t, err)
	assert.Equal(t, logPath, path)

	Logger.Info("hello from test", "key", "value")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestRotateLogs_RemovesOldest(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		p := filepath.Join(dir, fmt.Sprintf("%d.log", i))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
		mod := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(p, mod, mod))
	}

	require.NoError(t, rotateLogs(dir, 3))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "should leave room for one new log")
	_, err = os.Stat(filepath.Join(dir, "0.log"))
	assert.True(t, os.IsNotExist(err), "oldest log should be removed")
}

func TestRotateLogs_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.log"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old.log"), 0755))

	require.NoError(t, rotateLogs(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "under the limit nothing is removed")
}

func TestInitialize_RotatesUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DEVBOARD_HOME", home)
	t.Setenv("DEVBOARD_DEBUG", "")
	t.Setenv("DEVBOARD_DEBUG_FILE", "")
	t.Setenv("DEVBOARD_MAX_LOG_FILES", "")
	t.Cleanup(func() { Logger = discard() })

	path, err := Initialize(true, "", DefaultMaxLogFiles)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs"), filepath.Dir(path))
	assert.Equal(t, ".log", filepath.Ext(path))
}

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelInfo)
	t.Cleanup(func() { Logger = discard() })

	Logger.Debug("hidden")
	Logger.Info("shown", "n", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
