package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	var buf bytes.Buffer
	c, err := Init(Options{Enabled: false, Output: &buf})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	L.Error("dropped")
	assert.Empty(t, buf.String())
}

func TestInit_TextAndJSON(t *testing.T) {
	var text bytes.Buffer
	_, err := Init(Options{Enabled: true, Level: slog.LevelInfo, Output: &text})
	require.NoError(t, err)
	L.Debug("hidden")
	L.Info("shown", "ca", "0x10")
	assert.NotContains(t, text.String(), "hidden")
	assert.Contains(t, text.String(), "msg=shown ca=0x10")

	var js bytes.Buffer
	_, err = Init(Options{Enabled: true, Level: slog.LevelDebug, JSON: true, Output: &js})
	require.NoError(t, err)
	L.Debug("allocated", "size", 8)
	assert.Contains(t, js.String(), `"msg":"allocated"`)
	assert.Contains(t, js.String(), `"size":8`)

	t.Cleanup(func() { _, _ = Init(Options{}) })
}

func TestInit_LogDir(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "c3ctl-2000-01-01.log")
	keep := filepath.Join(dir, "unrelated.log")
	require.NoError(t, os.WriteFile(old, nil, 0o644))
	require.NoError(t, os.WriteFile(keep, nil, 0o644))

	c, err := Init(Options{Enabled: true, LogDir: dir})
	require.NoError(t, err)
	L.Info("to file")
	require.NoError(t, c.Close())
	t.Cleanup(func() { _, _ = Init(Options{}) })

	assert.NoFileExists(t, old)
	assert.FileExists(t, keep)

	today := filepath.Join(dir, "c3ctl-"+time.Now().Format(time.DateOnly)+".log")
	data, err := os.ReadFile(today)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
