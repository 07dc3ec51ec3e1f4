package ui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchPresets_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.toml")
	require.NoError(t, os.WriteFile(path, []byte("[presets.hero]\ninitial_text = \"first\"\n"), 0o644))

	msgs := make(chan tea.Msg, 4)
	w, err := WatchPresets(path, func(msg tea.Msg) { msgs <- msg }, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("[presets.hero]\ninitial_text = \"second\"\n"), 0o644))

	select {
	case msg := <-msgs:
		reload, ok := msg.(ReloadMsg)
		require.True(t, ok)
		require.NoError(t, reload.Err)
		assert.Equal(t, "second", reload.Presets.Presets["hero"].InitialText)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatchPresets_ReportsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.toml")
	require.NoError(t, os.WriteFile(path, []byte("[presets.hero]\ninitial_text = \"first\"\n"), 0o644))

	msgs := make(chan tea.Msg, 4)
	w, err := WatchPresets(path, func(msg tea.Msg) { msgs <- msg }, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("[presets.hero]\ninitial_text = \"\"\n"), 0o644))

	select {
	case msg := <-msgs:
		reload, ok := msg.(ReloadMsg)
		require.True(t, ok)
		assert.Error(t, reload.Err)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatchPresets_MissingDirectory(t *testing.T) {
	_, err := WatchPresets(filepath.Join(t.TempDir(), "nope", "presets.toml"), func(tea.Msg) {}, nil)
	assert.Error(t, err)
}
