package ui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/kastheco/marquee/config"
)

// reloadDebounce coalesces the burst of events editors emit on save.
const reloadDebounce = 150 * time.Millisecond

// PresetWatcher reloads a presets file whenever it changes and hands
// the result to send, usually (*tea.Program).Send.
type PresetWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	send    func(tea.Msg)
	logger  *slog.Logger
	done    chan struct{}
}

// WatchPresets starts watching path. The directory is watched rather
// than the file so that editors which save by rename are still seen.
func WatchPresets(path string, send func(tea.Msg), logger *slog.Logger) (*PresetWatcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	pw := &PresetWatcher{
		watcher: w,
		path:    abs,
		send:    send,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go pw.run()
	return pw, nil
}

func (pw *PresetWatcher) run() {
	defer close(pw.done)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case ev, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != pw.path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C
		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			pw.logger.Warn("preset watcher error", "err", err)
		case <-fire:
			fire = nil
			pw.send(pw.reload())
		}
	}
}

func (pw *PresetWatcher) reload() ReloadMsg {
	f, err := config.LoadPresets(pw.path)
	if err != nil {
		return ReloadMsg{Err: err}
	}
	pw.logger.Debug("presets changed", "path", pw.path, "presets", f.Names())
	return ReloadMsg{Presets: f}
}

// Close stops watching and waits for the loop to exit.
func (pw *PresetWatcher) Close() error {
	err := pw.watcher.Close()
	<-pw.done
	return err
}
