package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kastheco/marquee/config"
)

// WriteResult tracks scaffold output for summary display.
type WriteResult struct {
	Path    string
	Created bool // true=written, false=skipped (file already existed)
}

// WritePresets writes presets to path in the format its extension names,
// creating parent directories as needed. An existing file is left alone
// unless force is set.
func WritePresets(path string, presets *config.PresetFile, force bool) (WriteResult, error) {
	if err := presets.Validate(); err != nil {
		return WriteResult{}, fmt.Errorf("scaffold presets: %w", err)
	}
	data, err := config.EncodePresets(presets, config.FormatOf(path))
	if err != nil {
		return WriteResult{}, fmt.Errorf("encode presets: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WriteResult{}, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	written, err := writeFile(path, data, force)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write presets: %w", err)
	}
	return WriteResult{Path: path, Created: written}, nil
}

// writeFile writes content to path. If force is false and the file exists, skip.
// Returns true if the file was actually written, false if skipped.
func writeFile(path string, content []byte, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil // skip existing
		}
	}
	return true, os.WriteFile(path, content, 0o644)
}
