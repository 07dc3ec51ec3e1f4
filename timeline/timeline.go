// Package timeline records the frames an engine emits by running it on a
// fake clock, so an animation can be inspected or exported without
// waiting for it in real time.
package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/kastheco/marquee/clock"
	"github.com/kastheco/marquee/typewriter"
)

// Entry is one frame and the time it was emitted, relative to creation.
type Entry struct {
	AtMS       int64            `json:"at_ms" yaml:"at_ms" toml:"at_ms"`
	Text       string           `json:"text" yaml:"text" toml:"text"`
	Phase      typewriter.Phase `json:"phase" yaml:"phase" toml:"phase"`
	ShowCursor bool             `json:"show_cursor" yaml:"show_cursor" toml:"show_cursor"`
	Statement  int              `json:"statement" yaml:"statement" toml:"statement"`
	Visible    int              `json:"visible" yaml:"visible" toml:"visible"`
}

func entryOf(at time.Duration, f typewriter.Frame) Entry {
	return Entry{
		AtMS:       at.Milliseconds(),
		Text:       f.Text,
		Phase:      f.Phase,
		ShowCursor: f.ShowCursor,
		Statement:  f.Statement,
		Visible:    f.Visible,
	}
}

// Timeline is the recorded run.
type Timeline struct {
	Frames []Entry `json:"frames" yaml:"frames" toml:"frames"`

	// Truncated is set when the run was cut off by the limit rather than
	// reaching Complete.
	Truncated bool `json:"truncated" yaml:"truncated" toml:"truncated"`
}

// Record runs cfg from creation until the engine completes or until
// limit of animation time has elapsed. The first entry is the state at
// creation.
func Record(cfg typewriter.Config, limit time.Duration, logger *slog.Logger) (*Timeline, error) {
	start := time.Unix(0, 0).UTC()
	fake := clock.Fake(start)

	tl := &Timeline{}
	e, err := typewriter.New(cfg,
		typewriter.WithClock(fake),
		typewriter.WithLogger(logger),
		typewriter.WithSubscriber(func(f typewriter.Frame) {
			tl.Frames = append(tl.Frames, entryOf(fake.Now().Sub(start), f))
		}),
	)
	if err != nil {
		return nil, err
	}
	defer e.Dispose()

	tl.Frames = append([]Entry{entryOf(0, e.Frame())}, tl.Frames...)

	for e.Phase() != typewriter.PhaseComplete {
		deadline, ok := fake.NextDeadline()
		if !ok {
			break
		}
		if deadline.Sub(start) > limit {
			tl.Truncated = true
			break
		}
		fake.Advance(deadline.Sub(fake.Now()))
	}
	return tl, nil
}

// Duration returns the time of the last recorded frame.
func (tl *Timeline) Duration() time.Duration {
	if len(tl.Frames) == 0 {
		return 0
	}
	return time.Duration(tl.Frames[len(tl.Frames)-1].AtMS) * time.Millisecond
}

// Formats lists the encodings Write accepts.
var Formats = []string{"text", "json", "yaml", "toml"}

// Write encodes the timeline to w.
func (tl *Timeline) Write(w io.Writer, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "text":
		data = tl.text()
	case "json":
		data, err = json.MarshalIndent(tl, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(tl)
	case "toml":
		data, err = toml.Marshal(tl)
	default:
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}

func (tl *Timeline) text() []byte {
	var b bytes.Buffer
	for _, f := range tl.Frames {
		caret := ""
		if f.ShowCursor {
			caret = "▌"
		}
		fmt.Fprintf(&b, "%7dms  %-8s  %s%s\n", f.AtMS, f.Phase, f.Text, caret)
	}
	if tl.Truncated {
		b.WriteString("...\n")
	}
	return b.Bytes()
}
