package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/gamut"
	"github.com/muesli/termenv"
)

// Rosé Pine Moon palette.
// https://rosepinetheme.com/palette/
const (
	hexBase    = "#232136"
	hexOverlay = "#393552"
	hexMuted   = "#6e6a86"
	hexSubtle  = "#908caa"
	hexText    = "#e0def4"
	hexLove    = "#eb6f92"
	hexGold    = "#f6c177"
	hexFoam    = "#9ccfd8"
	hexIris    = "#c4a7e7"
)

// Theme holds the styles used to draw the banner.
type Theme struct {
	Banner lipgloss.Style
	Rule   lipgloss.Style
	Caret  lipgloss.Style
	Help   lipgloss.Style
	Name   lipgloss.Style

	from, to string // gradient ends for the statement words
	plain    bool
}

// NewTheme builds the default theme. With noColor set, or NO_COLOR in
// the environment, every style renders plain text.
func NewTheme(noColor bool) Theme {
	if noColor || termenv.EnvNoColor() {
		return Theme{
			Banner: lipgloss.NewStyle().Padding(1, 2),
			Rule:   lipgloss.NewStyle(),
			Caret:  lipgloss.NewStyle(),
			Help:   lipgloss.NewStyle(),
			Name:   lipgloss.NewStyle(),
			plain:  true,
		}
	}
	return Theme{
		Banner: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(hexOverlay)),
		Rule:  lipgloss.NewStyle().Foreground(lipgloss.Color(hexGold)),
		Caret: lipgloss.NewStyle().Foreground(lipgloss.Color(hexFoam)),
		Help:  lipgloss.NewStyle().Foreground(lipgloss.Color(hexMuted)),
		Name:  lipgloss.NewStyle().Foreground(lipgloss.Color(hexSubtle)).Italic(true),
		from:  hexIris,
		to:    hexLove,
	}
}

// Gradient returns n hex colours blending from the theme's first accent
// to its second.
func (t Theme) Gradient(n int) []string {
	if n <= 0 || t.plain {
		return nil
	}
	if n == 1 {
		return []string{t.from}
	}
	blends := gamut.Blends(gamut.Hex(t.from), gamut.Hex(t.to), n)
	out := make([]string, len(blends))
	for i, c := range blends {
		cf, ok := colorful.MakeColor(c)
		if !ok {
			out[i] = hexText
			continue
		}
		out[i] = cf.Hex()
	}
	return out
}

// Paint renders each word of text in its gradient colour. total is the
// word count of the whole statement, so colours stay put while the
// statement is typed and deleted.
func (t Theme) Paint(text string, total int) string {
	if t.plain || text == "" {
		return text
	}
	words := strings.Fields(text)
	if total < len(words) {
		total = len(words)
	}
	colors := t.Gradient(total)
	for i, w := range words {
		words[i] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colors[i])).Render(w)
	}
	return strings.Join(words, " ")
}
