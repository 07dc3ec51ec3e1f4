// Package overlay holds modal widgets drawn over the player.
package overlay

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var pickerBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorIris).
	Padding(1, 2)

var pickerTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorIris).
	MarginBottom(1)

var pickerSearchStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorFoam).
	Padding(0, 1).
	MarginBottom(1)

var pickerItemStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Foreground(colorText)

var pickerSelectedItemStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Background(colorFoam).
	Foreground(colorBase)

var pickerHintStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	MarginTop(1)

// Picker is a filterable list of preset names.
type Picker struct {
	title     string
	items     []string
	filtered  []string
	selected  int
	query     string
	width     int
	submitted bool
	cancelled bool
}

// NewPicker creates a picker over items with current preselected.
func NewPicker(title string, items []string, current string) *Picker {
	p := &Picker{
		title: title,
		items: append([]string(nil), items...),
		width: 40,
	}
	p.applyFilter()
	for i, item := range p.filtered {
		if item == current {
			p.selected = i
		}
	}
	return p
}

// HandleKeyPress processes input. Returns true when the picker should close.
func (p *Picker) HandleKeyPress(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "esc", "ctrl+c":
		p.cancelled = true
		return true
	case "enter":
		p.submitted = true
		return true
	case "up", "shift+tab":
		if p.selected > 0 {
			p.selected--
		}
	case "down", "tab":
		if p.selected < len(p.filtered)-1 {
			p.selected++
		}
	case "backspace":
		if len(p.query) > 0 {
			runes := []rune(p.query)
			p.query = string(runes[:len(runes)-1])
			p.applyFilter()
		}
	default:
		if msg.Type == tea.KeyRunes {
			p.query += string(msg.Runes)
			p.applyFilter()
		}
	}
	return false
}

func (p *Picker) applyFilter() {
	query := strings.ToLower(p.query)
	p.filtered = p.filtered[:0]
	for _, item := range p.items {
		if query == "" || strings.Contains(strings.ToLower(item), query) {
			p.filtered = append(p.filtered, item)
		}
	}
	p.selected = max(0, min(p.selected, len(p.filtered)-1))
}

// Value returns the chosen name, or "" if the picker was cancelled or
// nothing matches.
func (p *Picker) Value() string {
	if p.cancelled || !p.submitted || len(p.filtered) == 0 {
		return ""
	}
	return p.filtered[p.selected]
}

// SetWidth sets the outer width of the rendered box.
func (p *Picker) SetWidth(width int) {
	p.width = width
}

// Render draws the picker.
func (p *Picker) Render() string {
	var b strings.Builder

	b.WriteString(pickerTitleStyle.Render(p.title))
	b.WriteString("\n")

	innerWidth := max(p.width-8, 10) // borders + padding
	search := p.query
	if search == "" {
		search = "type to filter..."
	}
	b.WriteString(pickerSearchStyle.Width(innerWidth).Render(search))
	b.WriteString("\n")

	if len(p.filtered) == 0 {
		b.WriteString(pickerHintStyle.Render("  No matches"))
		b.WriteString("\n")
	}
	for i, item := range p.filtered {
		if i == p.selected {
			b.WriteString(pickerSelectedItemStyle.Width(innerWidth).Render("▸ " + item))
		} else {
			b.WriteString(pickerItemStyle.Width(innerWidth).Render("  " + item))
		}
		b.WriteString("\n")
	}

	b.WriteString(pickerHintStyle.Render("↑↓ navigate • enter play • esc cancel"))

	return pickerBorderStyle.Width(p.width).Render(b.String())
}
