package utils

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	ColorHeader  = lipgloss.Color("13")
	ColorBlue    = lipgloss.Color("12")
	ColorGreen   = lipgloss.Color("10")
	ColorWarning = lipgloss.Color("11")
	ColorFail    = lipgloss.Color("9")
)

// Palette holds the console styles for one output stream. Colors are dropped
// when the stream is not a terminal or when color is disabled.
type Palette struct {
	Header  lipgloss.Style
	Info    lipgloss.Style
	OK      lipgloss.Style
	Warning lipgloss.Style
	Fail    lipgloss.Style
}

func NewPalette(w io.Writer, color bool) Palette {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return Palette{
		Header:  r.NewStyle().Foreground(ColorHeader),
		Info:    r.NewStyle().Foreground(ColorBlue),
		OK:      r.NewStyle().Foreground(ColorGreen),
		Warning: r.NewStyle().Foreground(ColorWarning),
		Fail:    r.NewStyle().Foreground(ColorFail),
	}
}

// Colorize renders a single line of text with style.
func Colorize(text string, style lipgloss.Style) string {
	return style.Render(text)
}
