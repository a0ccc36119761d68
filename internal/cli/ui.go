package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette shared by the summary, the scene browser and status lines.
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorBad    = lipgloss.Color("167")
	colorLink   = lipgloss.Color("75")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleDim     = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue   = lipgloss.NewStyle().Foreground(colorText)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorOK)
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)
	// StyleError marks problems found in a tour.
	StyleError = lipgloss.NewStyle().Foreground(colorBad)

	styleHeader  = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	styleKey     = lipgloss.NewStyle().Foreground(colorMuted).Width(14)
	styleCommand = lipgloss.NewStyle().Foreground(colorLink)
	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
)

// Marks in the first column of status lines.
var (
	markOK   = StyleSuccess.Render("✓")
	markInfo = lipgloss.NewStyle().Foreground(colorMuted).Render("›")
	markFile = StyleDim.Render("→")
)

// status writes one-line reports for humans. It goes to stderr and is
// never mixed into report output.
type status struct{ w io.Writer }

func (s status) line(mark, format string, args ...any) {
	fmt.Fprintf(s.w, "%s %s\n", mark, fmt.Sprintf(format, args...))
}

func (s status) ok(format string, args ...any) { s.line(markOK, format, args...) }
func (s status) info(format string, args ...any) { s.line(markInfo, format, args...) }

func (s status) detail(format string, args ...any) {
	fmt.Fprintln(s.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func (s status) file(path string) {
	fmt.Fprintln(s.w, "  "+markFile+" "+StyleValue.Render(path))
}

// counts writes e.g. "12 scenes · 20 links · 1 issue · cached".
func (s status) counts(scenes, links, issues int, cached bool) {
	origin := StyleDim.Render("fresh")
	if cached {
		origin = StyleSuccess.Render("cached")
	}
	parts := []string{
		StyleDim.Render(plural(scenes, "scene")),
		StyleDim.Render(plural(links, "link")),
		StyleDim.Render(plural(issues, "issue")),
		origin,
	}
	fmt.Fprintln(s.w, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

func (s status) next(description, cmd string) {
	fmt.Fprintln(s.w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
