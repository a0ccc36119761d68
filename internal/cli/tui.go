package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panotour/pkg/graph"
	"github.com/matzehuels/panotour/pkg/report"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorText)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorFaint)
	listMissingStyle  = lipgloss.NewStyle().Foreground(colorBad)
)

// browseCommand creates the interactive scene browser.
func (c *CLI) browseCommand() *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "browse [tour.json|tour.yaml]",
		Short: "Walk through the scenes of a tour interactively",
		Long: `Walk through the scenes of a tour by following its navigation hotspots.

Each scene shows its floor, its outgoing links and what the analysis found
about it. Links to scenes that do not exist are marked as missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			res, err := runner.AnalyzeFile(cmd.Context(), args[0], pipelineOptions(c, start))
			if err != nil {
				return err
			}
			m, err := NewSceneBrowserModel(res.Report)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start scene id (overrides the document setting)")
	return cmd
}

// =============================================================================
// SceneBrowserModel - Interactive scene graph walk
// =============================================================================

// SceneBrowserModel is the bubbletea model of the browse command.
type SceneBrowserModel struct {
	Report  *report.Report
	Current string
	Cursor  int
	History []string

	graph *graph.Graph
	flags map[string][]string
}

// NewSceneBrowserModel starts at the resolved start scene of rep.
func NewSceneBrowserModel(rep *report.Report) (SceneBrowserModel, error) {
	g, err := graph.FromView(rep.GraphView)
	if err != nil {
		return SceneBrowserModel{}, fmt.Errorf("rebuild graph: %w", err)
	}
	m := SceneBrowserModel{
		Report:  rep,
		Current: rep.Connectivity.Start,
		graph:   g,
		flags:   sceneFlags(rep),
	}
	return m, nil
}

// sceneFlags collects the analysis findings per scene.
func sceneFlags(rep *report.Report) map[string][]string {
	flags := make(map[string][]string)
	add := func(label string, ids []string) {
		for _, id := range ids {
			flags[id] = append(flags[id], label)
		}
	}
	if rep.Connectivity.Start != "" {
		add("start", []string{rep.Connectivity.Start})
	}
	add("unreachable", rep.Connectivity.Unreachable)
	add("dead end", rep.Connectivity.DeadEnds)
	add("no way back", rep.Connectivity.NoReturnPath)
	for _, is := range rep.IntegrityIssues {
		if is.SceneID != "" {
			flags[is.SceneID] = append(flags[is.SceneID], string(is.Kind))
		}
	}
	return flags
}

func (m SceneBrowserModel) Init() tea.Cmd {
	return nil
}

func (m SceneBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	links := m.graph.Successors(m.Current)

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(links)-1 {
			m.Cursor++
		}
	case "enter", "right", "l":
		if m.Cursor < len(links) && m.graph.HasScene(links[m.Cursor]) {
			m.visit(links[m.Cursor], true)
		}
	case "backspace", "left", "h":
		if n := len(m.History); n > 0 {
			prev := m.History[n-1]
			m.History = m.History[:n-1]
			m.visit(prev, false)
		}
	case "n", "p":
		ids := m.graph.SceneIDs()
		if len(ids) == 0 {
			break
		}
		i := slices.Index(ids, m.Current)
		if key.String() == "n" {
			i = (i + 1) % len(ids)
		} else {
			i = (i - 1 + len(ids)) % len(ids)
		}
		m.visit(ids[i], true)
	case "s":
		if start := m.Report.Connectivity.Start; start != "" {
			m.visit(start, true)
		}
	}
	return m, nil
}

func (m *SceneBrowserModel) visit(id string, record bool) {
	if record && m.Current != "" && id != m.Current {
		m.History = append(m.History, m.Current)
	}
	m.Current = id
	m.Cursor = 0
}

func (m SceneBrowserModel) View() string {
	var b strings.Builder

	if m.Current == "" {
		b.WriteString(StyleTitle.Render("Empty tour"))
		b.WriteString("\n\n")
		b.WriteString(listDimStyle.Render("q quit"))
		return b.String()
	}

	s, _ := m.graph.Scene(m.Current)
	title := s.ID
	if s.Title != "" {
		title += " " + listDimStyle.Render(s.Title)
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("floor %s", s.Floor)))
	if flags := m.flags[m.Current]; len(flags) > 0 {
		b.WriteString("  ")
		b.WriteString(StyleWarning.Render(strings.Join(flags, ", ")))
	}
	b.WriteString("\n\n")

	links := m.graph.Successors(m.Current)
	if len(links) == 0 {
		b.WriteString(listDimStyle.Render("  no navigation hotspots"))
		b.WriteString("\n")
	}
	for i, to := range links {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := cursor + to
		switch {
		case !m.graph.HasScene(to):
			b.WriteString(listMissingStyle.Render(line + " (missing)"))
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if n := len(m.History); n > 0 {
		b.WriteString(listDimStyle.Render("  from " + m.History[n-1]))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render("↑/↓ select  ⏎ follow  ← back  n/p next/prev scene  s start  q quit"))
	return b.String()
}
