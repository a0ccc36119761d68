package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/panotour/pkg/analysis/floors"
	"github.com/matzehuels/panotour/pkg/report"
)

// headerRow is the row index lipgloss tables pass to StyleFunc for headers.
const headerRow = -1

// renderSummary formats a report for the terminal.
func renderSummary(rep *report.Report) string {
	var b strings.Builder

	title := "Tour summary"
	if rep.Source != "" {
		title += " " + StyleDim.Render(rep.Source)
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n\n")

	sum := rep.Summary
	conn := rep.Connectivity
	writeKV(&b, "Scenes", strconv.Itoa(sum.SceneCount))
	writeKV(&b, "Hotspots", fmt.Sprintf("%d (%s)", sum.HotspotCount, formatTypes(sum.HotspotTypes)))
	writeKV(&b, "Links", strconv.Itoa(sum.LinkCount))
	start := conn.Start
	switch {
	case start == "":
		start = StyleDim.Render("none")
	case conn.StartFallback:
		start += StyleDim.Render(" (first scene, configured start unavailable)")
	}
	writeKV(&b, "Start", start)
	if sum.TransitionDuration > 0 {
		writeKV(&b, "Transition", fmt.Sprintf("%gms", sum.TransitionDuration))
	}
	if sum.MostConnected != nil {
		writeKV(&b, "Most links", fmt.Sprintf("%s (%d)", sum.MostConnected.ID, sum.MostConnected.Links))
		writeKV(&b, "Fewest links", fmt.Sprintf("%s (%d)", sum.LeastConnected.ID, sum.LeastConnected.Links))
	}

	if len(sum.Floors) > 0 {
		b.WriteString("\n")
		b.WriteString(floorTable(sum.Floors, sum.FloorTotal))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleTitle.Render("Connectivity"))
	b.WriteString("\n")
	writeKV(&b, "Reachable", fmt.Sprintf("%d/%d", len(conn.Reachable), sum.SceneCount))
	writeList(&b, "Unreachable", conn.Unreachable)
	writeList(&b, "Dead ends", conn.DeadEnds)
	writeList(&b, "No return", conn.NoReturnPath)
	writeKV(&b, "Components", fmt.Sprintf("%d (largest %.0f%%)", len(conn.Components), conn.LargestComponentRatio*100))
	writeKV(&b, "One-way", strconv.Itoa(len(conn.OneWayLinks)))

	b.WriteString("\n")
	if rep.IssueCount() == 0 {
		b.WriteString(markOK + " " + StyleSuccess.Render("No issues found"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Issues (%d)", rep.IssueCount())))
	b.WriteString("\n")
	b.WriteString(issueTable(rep))
	b.WriteString("\n")
	return b.String()
}

func writeKV(b *strings.Builder, key, value string) {
	b.WriteString(styleKey.Render(key) + " " + StyleValue.Render(value) + "\n")
}

// writeList prints a count and the ids, or a dim "none".
func writeList(b *strings.Builder, key string, ids []string) {
	if len(ids) == 0 {
		writeKV(b, key, StyleDim.Render("none"))
		return
	}
	writeKV(b, key, StyleWarning.Render(fmt.Sprintf("%d: %s", len(ids), strings.Join(ids, ", "))))
}

func formatTypes(types map[string]int) string {
	if len(types) == 0 {
		return "none"
	}
	names := make([]string, 0, len(types))
	for k := range types {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s %d", k, types[k])
	}
	return strings.Join(parts, ", ")
}

func floorTable(rows []floors.Row, total floors.Stats) string {
	data := make([][]string, 0, len(rows)+1)
	for _, r := range rows {
		data = append(data, floorCells(r.Floor.String(), r.Stats))
	}
	data = append(data, floorCells("total", total))

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("Floor", "Scenes", "Hotspots", "Links", "Avg out", "Share").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case row == len(data)-1:
				return lipgloss.NewStyle().Bold(true)
			case col > 0:
				return lipgloss.NewStyle().Foreground(colorAccent).Align(lipgloss.Right)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func floorCells(label string, st floors.Stats) []string {
	return []string{
		label,
		strconv.Itoa(st.SceneCount),
		strconv.Itoa(st.HotspotCount),
		strconv.Itoa(st.LinkCount),
		fmt.Sprintf("%.2f", st.AverageOutDegree),
		fmt.Sprintf("%.1f%%", st.Share*100),
	}
}

func issueTable(rep *report.Report) string {
	var data [][]string
	for _, pe := range rep.ParseErrors {
		data = append(data, []string{string(pe.Kind), sceneLabel(pe.SceneID, pe.Index), pe.Reason})
	}
	for _, is := range rep.IntegrityIssues {
		data = append(data, []string{string(is.Kind), is.SceneID, is.Message})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("Kind", "Scene", "Detail").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			if col == 0 {
				return StyleError
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func sceneLabel(id string, index int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("#%d", index)
}
