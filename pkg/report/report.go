// Package report assembles the integrity, connectivity and floor analyses of
// a tour into one structured document.
//
// The JSON field names are consumed by external table and plotting tools and
// must stay stable.
package report

import (
	"io"

	"github.com/matzehuels/panotour/pkg/analysis/connectivity"
	"github.com/matzehuels/panotour/pkg/analysis/floors"
	"github.com/matzehuels/panotour/pkg/analysis/integrity"
	"github.com/matzehuels/panotour/pkg/graph"
	pio "github.com/matzehuels/panotour/pkg/io"
	"github.com/matzehuels/panotour/pkg/tour"
)

// SceneDegree names a scene with its navigation hotspot count.
type SceneDegree struct {
	ID    string `json:"id" yaml:"id"`
	Links int    `json:"links" yaml:"links"`
}

// Summary holds whole-tour counts.
type Summary struct {
	SceneCount         int            `json:"sceneCount" yaml:"sceneCount"`
	HotspotCount       int            `json:"hotspotCount" yaml:"hotspotCount"`
	LinkCount          int            `json:"linkCount" yaml:"linkCount"`
	StartSceneID       string         `json:"startSceneId,omitempty" yaml:"startSceneId,omitempty"`
	TransitionDuration float64        `json:"transitionDuration,omitempty" yaml:"transitionDuration,omitempty"`
	HotspotTypes       map[string]int `json:"hotspotTypes" yaml:"hotspotTypes"`
	MostConnected      *SceneDegree   `json:"mostConnected,omitempty" yaml:"mostConnected,omitempty"`
	LeastConnected     *SceneDegree   `json:"leastConnected,omitempty" yaml:"leastConnected,omitempty"`
	Floors             []floors.Row   `json:"floors" yaml:"floors"`
	FloorTotal         floors.Stats   `json:"floorTotal" yaml:"floorTotal"`
}

// Report is the complete analysis of one tour document.
type Report struct {
	Source          string              `json:"source,omitempty" yaml:"source,omitempty"`
	Summary         Summary             `json:"summary" yaml:"summary"`
	ParseErrors     []tour.ParseError   `json:"parseErrors" yaml:"parseErrors"`
	IntegrityIssues []integrity.Issue   `json:"integrityIssues" yaml:"integrityIssues"`
	Connectivity    connectivity.Result `json:"connectivity" yaml:"connectivity"`
	GraphView       graph.View          `json:"graphView" yaml:"graphView"`
}

// Options tune report generation.
type Options struct {
	// Source labels the analysed document, usually its path.
	Source string
	// Start overrides the configured start scene for the connectivity
	// analysis.
	Start string
}

// Generate builds the graph of t and runs every analysis on it.
func Generate(t *tour.Tour, opts Options) *Report {
	return FromGraph(graph.Build(t), t.ParseErrors, opts)
}

// FromGraph runs every analysis on an already built graph. parseErrors are
// copied into the report as is.
func FromGraph(g *graph.Graph, parseErrors []tour.ParseError, opts Options) *Report {
	fl := floors.Aggregate(g)

	r := &Report{
		Source: opts.Source,
		Summary: Summary{
			SceneCount:         g.SceneCount(),
			HotspotCount:       fl.Total.HotspotCount,
			LinkCount:          g.EdgeCount(),
			StartSceneID:       g.Settings().StartSceneID,
			TransitionDuration: g.Settings().TransitionDuration,
			HotspotTypes:       hotspotTypes(g),
			Floors:             fl.Floors,
			FloorTotal:         fl.Total,
		},
		ParseErrors:     append([]tour.ParseError{}, parseErrors...),
		IntegrityIssues: integrity.Check(g),
		Connectivity:    connectivity.Analyze(g, opts.Start),
		GraphView:       g.View(),
	}
	if r.IntegrityIssues == nil {
		r.IntegrityIssues = []integrity.Issue{}
	}
	r.Summary.MostConnected, r.Summary.LeastConnected = extremes(g)
	return r
}

func hotspotTypes(g *graph.Graph) map[string]int {
	types := make(map[string]int)
	for _, s := range g.Scenes() {
		for _, h := range s.Hotspots {
			types[h.Kind()]++
		}
	}
	return types
}

// extremes returns the scenes with the most and the fewest navigation
// hotspots. The first declared scene wins ties.
func extremes(g *graph.Graph) (most, least *SceneDegree) {
	for _, id := range g.SceneIDs() {
		d := g.OutDegree(id)
		if most == nil || d > most.Links {
			most = &SceneDegree{ID: id, Links: d}
		}
		if least == nil || d < least.Links {
			least = &SceneDegree{ID: id, Links: d}
		}
	}
	return most, least
}

// IssueCount returns the number of parse errors and integrity issues.
func (r *Report) IssueCount() int {
	return len(r.ParseErrors) + len(r.IntegrityIssues)
}

// Write encodes the report as indented JSON or YAML.
func (r *Report) Write(w io.Writer, format pio.Format) error {
	return pio.Encode(r, w, format)
}
