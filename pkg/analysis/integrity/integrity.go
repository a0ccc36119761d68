// Package integrity finds broken references and unassigned data in a tour
// graph.
package integrity

import (
	"fmt"

	"github.com/matzehuels/panotour/pkg/graph"
)

// Kind classifies an integrity issue.
type Kind string

const (
	// DanglingHotspot is an edge whose target is not a loaded scene.
	DanglingHotspot Kind = "DanglingHotspot"
	// UnassignedFloor is a scene with no floor and no default floor.
	UnassignedFloor Kind = "UnassignedFloor"
	// UndefinedStartScene means the settings name no start scene, or one
	// that does not exist.
	UndefinedStartScene Kind = "UndefinedStartScene"
	// IsolatedScene is a scene with neither outgoing nor incoming edges.
	IsolatedScene Kind = "IsolatedScene"
)

// Issue is one diagnostic finding. HotspotIndex is set for dangling
// hotspots only.
type Issue struct {
	Kind         Kind   `json:"kind" yaml:"kind"`
	SceneID      string `json:"sceneId,omitempty" yaml:"sceneId,omitempty"`
	TargetID     string `json:"targetId,omitempty" yaml:"targetId,omitempty"`
	HotspotIndex *int   `json:"hotspotIndex,omitempty" yaml:"hotspotIndex,omitempty"`
	Text         string `json:"text,omitempty" yaml:"text,omitempty"`
	Message      string `json:"message" yaml:"message"`
}

// Check scans g once and returns every issue found. The tour-level start
// scene issue comes first, then scene issues in declaration order, with
// dangling hotspots in hotspot order within a scene.
func Check(g *graph.Graph) []Issue {
	var issues []Issue

	if start := g.Settings().StartSceneID; start == "" {
		issues = append(issues, Issue{
			Kind:    UndefinedStartScene,
			Message: "no start scene is configured",
		})
	} else if !g.HasScene(start) {
		issues = append(issues, Issue{
			Kind:     UndefinedStartScene,
			TargetID: start,
			Message:  fmt.Sprintf("start scene %q does not exist", start),
		})
	}

	for _, s := range g.Scenes() {
		for _, e := range g.EdgesFrom(s.ID) {
			if !g.IsDangling(e) {
				continue
			}
			idx := e.Index
			issues = append(issues, Issue{
				Kind:         DanglingHotspot,
				SceneID:      s.ID,
				TargetID:     e.To,
				HotspotIndex: &idx,
				Text:         e.Hotspot.Text,
				Message:      fmt.Sprintf("hotspot %q in %s points to missing scene %q", e.Hotspot.Text, s.ID, e.To),
			})
		}

		if !g.EffectiveFloor(s).IsSet() {
			issues = append(issues, Issue{
				Kind:    UnassignedFloor,
				SceneID: s.ID,
				Message: fmt.Sprintf("scene %s has no floor and no default floor applies", s.ID),
			})
		}

		if g.OutDegree(s.ID) == 0 && g.InDegree(s.ID) == 0 {
			issues = append(issues, Issue{
				Kind:    IsolatedScene,
				SceneID: s.ID,
				Message: fmt.Sprintf("scene %s has no hotspots and no hotspot leads to it", s.ID),
			})
		}
	}

	return issues
}

// Count returns the number of issues of the given kind.
func Count(issues []Issue, kind Kind) int {
	n := 0
	for _, is := range issues {
		if is.Kind == kind {
			n++
		}
	}
	return n
}
