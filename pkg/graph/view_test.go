package graph

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/panotour/pkg/tour"
)

func TestView(t *testing.T) {
	a := scene("a", "b", "z")
	a.Floor = tour.FloorOf(1)
	a.Title = "Lobby"
	g := Build(tour.FromScenes(tour.Settings{}, a, scene("b", "a")))

	v := g.View()

	wantNodes := []ViewNode{
		{ID: "a", Floor: tour.FloorOf(1), Title: "Lobby"},
		{ID: "b"},
	}
	if !reflect.DeepEqual(v.Nodes, wantNodes) {
		t.Errorf("Nodes = %+v, want %+v", v.Nodes, wantNodes)
	}
	wantEdges := []ViewEdge{{"a", "b"}, {"a", "z"}, {"b", "a"}}
	if !reflect.DeepEqual(v.Edges, wantEdges) {
		t.Errorf("Edges = %+v, want %+v", v.Edges, wantEdges)
	}
}

func TestView_UsesDefaultFloor(t *testing.T) {
	g := Build(tour.FromScenes(tour.Settings{DefaultFloor: tour.FloorOf(3)}, scene("a")))
	if got := g.View().Nodes[0].Floor; got != tour.FloorOf(3) {
		t.Errorf("node floor = %v, want 3", got)
	}
}

func TestFromView_Errors(t *testing.T) {
	tests := []struct {
		name string
		view View
	}{
		{"empty node id", View{Nodes: []ViewNode{{ID: ""}}}},
		{"duplicate node", View{Nodes: []ViewNode{{ID: "a"}, {ID: "a"}}}},
		{"unknown source", View{Nodes: []ViewNode{{ID: "a"}}, Edges: []ViewEdge{{From: "x", To: "a"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromView(tt.view); err == nil {
				t.Error("FromView() should fail")
			}
		})
	}
}

// TestViewRoundTrip checks that feeding a graph's view back through the
// builder reproduces the adjacency, for arbitrary graphs with cycles,
// self-loops, parallel and dangling edges.
func TestViewRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("FromView(View(g)) has the same adjacency", prop.ForAll(
		func(sceneCount int, sources, targets []int) bool {
			g := randomGraph(sceneCount, sources, targets)
			back, err := FromView(g.View())
			if err != nil {
				return false
			}
			return reflect.DeepEqual(g.Adjacency(), back.Adjacency()) &&
				reflect.DeepEqual(g.View(), back.View())
		},
		gen.IntRange(1, 12),
		gen.SliceOfN(30, gen.IntRange(0, 11)),
		gen.SliceOfN(30, gen.IntRange(0, 13)),
	))

	properties.TestingRun(t)
}

// randomGraph builds a graph of n scenes s0..s(n-1). Edge i goes from
// sources[i] to targets[i]; indexes past n become dangling targets.
func randomGraph(n int, sources, targets []int) *Graph {
	scenes := make([]*tour.Scene, n)
	for i := range scenes {
		scenes[i] = scene(fmt.Sprintf("s%d", i))
		if i%3 == 0 {
			scenes[i].Floor = tour.FloorOf(i / 3)
		}
	}
	for i := range sources {
		if i >= len(targets) {
			break
		}
		from := scenes[sources[i]%n]
		to := fmt.Sprintf("s%d", targets[i])
		from.Hotspots = append(from.Hotspots, tour.Hotspot{TargetSceneID: to})
	}
	return Build(tour.FromScenes(tour.Settings{}, scenes...))
}
