package graph

import (
	"fmt"

	"github.com/matzehuels/panotour/pkg/tour"
)

// ViewNode is one scene in a [View].
// X and Y are only set when a layout engine computed positions.
type ViewNode struct {
	ID    string     `json:"id" yaml:"id"`
	Floor tour.Floor `json:"floor" yaml:"floor"`
	Title string     `json:"title,omitempty" yaml:"title,omitempty"`
	X     *float64   `json:"x,omitempty" yaml:"x,omitempty"`
	Y     *float64   `json:"y,omitempty" yaml:"y,omitempty"`
}

// ViewEdge is one navigation hotspot in a [View].
type ViewEdge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// View is a presentation-agnostic description of the tour graph for external
// visualization: structure only, no drawing instructions.
type View struct {
	Nodes []ViewNode `json:"nodes" yaml:"nodes"`
	Edges []ViewEdge `json:"edges" yaml:"edges"`
}

// View describes g. Nodes follow declaration order with their effective
// floor; edges follow hotspot order and include dangling targets, so
// [FromView] reproduces the same adjacency.
func (g *Graph) View() View {
	v := View{
		Nodes: make([]ViewNode, 0, len(g.order)),
		Edges: make([]ViewEdge, 0, len(g.edges)),
	}
	for _, s := range g.Scenes() {
		v.Nodes = append(v.Nodes, ViewNode{ID: s.ID, Floor: g.EffectiveFloor(s), Title: s.Title})
	}
	for _, e := range g.edges {
		v.Edges = append(v.Edges, ViewEdge{From: e.From, To: e.To})
	}
	return v
}

// FromView rebuilds a graph from a view. Node floors become scene floors;
// edges become navigation hotspots in the order given.
func FromView(v View) (*Graph, error) {
	g := New(tour.Settings{})
	for _, n := range v.Nodes {
		s := &tour.Scene{ID: n.ID, Title: n.Title, Floor: n.Floor}
		if err := g.AddScene(s); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	next := make(map[string]int)
	for _, e := range v.Edges {
		h := tour.Hotspot{Type: tour.HotspotTypeScene, TargetSceneID: e.To}
		if err := g.AddEdge(Edge{From: e.From, To: e.To, Index: next[e.From], Hotspot: h}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
		if s, ok := g.scenes[e.From]; ok {
			s.Hotspots = append(s.Hotspots, h)
		}
		next[e.From]++
	}
	return g, nil
}
