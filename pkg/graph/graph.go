package graph

import (
	"errors"
	"slices"

	"github.com/matzehuels/panotour/pkg/tour"
)

var (
	// ErrInvalidSceneID is returned by [Graph.AddScene] when the scene ID is
	// empty.
	ErrInvalidSceneID = errors.New("scene ID must not be empty")

	// ErrDuplicateSceneID is returned by [Graph.AddScene] when a scene with
	// the same ID is already part of the graph.
	ErrDuplicateSceneID = errors.New("duplicate scene ID")

	// ErrUnknownSourceScene is returned by [Graph.AddEdge] when the From
	// scene does not exist. Unknown targets are accepted: they are dangling
	// edges, reported by the integrity checker.
	ErrUnknownSourceScene = errors.New("unknown source scene")
)

// Edge is one navigation hotspot seen as a directed connection.
// Index is the position of the hotspot in the source scene's Hotspots,
// counting info hotspots too.
type Edge struct {
	From    string
	To      string
	Index   int
	Hotspot tour.Hotspot
}

// Graph is the directed tour graph: scenes are nodes, navigation hotspots are
// edges. Cycles, self-loops, parallel edges and dangling targets are all
// allowed.
//
// Scenes keep declaration order and edges keep hotspot order, so every
// traversal over a Graph is deterministic. Graph is not safe for concurrent
// modification; a built graph may be read from many goroutines.
type Graph struct {
	order    []string
	scenes   map[string]*tour.Scene
	settings tour.Settings
	edges    []Edge
	outgoing map[string][]string // sceneID -> target IDs, hotspot order
	incoming map[string][]string // sceneID -> source IDs, edge order
	bySource map[string][]int    // sceneID -> indexes into edges
}

// New creates an empty graph carrying the given tour settings.
func New(settings tour.Settings) *Graph {
	return &Graph{
		scenes:   make(map[string]*tour.Scene),
		settings: settings,
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		bySource: make(map[string][]int),
	}
}

// Build turns a loaded tour into its graph. Each scene's navigation hotspots
// are appended in declaration order; duplicates are kept as parallel edges.
// Build is pure: the same tour always yields the same graph.
func Build(t *tour.Tour) *Graph {
	g := New(t.Settings)
	for _, s := range t.Scenes {
		// Tour guarantees unique, non-empty ids.
		_ = g.AddScene(s)
	}
	for _, s := range t.Scenes {
		for i, h := range s.Hotspots {
			if !h.IsLink() {
				continue
			}
			_ = g.AddEdge(Edge{From: s.ID, To: h.TargetSceneID, Index: i, Hotspot: h})
		}
	}
	return g
}

// AddScene adds a scene node.
func (g *Graph) AddScene(s *tour.Scene) error {
	if s.ID == "" {
		return ErrInvalidSceneID
	}
	if _, exists := g.scenes[s.ID]; exists {
		return ErrDuplicateSceneID
	}
	g.scenes[s.ID] = s
	g.order = append(g.order, s.ID)
	return nil
}

// AddEdge adds a directed edge from an existing scene. The target does not
// have to exist.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.scenes[e.From]; !ok {
		return ErrUnknownSourceScene
	}
	g.bySource[e.From] = append(g.bySource[e.From], len(g.edges))
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Settings returns the tour settings the graph was built with.
func (g *Graph) Settings() tour.Settings { return g.settings }

// Scenes returns all scenes in declaration order.
func (g *Graph) Scenes() []*tour.Scene {
	scenes := make([]*tour.Scene, len(g.order))
	for i, id := range g.order {
		scenes[i] = g.scenes[id]
	}
	return scenes
}

// SceneIDs returns all scene IDs in declaration order.
func (g *Graph) SceneIDs() []string { return slices.Clone(g.order) }

// Scene returns the scene with the given ID.
func (g *Graph) Scene(id string) (*tour.Scene, bool) {
	s, ok := g.scenes[id]
	return s, ok
}

// HasScene reports whether id names a scene of the graph.
func (g *Graph) HasScene(id string) bool {
	_, ok := g.scenes[id]
	return ok
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// EdgesFrom returns the edges leaving the scene, in hotspot order.
func (g *Graph) EdgesFrom(id string) []Edge {
	idx := g.bySource[id]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Edge, len(idx))
	for i, j := range idx {
		out[i] = g.edges[j]
	}
	return out
}

// SceneCount returns the number of scenes.
func (g *Graph) SceneCount() int { return len(g.order) }

// EdgeCount returns the number of edges, dangling ones included.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the target IDs of the scene's edges in hotspot order.
// The returned slice should not be modified.
func (g *Graph) Successors(id string) []string { return g.outgoing[id] }

// Predecessors returns the source IDs of edges pointing at id.
// The returned slice should not be modified.
func (g *Graph) Predecessors(id string) []string { return g.incoming[id] }

// OutDegree returns the number of edges leaving the scene.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of edges pointing at the scene.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// IsDangling reports whether the edge target is not a scene of the graph.
func (g *Graph) IsDangling(e Edge) bool { return !g.HasScene(e.To) }

// Adjacency returns a copy of the adjacency view: every scene ID mapped to
// its ordered targets. Scenes without edges map to an empty slice.
func (g *Graph) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.order))
	for _, id := range g.order {
		adj[id] = append([]string{}, g.outgoing[id]...)
	}
	return adj
}

// Sinks returns the IDs of scenes without outgoing edges, in declaration
// order.
func (g *Graph) Sinks() []string {
	var sinks []string
	for _, id := range g.order {
		if len(g.outgoing[id]) == 0 {
			sinks = append(sinks, id)
		}
	}
	return sinks
}

// EffectiveFloor returns the scene's floor, falling back to the default floor.
func (g *Graph) EffectiveFloor(s *tour.Scene) tour.Floor {
	if s.Floor.IsSet() {
		return s.Floor
	}
	return g.settings.DefaultFloor
}

// PosMap maps each ID to its index in ids.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
