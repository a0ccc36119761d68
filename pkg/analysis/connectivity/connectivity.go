// Package connectivity computes reachability, dead ends, return paths and
// strongly connected components of a tour graph.
//
// Every traversal keeps an explicit visited set and ignores dangling targets,
// so cycles and self-loops terminate in O(scenes + hotspots).
package connectivity

import (
	"slices"

	"github.com/matzehuels/panotour/pkg/graph"
)

// Link is a directed connection between two existing scenes.
type Link struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Result holds the connectivity findings for one start scene. All scene
// lists are in declaration order.
type Result struct {
	// Start is the scene the traversal began at. Empty only for a tour
	// without scenes.
	Start string `json:"start" yaml:"start"`
	// StartFallback is true when the requested start scene was missing or
	// did not resolve and the first declared scene was used instead.
	StartFallback bool `json:"startFallback" yaml:"startFallback"`

	Reachable    []string `json:"reachable" yaml:"reachable"`
	Unreachable  []string `json:"unreachable" yaml:"unreachable"`
	DeadEnds     []string `json:"deadEnds" yaml:"deadEnds"`
	NoReturnPath []string `json:"noReturnPath" yaml:"noReturnPath"`

	// Components are the strongly connected components, largest first.
	Components            [][]string `json:"components" yaml:"components"`
	LargestComponentRatio float64    `json:"largestComponentRatio" yaml:"largestComponentRatio"`

	// OneWayLinks are scene pairs linked in one direction only.
	OneWayLinks []Link `json:"oneWayLinks" yaml:"oneWayLinks"`
}

// Analyze runs the connectivity analysis from start. An empty start uses the
// tour's configured start scene. When the start does not resolve, the first
// declared scene is used and Result.StartFallback is set.
func Analyze(g *graph.Graph, start string) Result {
	r := Result{
		Reachable:    []string{},
		Unreachable:  []string{},
		DeadEnds:     []string{},
		NoReturnPath: []string{},
		Components:   [][]string{},
		OneWayLinks:  []Link{},
	}

	ids := g.SceneIDs()
	if len(ids) == 0 {
		return r
	}
	r.Start, r.StartFallback = ResolveStart(g, start)

	forward := Reachable(g, r.Start)
	backward := reverseReachable(g, r.Start)

	for _, id := range ids {
		if forward[id] {
			r.Reachable = append(r.Reachable, id)
		} else {
			r.Unreachable = append(r.Unreachable, id)
		}

		if g.OutDegree(id) == 0 {
			r.DeadEnds = append(r.DeadEnds, id)
			continue
		}
		if forward[id] && !slices.ContainsFunc(g.Successors(id), func(t string) bool { return backward[t] }) {
			r.NoReturnPath = append(r.NoReturnPath, id)
		}
	}

	r.Components = Components(g)
	r.LargestComponentRatio = float64(len(r.Components[0])) / float64(len(ids))
	r.OneWayLinks = OneWayLinks(g)
	return r
}

// ResolveStart picks the traversal root. It returns the first declared
// scene and true when start (or, if empty, the configured start scene) is
// not a scene of g.
func ResolveStart(g *graph.Graph, start string) (string, bool) {
	if start == "" {
		start = g.Settings().StartSceneID
	}
	if g.HasScene(start) {
		return start, false
	}
	ids := g.SceneIDs()
	if len(ids) == 0 {
		return "", true
	}
	return ids[0], true
}

// Reachable returns the set of scenes reachable from start by a breadth-first
// traversal, start included. Dangling targets are not part of the set.
func Reachable(g *graph.Graph, start string) map[string]bool {
	return bfs(start, g.HasScene, g.Successors)
}

func reverseReachable(g *graph.Graph, start string) map[string]bool {
	return bfs(start, g.HasScene, g.Predecessors)
}

func bfs(start string, exists func(string) bool, next func(string) []string) map[string]bool {
	visited := make(map[string]bool)
	if !exists(start) {
		return visited
	}
	visited[start] = true
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, n := range next(id) {
			if visited[n] || !exists(n) {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return visited
}

// Components returns the strongly connected components of g using Tarjan's
// algorithm. Components are ordered by size descending, ties broken by the
// declaration position of their first scene; members keep declaration order.
func Components(g *graph.Graph) [][]string {
	ids := g.SceneIDs()
	pos := graph.PosMap(ids)

	var (
		index   = make(map[string]int, len(ids))
		lowlink = make(map[string]int, len(ids))
		onStack = make(map[string]bool, len(ids))
		stack   []string
		next    int
		comps   [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Successors(v) {
			if !g.HasScene(w) {
				continue
			}
			if _, seen := index[w]; !seen {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], index[w])
			}
		}

		if lowlink[v] != index[v] {
			return
		}
		var comp []string
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		slices.SortFunc(comp, func(a, b string) int { return pos[a] - pos[b] })
		comps = append(comps, comp)
	}

	for _, id := range ids {
		if _, seen := index[id]; !seen {
			strongConnect(id)
		}
	}

	slices.SortStableFunc(comps, func(a, b []string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return pos[a[0]] - pos[b[0]]
	})
	return comps
}

// OneWayLinks returns each pair s->t of distinct existing scenes where t has
// no hotspot back to s. Pairs are listed once, in edge order.
func OneWayLinks(g *graph.Graph) []Link {
	links := []Link{}
	seen := make(map[Link]bool)
	for _, e := range g.Edges() {
		l := Link{From: e.From, To: e.To}
		if e.From == e.To || seen[l] || !g.HasScene(e.To) {
			continue
		}
		seen[l] = true
		if !slices.Contains(g.Successors(e.To), e.From) {
			links = append(links, l)
		}
	}
	return links
}
