// Package graph builds the directed graph of a panorama tour.
//
// # Overview
//
// Scenes are nodes and navigation hotspots are edges from the scene that
// hosts the hotspot to the scene it opens. Unlike a dependency graph, a tour
// graph is expected to contain cycles (two rooms linking to each other),
// self-loops and parallel edges (two doors into the same hall). Targets that
// do not name a loaded scene are kept as dangling edges so the integrity
// checker can report them; the graph never repairs anything.
//
// # Basic Usage
//
//	t, _ := io.ImportTour("tour-config.json")
//	g := graph.Build(t)
//	for _, id := range g.SceneIDs() {
//	    fmt.Println(id, g.Successors(id))
//	}
//
// # Views
//
// [Graph.View] produces the node/edge list external visualization tools
// consume, and [FromView] turns such a list back into a graph with the same
// adjacency.
package graph
