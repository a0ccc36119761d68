// Package analysis groups the structural checks run over a tour graph.
//
// Each subpackage is a pure function of a [graph.Graph]:
//
//   - integrity: dangling hotspots, missing floors, undefined start scene,
//     isolated scenes
//   - connectivity: reachability from the start scene, dead ends, scenes with
//     no way back, strongly-connected components
//   - floors: per-floor scene and hotspot counts
//
// None of them mutates the graph or stops at the first finding, so they can
// run in any order, and independent graphs can be analysed concurrently.
//
// [graph.Graph]: github.com/matzehuels/panotour/pkg/graph.Graph
package analysis
