// Package nodelink turns tour graph views into Graphviz node-link data.
//
// # Overview
//
// [ToDOT] produces DOT source for a [graph.View]: one box per scene, one
// arrow per navigation hotspot, the start scene highlighted and, optionally,
// one cluster per floor. Hotspots that point at missing scenes end in dashed
// red placeholder nodes.
//
//	dot := nodelink.ToDOT(r.GraphView, nodelink.Options{Start: "lobby", GroupFloors: true})
//
// # Layout
//
// [Layout] runs the Graphviz dot engine in-process and copies the computed
// node centers into the view's x/y fields, so external plotting tools can
// place scenes without running Graphviz themselves:
//
//	v, err := nodelink.Layout(ctx, r.GraphView, nodelink.Options{})
//
// Nothing is drawn here; positions are data.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process layout.
package nodelink
