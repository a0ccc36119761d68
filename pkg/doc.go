// Package pkg holds the panotour libraries.
//
// # Overview
//
// panotour loads the scene list of a 360° panorama tour, builds the
// navigation graph its hotspots describe, and reports structural problems:
// broken links, unreachable scenes, dead ends, and per-floor statistics.
//
// The data flow:
//
//	tour document (JSON or YAML)
//	         ↓
//	    [io] decode, keeping malformed records as parse errors
//	         ↓
//	    [tour] scenes, hotspots, settings
//	         ↓
//	    [graph] directed navigation graph, dangling edges kept
//	         ↓
//	    [analysis] integrity, connectivity, floors
//	         ↓
//	    [report] one document, written as JSON or YAML
//
// # Quick Start
//
//	t, err := io.ImportTour("tour.json")
//	if err != nil {
//	    return err
//	}
//	rep := report.Generate(t, report.Options{Source: "tour.json"})
//	fmt.Println(rep.Connectivity.Unreachable)
//
// [pipeline] wraps these steps with caching and observability hooks and is
// what the CLI and the HTTP server use.
//
// # Supporting Packages
//
// [cache] stores finished reports keyed by document hash, on disk or in
// Redis. [history] keeps past analyses for the HTTP API, in memory or in
// MongoDB. [metrics] exports Prometheus counters through the
// [observability] hooks. [render/nodelink] turns a report's graph view into
// Graphviz DOT.
package pkg
