// Package render groups the output renderers of tour graphs.
//
// Only node-link output exists today, see [nodelink]: Graphviz DOT text and
// dot-engine coordinates for the report's graph view.
package render
