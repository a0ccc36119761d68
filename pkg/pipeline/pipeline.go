// Package pipeline runs the complete analysis of a tour document.
//
// The same pipeline backs the CLI and the HTTP API so both produce identical
// reports for identical input:
//
//  1. Load: decode the document into a tour, collecting parse errors
//  2. Analyze: build the graph and run integrity, connectivity and floor analyses
//  3. Layout: optionally attach Graphviz positions to the graph view
//
// Reports are cached by document hash and the options that change them.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Analyze(ctx, pipeline.Options{
//	    Document: data,
//	    Source:   "tour.json",
//	})
//	if err != nil {
//	    return err // document-level failure
//	}
//	fmt.Println(result.Report.Summary.SceneCount)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panotour/pkg/cache"
	pio "github.com/matzehuels/panotour/pkg/io"
	"github.com/matzehuels/panotour/pkg/render/nodelink"
	"github.com/matzehuels/panotour/pkg/report"
)

// DefaultCacheTTL is how long cached reports stay valid.
const DefaultCacheTTL = 24 * time.Hour

// Output formats shared by the CLI and the API.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatDOT  = "dot"
)

// DefaultFormat is the default output format.
const DefaultFormat = FormatText

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatYAML: true,
	FormatDOT:  true,
}

// ValidateFormat checks that an output format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: text, json, yaml, dot)", format)
	}
	return nil
}

// Options configures one analysis run.
type Options struct {
	// Document is the raw tour document.
	Document []byte `json:"-"`
	// Source labels the document in the report, usually its path.
	Source string `json:"source,omitempty"`
	// DocumentFormat is "json" or "yaml". Empty means guess from Source.
	DocumentFormat string `json:"document_format,omitempty"`
	// Start overrides the configured start scene.
	Start string `json:"start,omitempty"`
	// Layout attaches Graphviz positions to the graph view.
	Layout bool `json:"layout,omitempty"`
	// Refresh skips the cache lookup but still stores the new report.
	Refresh bool `json:"refresh,omitempty"`
	// CacheTTL defaults to DefaultCacheTTL.
	CacheTTL time.Duration `json:"-"`

	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.DocumentFormat == "" {
		o.DocumentFormat = string(pio.FormatFromPath(o.Source))
	}
	f, err := pio.ParseFormat(o.DocumentFormat)
	if err != nil {
		return err
	}
	o.DocumentFormat = string(f)
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ReportKeyOpts returns cache key options for the report.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{
		Format: o.DocumentFormat,
		Start:  o.Start,
		Layout: o.Layout,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Report is the complete analysis.
	Report *report.Report

	// DocumentHash is the content hash of the input document.
	DocumentHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the report came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SceneCount  int
	EdgeCount   int
	IssueCount  int
	LoadTime    time.Duration
	AnalyzeTime time.Duration
	LayoutTime  time.Duration
}

// CacheInfo tracks cache usage of a run.
type CacheInfo struct {
	Hit bool // Whether the report came from cache
}

// DOT renders the graph view of the report grouped by floor with the
// resolved start scene highlighted.
func (r *Result) DOT(detailed bool) string {
	return nodelink.ToDOT(r.Report.GraphView, nodelink.Options{
		Start:       r.Report.Connectivity.Start,
		Detailed:    detailed,
		GroupFloors: true,
	})
}
