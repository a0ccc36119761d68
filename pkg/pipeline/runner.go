package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panotour/pkg/cache"
	pio "github.com/matzehuels/panotour/pkg/io"
	"github.com/matzehuels/panotour/pkg/observability"
	"github.com/matzehuels/panotour/pkg/render/nodelink"
	"github.com/matzehuels/panotour/pkg/report"
)

const keyTypeReport = "report"

// Runner executes analyses with caching. It holds no per-run state, so one
// Runner can serve concurrent requests with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Analyze runs the load → analyze → layout pipeline with caching.
//
// The only errors returned are document-level failures (see
// errors.IsDocumentError), a failed Graphviz run and context cancellation.
// Problems inside the tour are part of the report.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{DocumentHash: cache.Hash(opts.Document)}
	key := r.Keyer.ReportKey(result.DocumentHash, opts.ReportKeyOpts())

	if !opts.Refresh {
		if rep, ok := r.cached(ctx, key); ok {
			// The key covers content and options, not where the document came from.
			rep.Source = opts.Source
			result.Report = rep
			result.CacheInfo.Hit = true
			result.fillCounts()
			r.Logger.Debug("report cache hit", "source", opts.Source, "hash", result.DocumentHash)
			return result, nil
		}
	}

	// Stage 1: Load
	loadStart := time.Now()
	t, err := pio.DecodeTour(opts.Document, pio.Format(opts.DocumentFormat))
	result.Stats.LoadTime = time.Since(loadStart)
	if err != nil {
		observability.Analysis().OnLoad(ctx, opts.Source, 0, result.Stats.LoadTime, err)
		return nil, err
	}
	observability.Analysis().OnLoad(ctx, opts.Source, t.SceneCount(), result.Stats.LoadTime, nil)

	r.Logger.Debug("loaded document",
		"source", opts.Source,
		"scenes", t.SceneCount(),
		"parse_errors", len(t.ParseErrors),
		"duration", result.Stats.LoadTime)

	// Stage 2: Analyze
	analyzeStart := time.Now()
	rep := report.Generate(t, report.Options{Source: opts.Source, Start: opts.Start})
	result.Report = rep
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.fillCounts()
	observability.Analysis().OnAnalyzeComplete(ctx, result.Stats.SceneCount, result.Stats.IssueCount, result.Stats.AnalyzeTime)

	r.Logger.Info("analyzed tour",
		"scenes", result.Stats.SceneCount,
		"links", result.Stats.EdgeCount,
		"issues", result.Stats.IssueCount,
		"duration", result.Stats.AnalyzeTime)

	// Stage 3: Layout
	if opts.Layout {
		layoutStart := time.Now()
		v, err := nodelink.Layout(ctx, rep.GraphView, nodelink.Options{
			Start:       rep.Connectivity.Start,
			GroupFloors: true,
		})
		result.Stats.LayoutTime = time.Since(layoutStart)
		observability.Analysis().OnLayoutComplete(ctx, len(rep.GraphView.Nodes), result.Stats.LayoutTime, err)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		rep.GraphView = v
		r.Logger.Debug("computed layout", "nodes", len(v.Nodes), "duration", result.Stats.LayoutTime)
	}

	r.store(ctx, key, rep, opts.CacheTTL)
	return result, nil
}

// cached returns the report stored under key. Undecodable entries count as
// misses.
func (r *Runner) cached(ctx context.Context, key string) (*report.Report, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "error", err)
	}
	if err == nil && hit {
		var rep report.Report
		if err := json.Unmarshal(data, &rep); err == nil {
			observability.Cache().OnCacheHit(ctx, keyTypeReport)
			return &rep, true
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeReport)
	return nil, false
}

func (r *Runner) store(ctx context.Context, key string, rep *report.Report, ttl time.Duration) {
	data, err := json.Marshal(rep)
	if err != nil {
		r.Logger.Warn("encode report for cache", "error", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeReport, len(data))
}

// AnalyzeFile reads the document at path and analyzes it. Source defaults
// to path.
func (r *Runner) AnalyzeFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := pio.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	opts.Document = data
	if opts.Source == "" {
		opts.Source = path
	}
	return r.Analyze(ctx, opts)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (res *Result) fillCounts() {
	res.Stats.SceneCount = res.Report.Summary.SceneCount
	res.Stats.EdgeCount = len(res.Report.GraphView.Edges)
	res.Stats.IssueCount = res.Report.IssueCount()
}
