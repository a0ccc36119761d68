// Package observability lets the binary decide where pipeline, cache and
// HTTP events go.
//
// Libraries emit through the accessors below; until main registers an
// implementation every event goes to [Noop]:
//
//	reg := metrics.NewRegistry()
//	observability.Register(reg)
//	defer observability.Reset()
//
//	observability.Analysis().OnLoad(ctx, source, sceneCount, time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// AnalysisHooks receives events from the analysis pipeline.
type AnalysisHooks interface {
	// OnLoad records the decoding of a tour document.
	OnLoad(ctx context.Context, source string, sceneCount int, duration time.Duration, err error)
	// OnAnalyzeComplete records a finished analysis.
	OnAnalyzeComplete(ctx context.Context, sceneCount, issueCount int, duration time.Duration)
	// OnLayoutComplete records a Graphviz layout run.
	OnLayoutComplete(ctx context.Context, nodeCount int, duration time.Duration, err error)
}

// CacheHooks receives report cache events. keyType is the kind of entry,
// currently always "report".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP API. route is the matched route
// pattern, not the raw path.
type HTTPHooks interface {
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// Noop implements every hook interface and does nothing.
type Noop struct{}

func (Noop) OnLoad(context.Context, string, int, time.Duration, error) {}
func (Noop) OnAnalyzeComplete(context.Context, int, int, time.Duration) {}
func (Noop) OnLayoutComplete(context.Context, int, time.Duration, error) {}
func (Noop) OnCacheHit(context.Context, string) {}
func (Noop) OnCacheMiss(context.Context, string) {}
func (Noop) OnCacheSet(context.Context, string, int) {}
func (Noop) OnResponse(context.Context, string, string, int, time.Duration) {}

// registry is replaced as a whole, so readers never see a half-updated set.
type registry struct {
	analysis AnalysisHooks
	cache    CacheHooks
	http     HTTPHooks
}

var current atomic.Pointer[registry]

func init() { Reset() }

func update(apply func(r *registry)) {
	for {
		old := current.Load()
		next := *old
		apply(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetAnalysisHooks registers h. A nil h is ignored.
func SetAnalysisHooks(h AnalysisHooks) {
	if h != nil {
		update(func(r *registry) { r.analysis = h })
	}
}

// SetCacheHooks registers h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

// Register installs h for every hook interface it implements and reports
// how many that were.
func Register(h any) int {
	n := 0
	if a, ok := h.(AnalysisHooks); ok {
		SetAnalysisHooks(a)
		n++
	}
	if c, ok := h.(CacheHooks); ok {
		SetCacheHooks(c)
		n++
	}
	if x, ok := h.(HTTPHooks); ok {
		SetHTTPHooks(x)
		n++
	}
	return n
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks { return current.Load().analysis }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks.
func Reset() {
	current.Store(&registry{analysis: Noop{}, cache: Noop{}, http: Noop{}})
}
