package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/panotour/pkg/cache"
	"github.com/matzehuels/panotour/pkg/errors"
	"github.com/matzehuels/panotour/pkg/observability"
)

const sampleDoc = `{
  "settings": {"startSceneId": "A"},
  "scenes": [
    {"id": "A", "imagePath": "a.jpg", "floor": 0, "hotspots": [{"targetSceneId": "B"}]},
    {"id": "B", "imagePath": "b.jpg", "floor": 0, "hotspots": [{"targetSceneId": "A"}]},
    {"id": "C", "imagePath": "c.jpg", "floor": 1}
  ]
}`

const sampleYAML = `
settings:
  startSceneId: A
scenes:
  - id: A
    imagePath: a.jpg
    hotspots:
      - targetSceneId: B
  - id: B
    imagePath: b.jpg
`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"yaml", false},
		{"dot", false},
		{"svg", true},
		{"JSON", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantFormat string
		wantErr    bool
	}{
		{"guess json", Options{Source: "tour.json"}, "json", false},
		{"guess yaml", Options{Source: "tour.YML"}, "yaml", false},
		{"no source", Options{}, "json", false},
		{"explicit", Options{Source: "tour.json", DocumentFormat: "yaml"}, "yaml", false},
		{"unknown", Options{DocumentFormat: "xml"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidFormat) {
					t.Errorf("error code = %s, want INVALID_FORMAT", errors.GetCode(err))
				}
				return
			}
			if tt.opts.DocumentFormat != tt.wantFormat {
				t.Errorf("DocumentFormat = %q, want %q", tt.opts.DocumentFormat, tt.wantFormat)
			}
			if tt.opts.CacheTTL != DefaultCacheTTL {
				t.Errorf("CacheTTL = %v, want %v", tt.opts.CacheTTL, DefaultCacheTTL)
			}
			if tt.opts.Logger == nil {
				t.Error("Logger should default to a discard logger")
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Source: "tour.yaml", CacheTTL: time.Minute}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.DocumentFormat != first.DocumentFormat || opts.CacheTTL != time.Minute {
		t.Errorf("second call changed options: %+v", opts)
	}
}

func TestRunner_Analyze(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Analyze(context.Background(), Options{Document: []byte(sampleDoc), Source: "sample.json"})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	rep := res.Report
	if rep.Source != "sample.json" {
		t.Errorf("Source = %q", rep.Source)
	}
	if res.Stats.SceneCount != 3 || res.Stats.EdgeCount != 2 {
		t.Errorf("Stats = %+v, want 3 scenes and 2 links", res.Stats)
	}
	if got := rep.Connectivity.Unreachable; len(got) != 1 || got[0] != "C" {
		t.Errorf("Unreachable = %v, want [C]", got)
	}
	if res.Stats.IssueCount != rep.IssueCount() {
		t.Errorf("IssueCount = %d, want %d", res.Stats.IssueCount, rep.IssueCount())
	}
	if res.CacheInfo.Hit {
		t.Error("NullCache should never hit")
	}
	if res.DocumentHash != cache.Hash([]byte(sampleDoc)) {
		t.Errorf("DocumentHash = %q", res.DocumentHash)
	}
}

func TestRunner_AnalyzeYAML(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Analyze(context.Background(), Options{Document: []byte(sampleYAML), Source: "tour.yaml"})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if res.Report.Summary.SceneCount != 2 {
		t.Errorf("SceneCount = %d, want 2", res.Report.Summary.SceneCount)
	}
}

func TestRunner_StartOverride(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Analyze(context.Background(), Options{Document: []byte(sampleDoc), Start: "C"})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Report.Connectivity.Reachable; len(got) != 1 || got[0] != "C" {
		t.Errorf("Reachable = %v, want [C]", got)
	}
}

func TestRunner_DocumentErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"not json", "not a document"},
		{"array root", `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Analyze(context.Background(), Options{Document: []byte(tt.doc)})
			if !errors.IsDocumentError(err) {
				t.Errorf("Analyze() error = %v, want a document error", err)
			}
		})
	}
}

func TestRunner_AnalyzeFile(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	path := filepath.Join(t.TempDir(), "tour.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := r.AnalyzeFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("AnalyzeFile() error: %v", err)
	}
	if res.Report.Source != path {
		t.Errorf("Source = %q, want %q", res.Report.Source, path)
	}

	_, err = r.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"), Options{})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRunner_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRunner(nil, nil, nil).Analyze(ctx, Options{Document: []byte(sampleDoc)}); err == nil {
		t.Error("Analyze() with canceled context should fail")
	}
}

type cacheCounter struct {
	mu     sync.Mutex
	hits   int
	misses int
	sets   int
}

func (c *cacheCounter) OnCacheHit(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits++
}

func (c *cacheCounter) OnCacheMiss(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
}

func (c *cacheCounter) OnCacheSet(context.Context, string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
}

func TestRunner_Cache(t *testing.T) {
	counter := &cacheCounter{}
	observability.SetCacheHooks(counter)
	t.Cleanup(observability.Reset)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()
	ctx := context.Background()
	opts := Options{Document: []byte(sampleDoc), Source: "sample.json"}

	first, err := r.Analyze(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Analyze(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}

	if first.CacheInfo.Hit || !second.CacheInfo.Hit {
		t.Errorf("cache hits = %v, %v, want false, true", first.CacheInfo.Hit, second.CacheInfo.Hit)
	}
	if second.Stats.SceneCount != 3 || second.Report.Connectivity.Start != "A" {
		t.Errorf("cached report differs: %+v", second.Report.Summary)
	}

	// The same document under another name reuses the report but not the label.
	renamed := opts
	renamed.Source = "copy.json"
	copied, err := r.Analyze(ctx, renamed)
	if err != nil {
		t.Fatal(err)
	}
	if !copied.CacheInfo.Hit || copied.Report.Source != "copy.json" {
		t.Errorf("renamed document: hit=%v source=%q, want cached report labeled copy.json",
			copied.CacheInfo.Hit, copied.Report.Source)
	}

	// A different start scene is a different report.
	other := opts
	other.Start = "B"
	third, _ := r.Analyze(ctx, other)
	if third.CacheInfo.Hit {
		t.Error("start override should not reuse the default report")
	}

	refresh := opts
	refresh.Refresh = true
	fourth, _ := r.Analyze(ctx, refresh)
	if fourth.CacheInfo.Hit {
		t.Error("Refresh should bypass the cache")
	}

	if counter.hits != 2 || counter.misses != 2 || counter.sets != 3 {
		t.Errorf("hooks = %d hits, %d misses, %d sets, want 2, 2, 3", counter.hits, counter.misses, counter.sets)
	}
}

func TestResult_DOT(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Analyze(context.Background(), Options{Document: []byte(sampleDoc)})
	if err != nil {
		t.Fatal(err)
	}
	dot := res.DOT(false)
	for _, want := range []string{"digraph", `"A" -> "B"`, "cluster_", "penwidth=3"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT() missing %q:\n%s", want, dot)
		}
	}
}
