package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/panotour/pkg/errors"
	"github.com/matzehuels/panotour/pkg/report"
)

const tourDoc = `{
  "settings": {"startSceneId": "lobby", "transitionDuration": 500},
  "scenes": [
    {"id": "lobby", "title": "Lobby", "imagePath": "lobby.jpg", "floor": 0,
     "hotspots": [{"targetSceneId": "hall"}, {"type": "info", "text": "Welcome"}]},
    {"id": "hall", "imagePath": "hall.jpg", "floor": 1,
     "hotspots": [{"targetSceneId": "lobby"}, {"targetSceneId": "attic"}]},
    {"id": "cellar", "imagePath": "cellar.jpg", "floor": -1}
  ]
}`

// isolate points the cache and config directories at temp dirs.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeTour(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyze_Text(t *testing.T) {
	isolate(t)
	out, err := execute(t, "analyze", writeTour(t, "tour.json", tourDoc))
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	for _, want := range []string{"Tour summary", "lobby", "cellar", "DanglingHotspot", "attic", "500ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyze_JSON(t *testing.T) {
	isolate(t)
	out, err := execute(t, "analyze", "-f", "json", writeTour(t, "tour.json", tourDoc))
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}

	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out)
	}
	if rep.Summary.SceneCount != 3 || rep.Summary.HotspotCount != 4 {
		t.Errorf("Summary = %+v", rep.Summary)
	}
	if got := rep.Connectivity.Unreachable; len(got) != 1 || got[0] != "cellar" {
		t.Errorf("Unreachable = %v, want [cellar]", got)
	}
}

func TestAnalyze_StartOverride(t *testing.T) {
	isolate(t)
	out, err := execute(t, "analyze", "-f", "json", "--start", "cellar", writeTour(t, "tour.json", tourDoc))
	if err != nil {
		t.Fatal(err)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Connectivity.Start != "cellar" || len(rep.Connectivity.Reachable) != 1 {
		t.Errorf("Connectivity = %+v, want only cellar reachable", rep.Connectivity)
	}
}

func TestAnalyze_YAMLAndDOT(t *testing.T) {
	isolate(t)
	path := writeTour(t, "tour.json", tourDoc)

	out, err := execute(t, "analyze", "-f", "yaml", path)
	if err != nil || !strings.Contains(out, "sceneCount: 3") {
		t.Errorf("yaml output = %q, err = %v", out, err)
	}

	out, err = execute(t, "analyze", "-f", "dot", "--detailed", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"digraph G", `"hall" -> "attic"`, "Floor -1", `Lobby`} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyze_OutputFile(t *testing.T) {
	isolate(t)
	dest := filepath.Join(t.TempDir(), "report.json")
	if _, err := execute(t, "analyze", "-f", "json", "-o", dest, writeTour(t, "tour.json", tourDoc)); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if !json.Valid(data) {
		t.Errorf("output file is not JSON: %s", data)
	}
}

func TestAnalyze_ConfigFormat(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t, `format = "yaml"`)
	path := writeTour(t, "tour.json", tourDoc)

	out, err := execute(t, "--config", cfg, "analyze", path)
	if err != nil || !strings.Contains(out, "sceneCount: 3") {
		t.Errorf("config format not applied: %q, %v", out, err)
	}

	// Flags win over the file.
	out, err = execute(t, "--config", cfg, "analyze", "-f", "json", path)
	if err != nil || !json.Valid([]byte(out)) {
		t.Errorf("flag should override config format: %q, %v", out, err)
	}
}

func TestAnalyze_Failures(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing file", []string{"analyze", filepath.Join(t.TempDir(), "nope.json")}, errors.ErrCodeFileNotFound},
		{"not a document", []string{"analyze", writeTour(t, "broken.json", "{scenes")}, errors.ErrCodeInvalidDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}

	if _, err := execute(t, "analyze", "-f", "svg", writeTour(t, "tour.json", tourDoc)); err == nil {
		t.Error("unknown output format should fail")
	}
}

func TestAnalyze_IssuesDoNotFail(t *testing.T) {
	isolate(t)
	doc := `{"scenes": [{"id": "a", "imagePath": "a.jpg", "hotspots": [{"targetSceneId": "ghost"}]}, {"imagePath": "x.jpg"}]}`
	if _, err := execute(t, "analyze", writeTour(t, "tour.json", doc)); err != nil {
		t.Errorf("analysis with issues should succeed, got %v", err)
	}
}

func TestCachePath(t *testing.T) {
	isolate(t)
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	want, _ := cacheDir()
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCacheClear(t *testing.T) {
	isolate(t)
	path := writeTour(t, "tour.json", tourDoc)
	if _, err := execute(t, "analyze", path); err != nil {
		t.Fatal(err)
	}
	dir, _ := cacheDir()
	entries, _ := os.ReadDir(dir)
	if len(entries) == 0 {
		t.Fatal("analyze should have cached the report")
	}

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	entries, _ = os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	out, err := execute(t, "completion", "bash")
	if err != nil || !strings.Contains(out, "panotour") {
		t.Errorf("completion bash = %v, output %d bytes", err, len(out))
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}
