package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netalign/pkg/cycle"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/score"
)

// testEnv isolates config, cache and report dirs and writes a small
// alignment where a and b are swapped.
func testEnv(t *testing.T) (dir string, inputs []string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Chdir(dir)

	files := []struct{ name, content string }{
		{"g1.sif", "a pp b\nb pp c\n"},
		{"g2.sif", "a pp b\nb pp c\n"},
		{"run.align", "a b\nb a\nc c\n"},
		{"true.align", "a a\nb b\nc c\n"},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			t.Fatal(err)
		}
		inputs = append(inputs, path)
	}
	return dir, inputs
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"align", "merge", "score", "cycles", "reports", "serve", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("root command lacks %q (have %v)", want, names)
		}
	}
}

func TestAlign_Table(t *testing.T) {
	_, inputs := testEnv(t)
	out, err := run(t, append([]string{"align", "--no-store"}, inputs...)...)
	if err != nil {
		t.Fatalf("align error = %v", err)
	}
	if !strings.Contains(out, score.EC) || !strings.Contains(out, "0.5000") {
		t.Errorf("align output lacks EC 0.5000:\n%s", out)
	}
}

func TestAlign_FilesAndReports(t *testing.T) {
	dir, inputs := testEnv(t)
	base := filepath.Join(dir, "out", "run")
	args := append([]string{"align", "-f", "json,sif", "-o", base + ".json", "--view", "cycle"}, inputs...)
	if _, err := run(t, args...); err != nil {
		t.Fatalf("align error = %v", err)
	}

	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var summary struct {
		RunID string `json:"run_id"`
		View  string `json:"view"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.View != "cycle" {
		t.Errorf("view = %q, want cycle", summary.View)
	}
	if _, err := os.Stat(base + ".sif"); err != nil {
		t.Errorf("sif artifact: %v", err)
	}

	out, err := run(t, "reports", "list")
	if err != nil {
		t.Fatalf("reports list error = %v", err)
	}
	if !strings.Contains(out, summary.RunID) {
		t.Errorf("reports list lacks %s:\n%s", summary.RunID, out)
	}

	out, err = run(t, "reports", "show", summary.RunID, "-f", "yaml")
	if err != nil {
		t.Fatalf("reports show error = %v", err)
	}
	if !strings.Contains(out, "view: cycle") {
		t.Errorf("reports show output lacks view:\n%s", out)
	}
}

func TestAlign_Errors(t *testing.T) {
	_, inputs := testEnv(t)
	tests := []struct {
		name string
		args []string
	}{
		{"UnknownFormat", append([]string{"align", "-f", "gif"}, inputs...)},
		{"TooFewArgs", []string{"align", inputs[0]}},
		{"MissingFile", []string{"align", inputs[0], "missing.sif", inputs[2]}},
		{"BadMergeFormat", append([]string{"merge", "-f", "json"}, inputs...)},
		{"BadScoreFormat", append([]string{"score", "-f", "svg"}, inputs...)},
		{"CyclesWithoutPerfect", append([]string{"cycles"}, inputs[:3]...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Errorf("%v: error = nil, want error", tt.args)
			}
		})
	}
}

func TestScore_JSON(t *testing.T) {
	_, inputs := testEnv(t)
	out, err := run(t, append([]string{"score", "-f", "json"}, inputs...)...)
	if err != nil {
		t.Fatalf("score error = %v", err)
	}
	var got scoreOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode score: %v\n%s", err, out)
	}
	for _, m := range got.Measures {
		if m.Name == score.EC && m.Value != 0.5 {
			t.Errorf("EC = %v, want 0.5", m.Value)
		}
	}
	if len(got.Jaccard) != 3 {
		t.Errorf("Jaccard has %d nodes, want 3", len(got.Jaccard))
	}
}

func TestMerge_SIF(t *testing.T) {
	_, inputs := testEnv(t)
	out, err := run(t, append([]string{"merge", "-f", "sif"}, inputs...)...)
	if err != nil {
		t.Fatalf("merge error = %v", err)
	}
	if got := strings.Count(out, "\n"); got != 3 {
		t.Errorf("merge wrote %d lines, want 3:\n%s", got, out)
	}
	if !strings.Contains(out, "a::b") {
		t.Errorf("merge output lacks node a::b:\n%s", out)
	}
}

func TestCycles(t *testing.T) {
	_, inputs := testEnv(t)
	out, err := run(t, append([]string{"cycles"}, inputs...)...)
	if err != nil {
		t.Fatalf("cycles error = %v", err)
	}
	if !strings.Contains(out, "cycle") || !strings.Contains(out, "a::b") {
		t.Errorf("cycles output lacks the swapped cycle:\n%s", out)
	}
	if strings.Contains(out, "c::c") {
		t.Errorf("cycles output lists a correct chain without --all:\n%s", out)
	}
}

func TestCachePath(t *testing.T) {
	dir, _ := testEnv(t)
	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error = %v", err)
	}
	want := filepath.Join(dir, "cache", appName)
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestCompletion(t *testing.T) {
	testEnv(t)
	for shell := range completionShells {
		t.Run(shell, func(t *testing.T) {
			out, err := run(t, "completion", shell)
			if err != nil {
				t.Fatalf("completion %s error = %v", shell, err)
			}
			if !strings.Contains(out, appName) {
				t.Errorf("completion %s script does not mention %q", shell, appName)
			}
		})
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh error = nil, want error")
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input string
		formats       []string
		want          string
	}{
		{"", "runs/a.align", []string{"svg"}, "runs/a"},
		{"out/x.svg", "a.align", []string{"svg"}, "out/x"},
		{"out/x.merged.json", "a.align", []string{"merged"}, "out/x"},
		{"out/x", "a.align", []string{"svg", "json"}, "out/x"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input, tt.formats); got != tt.want {
			t.Errorf("basePath(%q, %q, %v) = %q, want %q", tt.output, tt.input, tt.formats, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats("", "table"); !slices.Equal(got, []string{"table"}) {
		t.Errorf("parseFormats(\"\") = %v, want [table]", got)
	}
	if got := parseFormats("svg, json,", "table"); !slices.Equal(got, []string{"svg", "json"}) {
		t.Errorf("parseFormats() = %v, want [svg json]", got)
	}
}

func chain(isCycle, correct bool, names ...string) *cycle.Chain {
	ch := &cycle.Chain{IsCycle: isCycle, Correct: correct}
	for _, n := range names {
		ch.Nodes = append(ch.Nodes, merge.Aligned(n, n))
	}
	return ch
}

func TestSortChains(t *testing.T) {
	correct := chain(true, true, "a")
	short := chain(false, false, "b", "c")
	long := chain(false, false, "d", "e", "f")
	cyc := chain(true, false, "g", "h")

	chains := []*cycle.Chain{correct, short, long, cyc}
	sortChains(chains)
	want := []*cycle.Chain{long, cyc, short, correct}
	if !slices.Equal(chains, want) {
		t.Errorf("sortChains() order wrong: got kinds/lens %v", chains)
	}
}

func TestChainNodes(t *testing.T) {
	tests := []struct {
		ch    *cycle.Chain
		limit int
		want  string
	}{
		{chain(true, false, "a", "b"), 6, "a::a → b::b → a::a"},
		{chain(false, false, "a", "b"), 6, "a::a → b::b"},
		{chain(true, false, "a", "b", "c"), 2, "a::a → b::b → … +1"},
		{chain(true, false, "a"), 0, "a::a → a::a"},
	}
	for _, tt := range tests {
		if got := chainNodes(tt.ch, tt.limit); got != tt.want {
			t.Errorf("chainNodes(%d) = %q, want %q", tt.limit, got, tt.want)
		}
	}
}
