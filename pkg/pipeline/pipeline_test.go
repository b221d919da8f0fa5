package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/netalign/pkg/cache"
	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/groups"
	"github.com/matzehuels/netalign/pkg/io"
	"github.com/matzehuels/netalign/pkg/layout"
	"github.com/matzehuels/netalign/pkg/monitor"
	"github.com/matzehuels/netalign/pkg/network"
	"github.com/matzehuels/netalign/pkg/observability"
	"github.com/matzehuels/netalign/pkg/score"
	"github.com/matzehuels/netalign/pkg/storage"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"yaml", false},
		{"toml", false},
		{"table", false},
		{"sif", false},
		{"dot", false},
		{"svg", false},
		{"merged", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"json", "svg"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"json", "invalid"}); !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormats() error = %v, want %v", err, apperr.ErrCodeInvalidFormat)
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Paths: io.Paths{G1: "g1.sif", G2: "g2.sif", Alignment: "run.align"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.View != string(DefaultView) {
		t.Errorf("View = %q, want %q", opts.View, DefaultView)
	}
	if opts.Threshold == nil || *opts.Threshold != groups.DefaultThreshold {
		t.Errorf("Threshold = %v, want %v", opts.Threshold, groups.DefaultThreshold)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats = %v, want [json]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsDefaults_ZeroThreshold(t *testing.T) {
	opts := Options{Paths: io.Paths{G1: "g1.sif", G2: "g2.sif", Alignment: "run.align"}, Threshold: float(0)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Threshold == nil || *opts.Threshold != 0 {
		t.Errorf("Threshold = %v, want 0", opts.Threshold)
	}
}

func TestOptionsValidate(t *testing.T) {
	paths := io.Paths{G1: "g1.sif", G2: "g2.sif", Alignment: "run.align"}
	tests := []struct {
		name string
		opts Options
	}{
		{"MissingAlignment", Options{Paths: io.Paths{G1: "g1.sif", G2: "g2.sif"}}},
		{"UnknownView", Options{Paths: paths, View: "matrix"}},
		{"UnknownMode", Options{Paths: paths, Mode: "fuzzy"}},
		{"ThresholdRange", Options{Paths: paths, Threshold: float(1.5)}},
		{"IncompleteInputs", Options{Inputs: &io.Inputs{G1: &network.Network{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %v", err, apperr.ErrCodeInvalidInput)
			}
		})
	}

	opts := Options{Paths: paths, View: "CYCLE", Mode: "Node-Correctness"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.View != "cycle" || opts.Mode != "node_correctness" {
		t.Errorf("normalized view, mode = %q, %q", opts.View, opts.Mode)
	}
}

func TestOptionsGroupMode(t *testing.T) {
	tests := []struct {
		mode       string
		hasPerfect bool
		want       groups.Mode
		wantErr    bool
	}{
		{"", false, groups.ModeNone, false},
		{"", true, groups.ModeNodeCorrectness, false},
		{"none", true, groups.ModeNone, false},
		{"jaccard_similarity", true, groups.ModeJaccard, false},
		{"node_correctness", false, 0, true},
	}
	for _, tt := range tests {
		opts := Options{Mode: tt.mode}
		got, err := opts.GroupMode(tt.hasPerfect)
		if (err != nil) != tt.wantErr {
			t.Errorf("GroupMode(%q, %v) error = %v, wantErr %v", tt.mode, tt.hasPerfect, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("GroupMode(%q, %v) = %v, want %v", tt.mode, tt.hasPerfect, got, tt.want)
		}
	}
}

func TestExtension(t *testing.T) {
	if got := Extension(FormatTable); got != "txt" {
		t.Errorf("Extension(table) = %q, want txt", got)
	}
	if got := Extension(FormatSVG); got != "svg" {
		t.Errorf("Extension(svg) = %q, want svg", got)
	}
}

// swapInputs aligns the path a-b-c to itself with a and b swapped.
func swapInputs() *io.Inputs {
	path := func(name string) *network.Network {
		return &network.Network{Name: name, Links: []network.Link{{Src: "a", Trg: "b"}, {Src: "b", Trg: "c"}}}
	}
	return &io.Inputs{
		G1:        path("g1"),
		G2:        path("g2"),
		Alignment: network.Alignment{"a": "b", "b": "a", "c": "c"},
		Perfect:   network.Alignment{"a": "a", "b": "b", "c": "c"},
	}
}

func TestExecute_GroupView(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)
	res, err := runner.Execute(context.Background(), Options{
		Inputs:  swapInputs(),
		Formats: []string{FormatJSON, FormatYAML, FormatTOML, FormatTable, FormatSIF, FormatDOT, FormatMerged},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.RunID == "" || res.InputHash == "" {
		t.Errorf("RunID, InputHash = %q, %q", res.RunID, res.InputHash)
	}
	if res.View != layout.ViewGroup || res.Mode != groups.ModeNodeCorrectness {
		t.Errorf("View, Mode = %v, %v, want group, node_correctness", res.View, res.Mode)
	}
	if res.Truth == nil {
		t.Error("Truth = nil, want merge under the perfect alignment")
	}
	if v, ok := res.Report.Get(score.EC); !ok || v != 0.5 {
		t.Errorf("EC = %v, %v, want 0.5", v, ok)
	}
	if res.Stats.Nodes != 3 || res.Stats.Links != 3 {
		t.Errorf("Stats nodes, links = %d, %d, want 3, 3", res.Stats.Nodes, res.Stats.Links)
	}
	if len(res.Artifacts) != 7 {
		t.Errorf("len(Artifacts) = %d, want 7", len(res.Artifacts))
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"run_id": "`+res.RunID+`"`) {
		t.Errorf("json artifact missing run id:\n%s", res.Artifacts[FormatJSON])
	}
	if !strings.Contains(string(res.Artifacts[FormatYAML]), "mode: node_correctness") {
		t.Errorf("yaml artifact missing mode:\n%s", res.Artifacts[FormatYAML])
	}
	if !strings.Contains(string(res.Artifacts[FormatTable]), "EC") {
		t.Errorf("table artifact missing EC:\n%s", res.Artifacts[FormatTable])
	}
	if got := strings.Count(string(res.Artifacts[FormatSIF]), "\n"); got != 3 {
		t.Errorf("sif artifact has %d lines, want 3", got)
	}
}

func TestExecute_CycleView(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)
	res, err := runner.Execute(context.Background(), Options{Inputs: swapInputs(), View: "cycle"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.View != layout.ViewCycle {
		t.Fatalf("View = %v, want cycle", res.View)
	}
	if len(res.Layout.Bounds) != 2 || len(res.Layout.Annotations) != 1 {
		t.Errorf("Bounds, Annotations = %v, %v, want 2 chains and 1 incorrect", res.Layout.Bounds, res.Layout.Annotations)
	}

	s := Summarize(res)
	want := ChainStats{Cycles: 2, IncorrectCycles: 1, Longest: 2}
	if s.Chains == nil || *s.Chains != want {
		t.Errorf("Summarize().Chains = %+v, want %+v", s.Chains, want)
	}
}

func TestExecute_CycleFallback(t *testing.T) {
	in := &io.Inputs{
		G1:        &network.Network{Links: []network.Link{{Src: "p", Trg: "q"}}},
		G2:        &network.Network{Links: []network.Link{{Src: "x", Trg: "y"}}},
		Alignment: network.Alignment{"p": "x", "q": "y"},
	}
	res, err := NewRunner(nil, nil, nil, nil).Execute(context.Background(), Options{Inputs: in, View: "cycle"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.View != layout.ViewGroup || res.Mode != groups.ModeNone {
		t.Errorf("View, Mode = %v, %v, want group, none", res.View, res.Mode)
	}
	if _, ok := res.Report.Get(score.NC); ok {
		t.Error("NC reported without a perfect alignment")
	}
}

func TestExecute_OrphanView(t *testing.T) {
	res, err := NewRunner(nil, nil, nil, nil).Execute(context.Background(), Options{Inputs: swapInputs(), View: "orphan"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.View != layout.ViewOrphan || res.Shown == res.Merged {
		t.Errorf("View = %v, Shown is Merged = %v", res.View, res.Shown == res.Merged)
	}
	if res.Groups != nil {
		t.Error("Groups set for the orphan view")
	}
}

func TestExecute_Errors(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)

	bigG1 := swapInputs()
	bigG1.G1.Loners = []string{"d", "e"}
	if _, err := runner.Execute(context.Background(), Options{Inputs: bigG1}); !apperr.Is(err, apperr.ErrCodeInvalidNetwork) {
		t.Errorf("Execute(G1 larger) error = %v, want %v", err, apperr.ErrCodeInvalidNetwork)
	}

	badAlign := swapInputs()
	badAlign.Alignment = network.Alignment{"a": "zz"}
	if _, err := runner.Execute(context.Background(), Options{Inputs: badAlign}); !apperr.Is(err, apperr.ErrCodeInvalidAlignment) {
		t.Errorf("Execute(bad alignment) error = %v, want %v", err, apperr.ErrCodeInvalidAlignment)
	}

	noPerfect := swapInputs()
	noPerfect.Perfect = nil
	if _, err := runner.Execute(context.Background(), Options{Inputs: noPerfect, Mode: "jaccard_similarity"}); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("Execute(jaccard without perfect) error = %v, want %v", err, apperr.ErrCodeInvalidInput)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runner.Execute(ctx, Options{Inputs: swapInputs()}); !monitor.IsCanceled(err) {
		t.Errorf("Execute(canceled) error = %v, want canceled", err)
	}
}

func float(v float64) *float64 { return &v }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type stageRecorder struct {
	observability.NoopPipelineHooks
	stages   []string
	measures int
}

func (h *stageRecorder) OnStageStart(_ context.Context, stage string) {
	h.stages = append(h.stages, stage)
}

func (h *stageRecorder) OnMeasure(context.Context, string, float64) { h.measures++ }

func TestExecute_CacheAndStore(t *testing.T) {
	hooks := &stageRecorder{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	dir := t.TempDir()
	opts := Options{
		Paths: io.Paths{
			G1:        writeFile(t, dir, "g1.sif", "a pp b\nb pp c\n"),
			G2:        writeFile(t, dir, "g2.sif", "a pp b\nb pp c\n"),
			Alignment: writeFile(t, dir, "run.align", "a b\nb a\nc c\n"),
			Perfect:   writeFile(t, dir, "perfect.align", "a a\nb b\nc c\n"),
		},
		Mode: "jaccard_similarity",
	}

	c, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	store, err := storage.NewFileStore(filepath.Join(dir, "reports"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	runner := NewRunner(c, nil, store, nil)
	defer runner.Close(context.Background())

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.CacheInfo.MergeHit || first.CacheInfo.ScoreHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}
	want := []string{StageLoad, StageMerge, StageScore, StageLayout, StageRender, StageStore}
	if strings.Join(hooks.stages, ",") != strings.Join(want, ",") {
		t.Errorf("stages = %v, want %v", hooks.stages, want)
	}
	if hooks.measures != len(first.Report.Measures) {
		t.Errorf("OnMeasure called %d times, want %d", hooks.measures, len(first.Report.Measures))
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !second.CacheInfo.MergeHit || !second.CacheInfo.ScoreHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if second.InputHash != first.InputHash || second.RunID == first.RunID {
		t.Errorf("InputHash equal = %v, RunID equal = %v", second.InputHash == first.InputHash, second.RunID == first.RunID)
	}
	if len(second.Report.Jaccard) != len(first.Report.Jaccard) {
		t.Errorf("cached Jaccard has %d nodes, want %d", len(second.Report.Jaccard), len(first.Report.Jaccard))
	}

	refreshed := opts
	refreshed.Refresh = true
	third, err := runner.Execute(context.Background(), refreshed)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if third.CacheInfo.MergeHit || third.CacheInfo.ScoreHit {
		t.Errorf("refreshed run CacheInfo = %+v, want misses", third.CacheInfo)
	}

	rec, err := store.Get(context.Background(), first.RunID)
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if rec.Mode != "jaccard_similarity" || len(rec.Measures) != len(first.Report.Measures) {
		t.Errorf("stored record = %+v", rec)
	}
	if list, _ := store.List(context.Background(), 0); len(list) != 3 {
		t.Errorf("store holds %d records, want 3", len(list))
	}
}

func TestAnalyze(t *testing.T) {
	rec := &stageRecorder{}
	observability.SetPipelineHooks(rec)
	t.Cleanup(observability.Reset)

	res, err := NewRunner(nil, nil, nil, nil).Analyze(context.Background(), Options{Inputs: swapInputs()})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.Layout != nil || len(res.Artifacts) != 0 {
		t.Errorf("Analyze() laid out or rendered: %v, %d artifacts", res.Layout, len(res.Artifacts))
	}
	if v, ok := res.Report.Get(score.EC); !ok || v != 0.5 {
		t.Errorf("EC = %v, %v, want 0.5", v, ok)
	}
	want := []string{StageLoad, StageMerge, StageScore}
	if strings.Join(rec.stages, ",") != strings.Join(want, ",") {
		t.Errorf("stages = %v, want %v", rec.stages, want)
	}
}
