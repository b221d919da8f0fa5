// Package pipeline runs a complete network alignment analysis.
//
// This package implements the load → merge → score → layout → render →
// store pipeline shared by the CLI and the API server. By centralizing this
// logic, every entry point caches, validates and reports the same way.
//
// # Architecture
//
// The pipeline consists of six stages:
//
//  1. Load: read both networks and the alignments (skipped for inline inputs)
//  2. Merge: merge G1 and G2 under the alignment, and under the perfect
//     alignment when one is given, concurrently
//  3. Score: compute the topological and, with a perfect alignment, the
//     correctness measures
//  4. Layout: order the merged nodes for the selected view
//  5. Render: produce the requested artifacts
//  6. Store: archive the summary when the runner has a store
//
// Merges and score reports are cached by the content hash of the inputs.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, store, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Paths:   io.Paths{G1: "yeast.sif", G2: "human.sif", Alignment: "run.align", Perfect: "true.align"},
//	    View:    "cycle",
//	    Formats: []string{"table", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	stdio "io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/groups"
	"github.com/matzehuels/netalign/pkg/io"
	"github.com/matzehuels/netalign/pkg/layout"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/render/report"
	"github.com/matzehuels/netalign/pkg/score"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultView is the view used when none is given.
const DefaultView = layout.ViewGroup

// DefaultPNGScale is the resolution factor of PNG output.
const DefaultPNGScale = 2.0

// Format constants for output artifacts.
const (
	FormatJSON   = report.FormatJSON
	FormatYAML   = report.FormatYAML
	FormatTOML   = report.FormatTOML
	FormatTable  = report.FormatTable
	FormatMerged = "merged"
	FormatSIF    = "sif"
	FormatDOT    = "dot"
	FormatSVG    = "svg"
	FormatPNG    = "png"
	FormatPDF    = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:   true,
	FormatYAML:   true,
	FormatTOML:   true,
	FormatTable:  true,
	FormatMerged: true,
	FormatSIF:    true,
	FormatDOT:    true,
	FormatSVG:    true,
	FormatPNG:    true,
	FormatPDF:    true,
}

// FormatNames returns the supported formats, sorted.
func FormatNames() []string {
	out := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Extension returns the file extension for an artifact format.
func Extension(format string) string {
	switch format {
	case FormatTable:
		return "txt"
	case FormatMerged:
		return "merged.json"
	}
	return format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Paths names the input files. Ignored when Inputs is set.
	Paths io.Paths `json:"paths" validate:"-"`
	// Inputs holds already decoded inputs, for the API and tests.
	Inputs *io.Inputs `json:"-" validate:"-"`

	View string `json:"view,omitempty" validate:"omitempty,oneof=group orphan cycle"`
	Mode string `json:"mode,omitempty" validate:"omitempty,oneof=none node_correctness jaccard_similarity"`
	// Threshold is the Jaccard cutoff; nil means groups.DefaultThreshold.
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`

	Formats []string `json:"formats,omitempty" validate:"dive,required"`
	// Labels shows node names in diagrams.
	Labels  bool `json:"labels,omitempty"`
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger   `json:"-" validate:"-"`
	Table  *groups.Table `json:"-" validate:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run, and its stored record.
	RunID string
	// InputHash is the content hash of the inputs.
	InputHash string

	Inputs *io.Inputs
	// Merged is the merge under the alignment, Truth the merge under the
	// perfect alignment (nil without one).
	Merged *merge.Result
	Truth  *merge.Result
	Report *score.Report

	// View names the layout. Shown is the network it orders: Merged, or its
	// orphan view.
	View   layout.View
	Shown  *merge.Result
	Layout *layout.Layout
	// Groups is the node group map of group views, built in Mode.
	Groups *groups.Map
	Mode   groups.Mode

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	G1Nodes int
	G2Nodes int
	Nodes   int
	Links   int

	LoadTime   time.Duration
	MergeTime  time.Duration
	ScoreTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
	StoreTime  time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.LoadTime + s.MergeTime + s.ScoreTime + s.LayoutTime + s.RenderTime + s.StoreTime
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	MergeHit bool // Whether every merge came from cache
	ScoreHit bool // Whether the report came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Inputs == nil {
		if err := validatorInstance().Struct(o.Paths); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "input files")
		}
	} else if o.Inputs.G1 == nil || o.Inputs.G2 == nil || o.Inputs.Alignment == nil {
		return apperr.New(apperr.ErrCodeInvalidInput, "inline inputs need G1, G2 and an alignment")
	}
	o.View = strings.ToLower(o.View)
	o.Mode = strings.ReplaceAll(strings.ToLower(o.Mode), "-", "_")
	if err := validatorInstance().Struct(o); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "options")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.View == "" {
		o.View = string(DefaultView)
	}
	if o.Threshold == nil {
		threshold := groups.DefaultThreshold
		o.Threshold = &threshold
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(stdio.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// GroupMode resolves the group mode. Without an explicit mode, runs with a
// perfect alignment use node correctness.
func (o *Options) GroupMode(hasPerfect bool) (groups.Mode, error) {
	if o.Mode == "" {
		if hasPerfect {
			return groups.ModeNodeCorrectness, nil
		}
		return groups.ModeNone, nil
	}
	m, err := groups.ParseMode(o.Mode)
	if err != nil {
		return 0, err
	}
	if m != groups.ModeNone && !hasPerfect {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "group mode %s needs a perfect alignment", m)
	}
	return m, nil
}

// HasFormat reports whether f was requested.
func (o *Options) HasFormat(f string) bool {
	return slices.Contains(o.Formats, f)
}

// String summarizes the options for log lines.
func (o *Options) String() string {
	return fmt.Sprintf("view=%s mode=%s formats=%s", o.View, o.Mode, strings.Join(o.Formats, ","))
}
