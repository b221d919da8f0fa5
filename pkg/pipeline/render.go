package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/netalign/pkg/io"
	"github.com/matzehuels/netalign/pkg/layout"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/render"
	"github.com/matzehuels/netalign/pkg/render/nodelink"
	"github.com/matzehuels/netalign/pkg/render/report"
	"github.com/matzehuels/netalign/pkg/score"
	"github.com/matzehuels/netalign/pkg/storage"
)

// =============================================================================
// Summary
// =============================================================================

// NetworkInfo describes one input network.
type NetworkInfo struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Nodes int    `json:"nodes" yaml:"nodes" toml:"nodes"`
	Links int    `json:"links" yaml:"links" toml:"links"`
}

// ChainStats counts the chains of a cycle view.
type ChainStats struct {
	Cycles          int `json:"cycles" yaml:"cycles" toml:"cycles"`
	Paths           int `json:"paths" yaml:"paths" toml:"paths"`
	IncorrectCycles int `json:"incorrect_cycles" yaml:"incorrect_cycles" toml:"incorrect_cycles"`
	IncorrectPaths  int `json:"incorrect_paths" yaml:"incorrect_paths" toml:"incorrect_paths"`
	// Longest is the length of the longest incorrect chain.
	Longest int `json:"longest" yaml:"longest" toml:"longest"`
}

// Summary is the serializable outcome of a run.
type Summary struct {
	RunID     string      `json:"run_id" yaml:"run_id" toml:"run_id"`
	InputHash string      `json:"input_hash" yaml:"input_hash" toml:"input_hash"`
	G1        NetworkInfo `json:"g1" yaml:"g1" toml:"g1"`
	G2        NetworkInfo `json:"g2" yaml:"g2" toml:"g2"`
	View      string      `json:"view" yaml:"view" toml:"view"`
	Mode      string      `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`

	Nodes  int            `json:"nodes" yaml:"nodes" toml:"nodes"`
	Colors map[string]int `json:"colors" yaml:"colors" toml:"colors"`
	Links  map[string]int `json:"links" yaml:"links" toml:"links"`

	Measures []score.Measure `json:"measures" yaml:"measures" toml:"measures"`

	Chains      *ChainStats         `json:"chains,omitempty" yaml:"chains,omitempty" toml:"chains,omitempty"`
	Annotations []layout.Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty" toml:"annotations,omitempty"`
	NodeRatios  map[string]float64  `json:"node_ratios,omitempty" yaml:"node_ratios,omitempty" toml:"node_ratios,omitempty"`
	LinkRatios  map[string]float64  `json:"link_ratios,omitempty" yaml:"link_ratios,omitempty" toml:"link_ratios,omitempty"`
	Durations   map[string]string   `json:"durations,omitempty" yaml:"durations,omitempty" toml:"durations,omitempty"`
}

// Summarize builds the summary of a finished run.
func Summarize(res *Result) *Summary {
	s := &Summary{
		RunID:     res.RunID,
		InputHash: res.InputHash,
		G1:        networkInfo(res.Inputs.G1.Name, res.Inputs.G1.NodeCount(), res.Inputs.G1.LinkCount()),
		G2:        networkInfo(res.Inputs.G2.Name, res.Inputs.G2.NodeCount(), res.Inputs.G2.LinkCount()),
		View:      string(res.View),
		Nodes:     res.Merged.NodeCount(),
		Colors:    make(map[string]int, len(merge.Colors)),
		Links:     make(map[string]int, merge.NumRelations),
		Measures:  res.Report.Measures,
	}
	counts := res.Merged.ColorCounts()
	for _, c := range merge.Colors {
		s.Colors[c.String()] = counts[c]
	}
	for _, rel := range merge.Relations {
		s.Links[rel.Tag()] = res.Merged.Counts[rel]
	}
	if res.Layout != nil {
		s.Annotations = res.Layout.Annotations
		if res.View == layout.ViewCycle {
			s.Chains = chainStats(res.Layout.Bounds)
		}
	}
	if res.Groups != nil {
		s.Mode = res.Mode.String()
		s.NodeRatios = res.Groups.NodeRatioMap()
		s.LinkRatios = res.Groups.LinkRatioMap()
	}
	s.Durations = map[string]string{
		StageLoad:   res.Stats.LoadTime.Round(time.Microsecond).String(),
		StageMerge:  res.Stats.MergeTime.Round(time.Microsecond).String(),
		StageScore:  res.Stats.ScoreTime.Round(time.Microsecond).String(),
		StageLayout: res.Stats.LayoutTime.Round(time.Microsecond).String(),
	}
	return s
}

func networkInfo(name string, nodes, links int) NetworkInfo {
	return NetworkInfo{Name: name, Nodes: nodes, Links: links}
}

func chainStats(bounds []layout.Bounds) *ChainStats {
	var cs ChainStats
	for _, b := range bounds {
		if b.IsCycle {
			cs.Cycles++
		} else {
			cs.Paths++
		}
		if b.Correct {
			continue
		}
		if b.IsCycle {
			cs.IncorrectCycles++
		} else {
			cs.IncorrectPaths++
		}
		cs.Longest = max(cs.Longest, b.Len())
	}
	return &cs
}

// Record converts the summary into an archive record.
func (s *Summary) Record() *storage.Record {
	rec := storage.NewRecord()
	if s.RunID != "" {
		rec.ID = s.RunID
	}
	rec.InputHash = s.InputHash
	rec.G1, rec.G2 = s.G1.Name, s.G2.Name
	rec.View, rec.Mode = s.View, s.Mode
	rec.Nodes = s.Nodes
	rec.Links = s.Links
	rec.Measures = s.Measures
	return rec
}

// =============================================================================
// Artifacts
// =============================================================================

// Render generates the artifacts of every requested format.
func (r *Runner) Render(ctx context.Context, res *Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var summary *Summary
	var dot string
	var svg []byte

	for _, format := range opts.Formats {
		var buf bytes.Buffer
		var err error

		switch format {
		case FormatJSON, FormatYAML, FormatTOML:
			if summary == nil {
				summary = Summarize(res)
			}
			err = report.Encode(&buf, format, summary)
		case FormatTable:
			buf.WriteString(report.Table(res.Report.Measures))
			buf.WriteByte('\n')
		case FormatMerged:
			err = io.WriteResult(res.Merged, &buf)
		case FormatSIF:
			err = io.WriteSIF(res.Shown, &buf)
		case FormatDOT, FormatSVG, FormatPNG, FormatPDF:
			if dot == "" {
				dot = nodelink.ToDOT(res.Shown, res.Layout, nodelink.Options{Clusters: true, Labels: opts.Labels})
			}
			if format == FormatDOT {
				buf.WriteString(dot)
				break
			}
			if svg == nil {
				if svg, err = nodelink.RenderSVG(ctx, dot); err != nil {
					break
				}
			}
			var data []byte
			switch format {
			case FormatSVG:
				data = svg
			case FormatPNG:
				data, err = render.ToPNG(ctx, svg, DefaultPNGScale)
			case FormatPDF:
				data, err = render.ToPDF(ctx, svg)
			}
			buf.Write(data)
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = buf.Bytes()
	}
	return artifacts, nil
}
