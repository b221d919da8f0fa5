package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netalign/pkg/monitor"
	"github.com/matzehuels/netalign/pkg/pipeline"
)

// alignOpts holds the command-line flags for the align command.
type alignOpts struct {
	output    string  // output file (single format) or base path
	formats   string  // comma-separated output formats
	view      string  // group, orphan or cycle
	mode      string  // group mode for group views
	threshold float64 // Jaccard cutoff
	labels    bool    // show node names in diagrams
	refresh   bool    // recompute cached merges and scores
	noCache   bool
	noStore   bool
}

// alignCommand creates the align command, which runs the whole pipeline.
func (c *CLI) alignCommand() *cobra.Command {
	var opts alignOpts

	cmd := &cobra.Command{
		Use:   "align " + inputArgs,
		Short: "Merge, score and render an alignment",
		Long: `Align merges the smaller network G1 and the larger network G2 under the
alignment, scores it, lays out the merged network and writes the requested
formats. With a perfect alignment, correctness measures and views are available.`,
		Example: `  netalign align yeast.sif human.sif run.align true.align -f table,svg
  netalign align g1.sif g2.sif run.align true.align --view cycle -o out/run.svg`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				opts.threshold = c.settings().Groups.Threshold
			}
			return c.runAlign(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames(), ", ")+" (comma-separated, default table)")
	cmd.Flags().StringVar(&opts.view, "view", string(pipeline.DefaultView), "layout view: group, orphan, cycle")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "group mode: none, node_correctness, jaccard_similarity")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Jaccard similarity threshold (default from config)")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "show node names in diagrams")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute instead of reading the cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "do not archive the report")

	return cmd
}

func (c *CLI) runAlign(cmd *cobra.Command, args []string, opts alignOpts) error {
	ctx := cmd.Context()
	formats := parseFormats(opts.formats, pipeline.FormatTable)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	table, err := c.settings().GroupTable()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, runnerOpts{noCache: opts.noCache, noStore: opts.noStore})
	if err != nil {
		return err
	}
	defer c.closeRunner(runner)

	paths := inputPaths(args)
	res, err := withSpinner(ctx, "Aligning "+filepath.Base(paths.Alignment), func(ctx context.Context) (*pipeline.Result, error) {
		return runner.Execute(ctx, pipeline.Options{
			Paths:     paths,
			View:      opts.view,
			Mode:      opts.mode,
			Threshold: &opts.threshold,
			Formats:   formats,
			Labels:    opts.labels,
			Refresh:   opts.refresh,
			Table:     table,
		})
	})
	if err != nil {
		return err
	}

	printSuccess("Aligned %s to %s", StyleHighlight.Render(filepath.Base(paths.G1)), StyleHighlight.Render(filepath.Base(paths.G2)))
	printStats(res.Stats.Nodes, res.Stats.Links, res.CacheInfo.MergeHit && res.CacheInfo.ScoreHit)
	if string(res.View) != opts.view {
		printWarning("Showing the %s view", res.View)
	}

	if len(formats) == 1 && opts.output == "" && formats[0] == pipeline.FormatTable {
		fmt.Fprint(cmd.OutOrStdout(), string(res.Artifacts[pipeline.FormatTable]))
		return nil
	}
	if err := writeArtifacts(res, formats, basePath(opts.output, paths.Alignment, formats)); err != nil {
		return err
	}
	if runner.Store != nil {
		printNextStep("Show the report", appName+" reports show "+res.RunID)
	}
	return nil
}

// withSpinner runs fn while a spinner shows its progress.
func withSpinner[T any](ctx context.Context, message string, fn func(context.Context) (T, error)) (T, error) {
	sp := newSpinner(ctx, os.Stderr, message)
	sp.Start()
	v, err := fn(monitor.WithReporter(ctx, sp))
	sp.Stop()
	return v, err
}

// basePath derives the base output path. Without an output it strips the
// extension of the alignment file; an output carrying the extension of its
// single format is used as is.
func basePath(output, input string, formats []string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	for _, f := range formats {
		if ext := "." + pipeline.Extension(f); strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// writeArtifacts writes every rendered format to base.<ext>.
func writeArtifacts(res *pipeline.Result, formats []string, base string) error {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	for _, f := range formats {
		path := base + "." + pipeline.Extension(f)
		if err := os.WriteFile(path, res.Artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f, err)
		}
		printFile(path)
	}
	return nil
}
