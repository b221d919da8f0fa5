package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netalign/pkg/pipeline"
	"github.com/matzehuels/netalign/pkg/render/report"
	"github.com/matzehuels/netalign/pkg/score"
)

// scoreOutput is a score report keyed by node name, which every structured
// format can encode.
type scoreOutput struct {
	Measures []score.Measure    `json:"measures" yaml:"measures" toml:"measures"`
	Jaccard  map[string]float64 `json:"jaccard,omitempty" yaml:"jaccard,omitempty" toml:"jaccard,omitempty"`
}

func newScoreOutput(rep *score.Report) scoreOutput {
	out := scoreOutput{Measures: rep.Measures}
	if len(rep.Jaccard) > 0 {
		out.Jaccard = make(map[string]float64, len(rep.Jaccard))
		for n, v := range rep.Jaccard {
			out.Jaccard[n.String()] = v
		}
	}
	return out
}

// scoreCommand creates the score command, which prints the alignment measures.
func (c *CLI) scoreCommand() *cobra.Command {
	var (
		format  string
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "score " + inputArgs,
		Short: "Score an alignment",
		Long: `Score computes the topological measures of an alignment (EC, ICS, S3)
and, given the perfect alignment, its correctness measures (NC, NGS, LGS, JS).`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != pipeline.FormatTable && !report.IsFormat(format) {
				return fmt.Errorf("invalid format: %s (must be one of: table, json, yaml, toml)", format)
			}
			table, err := c.settings().GroupTable()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, runnerOpts{noCache: noCache, noStore: true})
			if err != nil {
				return err
			}
			defer c.closeRunner(runner)

			res, err := runner.Analyze(ctx, pipeline.Options{
				Paths:   inputPaths(args),
				Refresh: refresh,
				Table:   table,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == pipeline.FormatTable {
				fmt.Fprintln(out, report.Table(res.Report.Measures))
				return nil
			}
			return report.Encode(out, format, newScoreOutput(res.Report))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatTable, "output format: table, json, yaml, toml")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute instead of reading the cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache")

	return cmd
}
