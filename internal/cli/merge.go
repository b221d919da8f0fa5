package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	netio "github.com/matzehuels/netalign/pkg/io"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/pipeline"
)

// mergeCommand creates the merge command, which writes the merged network.
func (c *CLI) mergeCommand() *cobra.Command {
	var (
		output  string
		format  string
		orphan  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "merge " + inputArgs,
		Short: "Merge two networks under an alignment",
		Long: `Merge writes the merged network as JSON (merged) or as SIF, where every
link carries its relation tag and every node is named "g1::g2".`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != pipeline.FormatMerged && format != pipeline.FormatSIF {
				return fmt.Errorf("invalid format: %s (must be 'merged' or 'sif')", format)
			}
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, runnerOpts{noCache: noCache, noStore: true})
			if err != nil {
				return err
			}
			defer c.closeRunner(runner)

			prog := newProgress(c.Logger)
			opts := pipeline.Options{Paths: inputPaths(args)}
			in, err := runner.Load(ctx, opts)
			if err != nil {
				return err
			}
			res, _, hit, err := runner.MergeWithCacheInfo(ctx, in, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Merged %d nodes", res.NodeCount()))
			if orphan {
				res = merge.OrphanView(res)
			}

			var buf bytes.Buffer
			if format == pipeline.FormatSIF {
				err = netio.WriteSIF(res, &buf)
			} else {
				err = netio.WriteResult(res, &buf)
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Merged network")
			printStats(res.NodeCount(), res.LinkCount(), hit)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatMerged, "output format: merged, sif")
	cmd.Flags().BoolVar(&orphan, "orphan", false, "keep only the links G1 and G2 do not share")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache")

	return cmd
}
