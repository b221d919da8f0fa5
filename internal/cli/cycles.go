package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netalign/pkg/cycle"
	"github.com/matzehuels/netalign/pkg/pipeline"
)

// maxChainNodes bounds the nodes shown per chain in tables.
const maxChainNodes = 6

// cyclesCommand creates the cycles command, which lists the chains the
// alignment and the perfect alignment form together.
func (c *CLI) cyclesCommand() *cobra.Command {
	var (
		all     bool
		browse  bool
		limit   int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "cycles <g1.sif> <g2.sif> <alignment> <perfect>",
		Short: "List the cycles and paths of misaligned nodes",
		Long: `Cycles follows every node from its G2 partner back to the G1 node the
perfect alignment pairs with that partner. The walk ends in a cycle or a path;
a chain is correct when all its nodes are aligned correctly. Incorrect chains
are listed longest first.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, runnerOpts{noCache: noCache, noStore: true})
			if err != nil {
				return err
			}
			defer c.closeRunner(runner)

			res, err := runner.Analyze(ctx, pipeline.Options{Paths: inputPaths(args)})
			if err != nil {
				return err
			}
			chains, _, err := cycle.Chains(ctx, res.Merged, cycle.Input{
				Alignment: res.Inputs.Alignment,
				Perfect:   res.Inputs.Perfect,
				G1Nodes:   res.Inputs.G1.Nodes(),
				G2Nodes:   res.Inputs.G2.Nodes(),
			})
			if err != nil {
				return err
			}

			total := len(chains)
			if !all {
				chains = slices.DeleteFunc(chains, func(ch *cycle.Chain) bool { return ch.Correct })
			}
			sortChains(chains)
			if len(chains) == 0 {
				printSuccess("All %d chains are correct", total)
				return nil
			}

			if browse {
				return runChainBrowser(ctx, chains)
			}
			shown := chains
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			fmt.Fprintln(cmd.OutOrStdout(), chainTable(shown))
			printDetail("%d of %d chains shown", len(shown), total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include correct chains")
	cmd.Flags().BoolVar(&browse, "browse", false, "browse chains interactively")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum chains listed (0 for all)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache")

	return cmd
}

// sortChains orders incorrect chains first, then longer chains, then cycles
// before paths. Ties keep extraction order.
func sortChains(chains []*cycle.Chain) {
	slices.SortStableFunc(chains, func(a, b *cycle.Chain) int {
		if a.Correct != b.Correct {
			if !a.Correct {
				return -1
			}
			return 1
		}
		if n := cmp.Compare(len(b.Nodes), len(a.Nodes)); n != 0 {
			return n
		}
		if a.IsCycle != b.IsCycle {
			if a.IsCycle {
				return -1
			}
			return 1
		}
		return 0
	})
}

// chainNodes joins up to limit node names, eliding the rest. Cycles that fit
// repeat their first node at the end.
func chainNodes(ch *cycle.Chain, limit int) string {
	if limit <= 0 || limit > len(ch.Nodes) {
		limit = len(ch.Nodes)
	}
	names := make([]string, 0, limit+1)
	for _, n := range ch.Nodes[:limit] {
		names = append(names, n.String())
	}
	switch {
	case limit < len(ch.Nodes):
		names = append(names, fmt.Sprintf("… +%d", len(ch.Nodes)-limit))
	case ch.IsCycle && len(names) > 0:
		names = append(names, names[0])
	}
	return strings.Join(names, " → ")
}

// chainTable renders chains as a bordered table.
func chainTable(chains []*cycle.Chain) string {
	rows := make([][]string, len(chains))
	for i, ch := range chains {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			ch.Kind(),
			strconv.Itoa(len(ch.Nodes)),
			correctMark(ch.Correct),
			chainNodes(ch, maxChainNodes),
		}
	}
	return newTable([]string{"#", "KIND", "LEN", "OK", "NODES"}, rows, nil).Render()
}
