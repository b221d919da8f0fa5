package pipeline

import (
	"context"

	"github.com/matzehuels/netalign/pkg/cycle"
	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/groups"
	"github.com/matzehuels/netalign/pkg/layout"
	"github.com/matzehuels/netalign/pkg/merge"
)

// =============================================================================
// Layout Generation
// =============================================================================

// Layout orders the merged network for the view of opts and stores the
// outcome in res. A cycle view whose criteria fail falls back to the group
// view with a warning; every other failure is returned.
func (r *Runner) Layout(ctx context.Context, res *Result, opts Options) error {
	r.applyLogger(&opts)
	view, err := layout.ParseView(opts.View)
	if err != nil {
		return err
	}

	switch view {
	case layout.ViewCycle:
		lay, err := cycle.Extract(ctx, res.Merged, cycle.Input{
			Alignment: res.Inputs.Alignment,
			Perfect:   res.Inputs.Perfect,
			G1Nodes:   res.Inputs.G1.Nodes(),
			G2Nodes:   res.Inputs.G2.Nodes(),
		})
		if err == nil {
			return res.setLayout(res.Merged, lay)
		}
		if !apperr.Is(err, apperr.ErrCodeCriterionNotMet) {
			return err
		}
		opts.Logger.Warn("cycle view unavailable, using group view", "reason", apperr.UserMessage(err))
		return r.groupLayout(ctx, res, opts)

	case layout.ViewOrphan:
		shown := merge.OrphanView(res.Merged)
		lay, err := layout.Default(ctx, shown, layout.ViewOrphan)
		if err != nil {
			return err
		}
		return res.setLayout(shown, lay)
	}
	return r.groupLayout(ctx, res, opts)
}

func (r *Runner) groupLayout(ctx context.Context, res *Result, opts Options) error {
	mode, err := opts.GroupMode(res.Inputs.Perfect != nil)
	if err != nil {
		return err
	}
	gm, err := groups.New(ctx, res.Merged, groups.Options{
		Mode:      mode,
		Table:     opts.Table,
		Jaccard:   res.Report.Jaccard,
		Threshold: opts.Threshold,
	})
	if err != nil {
		return err
	}
	lay, err := gm.Layout(ctx)
	if err != nil {
		return err
	}
	res.Groups, res.Mode = gm, mode
	return res.setLayout(res.Merged, lay)
}

func (res *Result) setLayout(shown *merge.Result, lay *layout.Layout) error {
	if err := lay.Check(shown); err != nil {
		return err
	}
	res.View, res.Shown, res.Layout = lay.View, shown, lay
	return nil
}
