package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/netalign/pkg/cache"
	"github.com/matzehuels/netalign/pkg/groups"
	"github.com/matzehuels/netalign/pkg/io"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/monitor"
	"github.com/matzehuels/netalign/pkg/network"
	"github.com/matzehuels/netalign/pkg/observability"
	"github.com/matzehuels/netalign/pkg/score"
	"github.com/matzehuels/netalign/pkg/storage"
)

// Stage names reported to observability hooks.
const (
	StageLoad   = "load"
	StageMerge  = "merge"
	StageScore  = "score"
	StageLayout = "layout"
	StageRender = "render"
	StageStore  = "store"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, store and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache cache.Cache
	Keyer cache.Keyer
	// Store archives summaries. Nil skips the store stage.
	Store  storage.Store
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache, keyer and store.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, store storage.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  store,
		Logger: logger,
	}
}

// Execute runs the complete pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result, err := r.analyze(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Stage 4: Layout
	err = r.stage(ctx, StageLayout, &result.Stats.LayoutTime, func() error {
		return r.Layout(ctx, result, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	opts.Logger.Info("computed layout",
		"view", result.View,
		"rows", len(result.Layout.Nodes),
		"annotations", len(result.Layout.Annotations),
		"duration", result.Stats.LayoutTime)

	// Stage 5: Render
	err = r.stage(ctx, StageRender, &result.Stats.RenderTime, func() (err error) {
		result.Artifacts, err = r.Render(ctx, result, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	// Stage 6: Store
	if r.Store != nil {
		err = r.stage(ctx, StageStore, &result.Stats.StoreTime, func() error {
			return r.Store.Save(ctx, Summarize(result).Record())
		})
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		opts.Logger.Debug("stored report", "id", result.RunID)
	}

	return result, nil
}

// Analyze runs the load, merge and score stages only. The result has no
// layout and no artifacts.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return r.analyze(ctx, opts)
}

func (r *Runner) analyze(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	err := r.stage(ctx, StageLoad, &result.Stats.LoadTime, func() (err error) {
		result.Inputs, err = r.Load(ctx, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	in := result.Inputs
	result.Stats.G1Nodes = in.G1.NodeCount()
	result.Stats.G2Nodes = in.G2.NodeCount()
	if result.InputHash, err = inputHash(mergeInput(in, in.Alignment)); err != nil {
		return nil, fmt.Errorf("hash inputs: %w", err)
	}

	opts.Logger.Info("loaded inputs",
		"g1_nodes", result.Stats.G1Nodes,
		"g2_nodes", result.Stats.G2Nodes,
		"aligned", len(in.Alignment),
		"duration", result.Stats.LoadTime)

	// Stage 2: Merge
	err = r.stage(ctx, StageMerge, &result.Stats.MergeTime, func() (err error) {
		result.Merged, result.Truth, result.CacheInfo.MergeHit, err = r.MergeWithCacheInfo(ctx, in, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	result.Stats.Nodes = result.Merged.NodeCount()
	result.Stats.Links = result.Merged.LinkCount()

	opts.Logger.Info("merged networks",
		"nodes", result.Stats.Nodes,
		"links", result.Stats.Links,
		"cached", result.CacheInfo.MergeHit,
		"duration", result.Stats.MergeTime)

	// Stage 3: Score
	err = r.stage(ctx, StageScore, &result.Stats.ScoreTime, func() (err error) {
		result.Report, result.CacheInfo.ScoreHit, err = r.ScoreWithCacheInfo(ctx, result, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	for _, m := range result.Report.Measures {
		observability.Pipeline().OnMeasure(ctx, m.Name, m.Value)
	}

	opts.Logger.Info("scored alignment",
		"measures", len(result.Report.Measures),
		"cached", result.CacheInfo.ScoreHit,
		"duration", result.Stats.ScoreTime)

	return result, nil
}

// stage times fn and reports it to the pipeline hooks. A canceled context
// stops the pipeline between stages.
func (r *Runner) stage(ctx context.Context, name string, d *time.Duration, fn func() error) error {
	if err := monitor.FromContext(ctx).Check(); err != nil {
		return err
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	err := fn()
	*d = time.Since(start)
	hooks.OnStageComplete(ctx, name, *d, err)
	return err
}

// Load returns the inline inputs, or reads the input files.
func (r *Runner) Load(ctx context.Context, opts Options) (*io.Inputs, error) {
	if opts.Inputs != nil {
		return opts.Inputs, nil
	}
	return io.LoadAll(ctx, opts.Paths)
}

func mergeInput(in *io.Inputs, a network.Alignment) merge.Input {
	return merge.Input{G1: in.G1, G2: in.G2, Alignment: a, Perfect: in.Perfect}
}

// inputHash hashes everything a merge depends on.
func inputHash(mi merge.Input) (string, error) {
	return cache.HashJSON(struct {
		G1        *network.Network  `json:"g1"`
		G2        *network.Network  `json:"g2"`
		Alignment network.Alignment `json:"alignment"`
		Perfect   network.Alignment `json:"perfect,omitempty"`
	}{mi.G1, mi.G2, mi.Alignment, mi.Perfect})
}

// MergeWithCacheInfo merges the networks under the alignment and, when a
// perfect alignment is given, under it too. Both merges run concurrently.
// hit is true when every merge came from cache.
func (r *Runner) MergeWithCacheInfo(ctx context.Context, in *io.Inputs, opts Options) (test, truth *merge.Result, hit bool, err error) {
	r.applyLogger(&opts)
	if err := network.CheckOrder(in.G1, in.G2); err != nil {
		return nil, nil, false, err
	}

	testHit, truthHit := false, true
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		test, testHit, err = r.cachedMerge(gctx, mergeInput(in, in.Alignment), opts.Refresh)
		return err
	})
	if in.Perfect != nil {
		g.Go(func() (err error) {
			truth, truthHit, err = r.cachedMerge(gctx, mergeInput(in, in.Perfect), opts.Refresh)
			if err != nil {
				return fmt.Errorf("perfect alignment: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, false, err
	}
	return test, truth, testHit && truthHit, nil
}

func (r *Runner) cachedMerge(ctx context.Context, mi merge.Input, refresh bool) (*merge.Result, bool, error) {
	h, err := inputHash(mi)
	if err != nil {
		return nil, false, fmt.Errorf("hash inputs: %w", err)
	}
	key := r.Keyer.MergeKey(h)

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if res, err := io.ReadResult(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "merge")
				return res, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "merge")
	}

	res, err := merge.Merge(ctx, mi)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := io.WriteResult(res, &buf); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLMerge); err == nil {
			observability.Cache().OnCacheSet(ctx, "merge", buf.Len())
		} else {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return res, false, nil
}

// scoreTable returns the table used for group similarity, which must not
// carry correctness bits.
func scoreTable(opts Options) *groups.Table {
	if opts.Table != nil && !opts.Table.Correctness {
		return opts.Table
	}
	return nil
}

// ScoreWithCacheInfo scores res.Merged and returns cache hit info.
func (r *Runner) ScoreWithCacheInfo(ctx context.Context, res *Result, opts Options) (*score.Report, bool, error) {
	table := scoreTable(opts)
	var keyOpts cache.ScoreKeyOpts
	if table != nil {
		h, err := cache.HashJSON(table)
		if err != nil {
			return nil, false, fmt.Errorf("hash group table: %w", err)
		}
		keyOpts.Table = h
	}
	key := r.Keyer.ScoreKey(res.InputHash, keyOpts)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var rep score.Report
			if err := json.Unmarshal(data, &rep); err == nil {
				observability.Cache().OnCacheHit(ctx, "score")
				return &rep, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "score")
	}

	rep, err := score.Score(ctx, score.Input{
		G1:        res.Inputs.G1,
		Alignment: res.Inputs.Alignment,
		Perfect:   res.Inputs.Perfect,
		Test:      res.Merged,
		Truth:     res.Truth,
		Table:     table,
	})
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(rep); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLScore); err == nil {
			observability.Cache().OnCacheSet(ctx, "score", len(data))
		}
	}
	return rep, false, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	var errs []error
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Store != nil {
		if err := r.Store.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
