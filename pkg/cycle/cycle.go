package cycle

import (
	"context"
	"fmt"
	"slices"

	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/layout"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/monitor"
	"github.com/matzehuels/netalign/pkg/network"
)

// Annotation colors alternate between incorrect chains.
const (
	ColorEven = "Orange"
	ColorOdd  = "Green"
)

// Input carries the name-level data the back map is built from.
type Input struct {
	Alignment network.Alignment
	Perfect   network.Alignment
	G1Nodes   []string
	G2Nodes   []string
}

// Chain is an ordered run of merged nodes.
type Chain struct {
	Nodes   []merge.NodeID
	IsCycle bool
	Correct bool
}

// Kind returns "cycle" or "path".
func (c *Chain) Kind() string {
	if c.IsCycle {
		return "cycle"
	}
	return "path"
}

// rotated returns the chain's nodes starting at n for cycles, and from the
// head for paths.
func (c *Chain) rotated(n merge.NodeID) []merge.NodeID {
	if !c.IsCycle {
		return slices.Clone(c.Nodes)
	}
	start := 0
	for i, m := range c.Nodes {
		if m == n {
			start = i
			break
		}
	}
	out := make([]merge.NodeID, 0, len(c.Nodes))
	out = append(out, c.Nodes[start:]...)
	return append(out, c.Nodes[:start]...)
}

// BackMap returns the G2 → G1 name map used to close chains, or nil when
// names are shared and the identity works.
func BackMap(ctx context.Context, in Input) (network.Alignment, error) {
	mon := monitor.FromContext(ctx)

	values := make(map[string]struct{}, len(in.Alignment))
	loop := mon.Loop("check alignment names", len(in.Alignment))
	for _, v := range in.Alignment {
		if err := loop.Tick(); err != nil {
			return nil, err
		}
		if _, dup := values[v]; dup {
			return nil, apperr.New(apperr.ErrCodeCriterionNotMet, "alignment target %q appears twice", v)
		}
		values[v] = struct{}{}
	}
	loop.Done()

	large, err := nameSet(mon, "check G2 names", in.G2Nodes)
	if err != nil {
		return nil, err
	}
	if _, err := nameSet(mon, "check G1 names", in.G1Nodes); err != nil {
		return nil, err
	}

	identity := true
	for k := range in.Alignment {
		if _, ok := large[k]; !ok {
			identity = false
			break
		}
	}
	if identity {
		return nil, nil
	}
	if len(in.Perfect) == 0 {
		return nil, apperr.New(apperr.ErrCodeCriterionNotMet,
			"networks do not share node names and no perfect alignment is given")
	}
	return in.Perfect.Inverse(), nil
}

func nameSet(mon *monitor.Monitor, phase string, names []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(names))
	loop := mon.Loop(phase, len(names))
	for _, n := range names {
		if err := loop.Tick(); err != nil {
			return nil, err
		}
		if _, dup := set[n]; dup {
			return nil, apperr.New(apperr.ErrCodeCriterionNotMet, "node name %q appears twice", n)
		}
		set[n] = struct{}{}
	}
	loop.Done()
	return set, nil
}

// Chains partitions the nodes of res into cycles and paths. The returned map
// points every node at its chain.
func Chains(ctx context.Context, res *merge.Result, in Input) ([]*Chain, map[merge.NodeID]*Chain, error) {
	back, err := BackMap(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	nodes := res.Nodes()

	bySmall := make(map[string]merge.NodeID, len(nodes))
	for _, n := range nodes {
		if n.HasSmall() {
			bySmall[n.Small] = n
		}
	}
	next := func(n merge.NodeID) (merge.NodeID, bool) {
		if n.Color == merge.Blue {
			return merge.NodeID{}, false
		}
		name := n.Large
		if back != nil {
			var ok bool
			if name, ok = back[n.Large]; !ok {
				return merge.NodeID{}, false
			}
		}
		m, ok := bySmall[name]
		return m, ok
	}

	heads := make(map[merge.NodeID]*Chain)
	var order []merge.NodeID
	taken := make(map[merge.NodeID]bool, len(nodes))

	loop := monitor.FromContext(ctx).Loop("build chains", len(nodes))
	for _, start := range nodes {
		if err := loop.Tick(); err != nil {
			return nil, nil, err
		}
		if taken[start] {
			continue
		}
		taken[start] = true
		c := &Chain{Nodes: []merge.NodeID{start}}
		heads[start] = c
		order = append(order, start)

		cur, ok := next(start)
		for ok {
			if cur == start {
				c.IsCycle = true
				c.Correct = len(c.Nodes) == 1
				break
			}
			if existing := heads[cur]; existing != nil {
				if existing.IsCycle || !taken[cur] {
					return nil, nil, apperr.New(apperr.ErrCodeInternal,
						"chain at %s cannot be joined onto %s", cur, start)
				}
				c.Nodes = append(c.Nodes, existing.Nodes...)
				delete(heads, cur)
				break
			}
			if taken[cur] {
				return nil, nil, apperr.New(apperr.ErrCodeInternal,
					"node %s reached twice while following %s", cur, start)
			}
			taken[cur] = true
			c.Nodes = append(c.Nodes, cur)
			cur, ok = next(cur)
		}
	}
	loop.Done()

	chains := make([]*Chain, 0, len(heads))
	of := make(map[merge.NodeID]*Chain, len(nodes))
	for _, h := range order {
		c, ok := heads[h]
		if !ok {
			continue
		}
		if len(c.Nodes) == 1 {
			if c.Nodes[0].Color == merge.Purple {
				if c.IsCycle != c.Correct {
					return nil, nil, apperr.New(apperr.ErrCodeInternal,
						"single node %s %s has inconsistent correctness", c.Kind(), c.Nodes[0])
				}
			} else {
				c.Correct = true
			}
		}
		for _, n := range c.Nodes {
			of[n] = c
		}
		chains = append(chains, c)
	}
	return chains, of, nil
}

// Extract orders the nodes of res chain by chain. Bounds cover every chain
// in emission order; annotations cover only the incorrect ones.
func Extract(ctx context.Context, res *merge.Result, in Input) (*layout.Layout, error) {
	_, of, err := Chains(ctx, res, in)
	if err != nil {
		return nil, err
	}

	counts := layout.LinkCounts(res)
	byCount := layout.ByCount(counts)
	neighbors := res.Neighbors()

	out := &layout.Layout{View: layout.ViewCycle, Nodes: make([]merge.NodeID, 0, len(of))}
	emitted := make(map[merge.NodeID]bool, len(of))
	emit := func(n merge.NodeID) ([]merge.NodeID, error) {
		c, ok := of[n]
		if !ok {
			return nil, apperr.New(apperr.ErrCodeInternal, "node %s has no chain", n)
		}
		seq := c.rotated(n)
		start := len(out.Nodes)
		for _, m := range seq {
			if emitted[m] {
				return nil, apperr.New(apperr.ErrCodeInternal, "node %s emitted twice", m)
			}
			emitted[m] = true
		}
		out.Nodes = append(out.Nodes, seq...)
		out.Bounds = append(out.Bounds, layout.Bounds{
			Start:   start,
			End:     len(out.Nodes) - 1,
			Correct: c.Correct,
			IsCycle: c.IsCycle,
		})
		return seq, nil
	}

	ranked := make([]merge.NodeID, 0, len(counts))
	for n, c := range counts {
		if c > 0 {
			ranked = append(ranked, n)
		}
	}
	slices.SortFunc(ranked, byCount)

	loop := monitor.FromContext(ctx).Loop("order chains", len(ranked))
	for _, n := range ranked {
		if err := loop.Tick(); err != nil {
			return nil, err
		}
		if emitted[n] {
			continue
		}
		queue, err := emit(n)
		if err != nil {
			return nil, err
		}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			for _, kid := range layout.SortedKids(neighbors, byCount, node) {
				if emitted[kid] {
					continue
				}
				seq, err := emit(kid)
				if err != nil {
					return nil, err
				}
				queue = append(queue, seq...)
			}
		}
	}
	loop.Done()

	for _, n := range res.Loners {
		if emitted[n] {
			continue
		}
		if _, err := emit(n); err != nil {
			return nil, err
		}
	}

	out.Annotations = Annotate(out.Bounds)
	if err := out.Check(res); err != nil {
		return nil, err
	}
	return out, nil
}

// Annotate labels the incorrect chains of bounds in order. Cycles and paths
// share one counter; colors alternate with it.
func Annotate(bounds []layout.Bounds) []layout.Annotation {
	var out []layout.Annotation
	n := 0
	for _, b := range bounds {
		if b.Correct {
			continue
		}
		kind := "path"
		if b.IsCycle {
			kind = "cycle"
		}
		color := ColorEven
		if n%2 != 0 {
			color = ColorOdd
		}
		out = append(out, layout.Annotation{
			Name:  fmt.Sprintf("%s %d", kind, n),
			Start: b.Start,
			End:   b.End,
			Color: color,
		})
		n++
	}
	return out
}
