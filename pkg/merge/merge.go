package merge

import (
	"context"
	"maps"
	"slices"

	"github.com/matzehuels/netalign/pkg/monitor"
	"github.com/matzehuels/netalign/pkg/network"
)

// Input is everything [Merge] needs.
type Input struct {
	G1        *network.Network
	G2        *network.Network
	Alignment network.Alignment
	// Perfect is the optional ground truth. When set, the result carries
	// correctness labels.
	Perfect network.Alignment
}

// Result is a merged network.
type Result struct {
	// Links holds every merged link followed by its shadow copy, in a
	// deterministic order.
	Links []Link `json:"links"`
	// Loners are nodes without any link, sorted.
	Loners []NodeID `json:"loners,omitempty"`
	// Colors maps every node to its color.
	Colors map[NodeID]Color `json:"colors"`
	// Correct labels purple and blue nodes. Nil without a perfect alignment.
	Correct map[NodeID]bool `json:"correct,omitempty"`
	// Counts holds the number of non-shadow links per relation.
	Counts [NumRelations]int `json:"counts"`
}

// pair is an undirected merged edge with endpoints in canonical order.
type pair struct {
	a, b NodeID
}

func newPair(x, y NodeID) pair {
	if Compare(y, x) < 0 {
		return pair{a: y, b: x}
	}
	return pair{a: x, b: y}
}

func comparePairs(p, q pair) int {
	if c := Compare(p.a, q.a); c != 0 {
		return c
	}
	return Compare(p.b, q.b)
}

// Merge builds the merged network of in.G1 and in.G2 under in.Alignment.
// Validation failures carry errors.ErrCodeInvalidAlignment and are reported
// before any work is done. Cancellation of ctx returns monitor.ErrCanceled.
func Merge(ctx context.Context, in Input) (*Result, error) {
	if err := in.Alignment.Validate(in.G1, in.G2); err != nil {
		return nil, err
	}
	if in.Perfect != nil {
		if err := in.Perfect.Validate(in.G1, in.G2); err != nil {
			return nil, err
		}
	}
	mon := monitor.FromContext(ctx)
	tr := NewTranslator(in.Alignment)

	small, err := translateLinks(mon, "translate G1 links", in.G1.Links, tr.Small)
	if err != nil {
		return nil, err
	}
	large, err := translateLinks(mon, "translate G2 links", in.G2.Links, tr.Large)
	if err != nil {
		return nil, err
	}

	res := &Result{Colors: make(map[NodeID]Color)}
	covered := make([]bool, len(small))

	loop := mon.Loop("classify G2 links", len(large))
	for _, p := range large {
		if err := loop.Tick(); err != nil {
			return nil, err
		}
		if i, found := slices.BinarySearchFunc(small, p, comparePairs); found {
			covered[i] = true
			res.add(p, Covered)
			continue
		}
		res.add(p, ClassifyG2(p.a, p.b))
	}
	loop.Done()

	loop = mon.Loop("classify G1 links", len(small))
	for i, p := range small {
		if err := loop.Tick(); err != nil {
			return nil, err
		}
		if !covered[i] {
			res.add(p, ClassifyG1(p.a, p.b))
		}
	}
	loop.Done()

	res.sortLinks()
	res.addLoners(in, tr)
	res.fillColors()

	if in.Perfect != nil {
		res.Correct = make(map[NodeID]bool)
		for n := range res.Colors {
			if ok, labeled := Correctness(n, in.Perfect); labeled {
				res.Correct[n] = ok
			}
		}
	}
	return res, nil
}

// translateLinks maps input links to sorted, deduplicated merged pairs.
func translateLinks(mon *monitor.Monitor, phase string, links []network.Link, f func(string) NodeID) ([]pair, error) {
	seen := make(map[pair]struct{}, len(links))
	out := make([]pair, 0, len(links))
	loop := mon.Loop(phase, len(links))
	for _, l := range links {
		if err := loop.Tick(); err != nil {
			return nil, err
		}
		p := newPair(f(l.Src), f(l.Trg))
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	loop.Done()
	slices.SortFunc(out, comparePairs)
	return out, nil
}

// add appends a link and, unless it is a self-loop, its shadow.
func (r *Result) add(p pair, rel Relation) {
	r.Links = append(r.Links, Link{Src: p.a, Trg: p.b, Relation: rel})
	if p.a != p.b {
		r.Links = append(r.Links, Link{Src: p.a, Trg: p.b, Relation: rel, Shadow: true})
	}
	r.Counts[rel]++
}

// sortLinks orders links by relation, then endpoints, non-shadow first.
func (r *Result) sortLinks() {
	slices.SortStableFunc(r.Links, func(x, y Link) int {
		if x.Relation != y.Relation {
			return int(x.Relation) - int(y.Relation)
		}
		if c := comparePairs(pair{x.Src, x.Trg}, pair{y.Src, y.Trg}); c != 0 {
			return c
		}
		switch {
		case !x.Shadow && y.Shadow:
			return -1
		case x.Shadow && !y.Shadow:
			return 1
		}
		return 0
	})
}

func (r *Result) addLoners(in Input, tr Translator) {
	linked := make(map[NodeID]struct{}, len(r.Links))
	for _, l := range r.Links {
		linked[l.Src] = struct{}{}
		linked[l.Trg] = struct{}{}
	}
	loners := make(map[NodeID]struct{})
	for _, name := range in.G1.Loners {
		loners[tr.Small(name)] = struct{}{}
	}
	for _, name := range in.G2.Loners {
		loners[tr.Large(name)] = struct{}{}
	}
	for n := range loners {
		if _, ok := linked[n]; !ok {
			r.Loners = append(r.Loners, n)
		}
	}
	slices.SortFunc(r.Loners, Compare)
}

func (r *Result) fillColors() {
	for _, l := range r.Links {
		r.Colors[l.Src] = l.Src.Color
		r.Colors[l.Trg] = l.Trg.Color
	}
	for _, n := range r.Loners {
		r.Colors[n] = n.Color
	}
}

// Nodes returns every merged node, sorted.
func (r *Result) Nodes() []NodeID {
	return slices.SortedFunc(maps.Keys(r.Colors), Compare)
}

// NodeCount returns the number of merged nodes.
func (r *Result) NodeCount() int { return len(r.Colors) }

// Reduced returns the links without shadow copies.
func (r *Result) Reduced() []Link {
	out := make([]Link, 0, len(r.Links)/2+1)
	for _, l := range r.Links {
		if !l.Shadow {
			out = append(out, l)
		}
	}
	return out
}

// LinkCount returns the number of non-shadow links.
func (r *Result) LinkCount() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// ColorCounts returns how many nodes carry each color.
func (r *Result) ColorCounts() map[Color]int {
	out := make(map[Color]int, len(Colors))
	for _, c := range r.Colors {
		out[c]++
	}
	return out
}

// IncidentRelations returns, per node, the set of relations among its
// non-shadow links as a bitmask indexed by Relation.
func (r *Result) IncidentRelations() map[NodeID]uint8 {
	out := make(map[NodeID]uint8, len(r.Colors))
	for n := range r.Colors {
		out[n] = 0
	}
	for _, l := range r.Links {
		if l.Shadow {
			continue
		}
		bit := uint8(1) << l.Relation
		out[l.Src] |= bit
		out[l.Trg] |= bit
	}
	return out
}

// Neighbors returns the undirected neighbor sets over non-shadow links.
// Every node, including loners, has an entry.
func (r *Result) Neighbors() map[NodeID]map[NodeID]struct{} {
	out := make(map[NodeID]map[NodeID]struct{}, len(r.Colors))
	for n := range r.Colors {
		out[n] = make(map[NodeID]struct{})
	}
	for _, l := range r.Links {
		if l.Shadow {
			continue
		}
		out[l.Src][l.Trg] = struct{}{}
		out[l.Trg][l.Src] = struct{}{}
	}
	return out
}

// OrphanView returns the sub-network around unaligned G1 structure: links
// with at least one endpoint incident to an INDUCED_G1 link. Loners are
// dropped.
func OrphanView(r *Result) *Result {
	focus := make(map[NodeID]struct{})
	for _, l := range r.Links {
		if l.Relation == InducedG1 {
			focus[l.Src] = struct{}{}
			focus[l.Trg] = struct{}{}
		}
	}
	out := &Result{Colors: make(map[NodeID]Color)}
	for _, l := range r.Links {
		_, src := focus[l.Src]
		_, trg := focus[l.Trg]
		if !src && !trg {
			continue
		}
		out.Links = append(out.Links, l)
		if !l.Shadow {
			out.Counts[l.Relation]++
		}
	}
	out.fillColors()
	if r.Correct != nil {
		out.Correct = make(map[NodeID]bool)
		for n := range out.Colors {
			if ok, labeled := r.Correct[n]; labeled {
				out.Correct[n] = ok
			}
		}
	}
	return out
}
