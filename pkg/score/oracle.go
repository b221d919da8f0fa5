package score

import (
	"context"

	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/monitor"
	"github.com/matzehuels/netalign/pkg/network"
)

// onode is a node of the oracle network. Nodes carry truth identities;
// testOnly marks the stand-in for a G1 node the test alignment left blue
// although the truth aligns it.
type onode struct {
	id       merge.NodeID
	testOnly bool
}

// oracle is the shared-namespace network Jaccard similarity compares
// neighbor sets in.
type oracle struct {
	adj   map[onode]map[onode]struct{}
	truth merge.Translator
}

func (o *oracle) link(a, b onode) {
	o.node(a)[b] = struct{}{}
	o.node(b)[a] = struct{}{}
}

func (o *oracle) node(n onode) map[onode]struct{} {
	s, ok := o.adj[n]
	if !ok {
		s = make(map[onode]struct{})
		o.adj[n] = s
	}
	return s
}

func (o *oracle) neighbors(n onode) map[onode]struct{} {
	return o.adj[n]
}

// buildOracle joins the truth network, without its FULL_UNALIGNED_G2 links,
// with one test-only node per misassigned G1 node. A test-only node takes
// the node's HALF_ORPHAN_G1 links from the test network, their purple ends
// moved to the truth identity of their G1 side.
func buildOracle(ctx context.Context, test, truth *merge.Result, perfect network.Alignment) (*oracle, error) {
	o := &oracle{
		adj:   make(map[onode]map[onode]struct{}, len(truth.Colors)),
		truth: merge.NewTranslator(perfect),
	}
	for n := range truth.Colors {
		o.node(onode{id: n})
	}

	mon := monitor.FromContext(ctx)
	loop := mon.Loop("oracle truth links", len(truth.Links))
	for _, l := range truth.Links {
		if err := loop.Tick(); err != nil {
			return nil, err
		}
		if l.Shadow || l.Relation == merge.FullUnalignedG2 {
			continue
		}
		o.link(onode{id: l.Src}, onode{id: l.Trg})
	}
	loop.Done()

	loop = mon.Loop("oracle test links", len(test.Links))
	for _, l := range test.Links {
		if err := loop.Tick(); err != nil {
			return nil, err
		}
		if l.Shadow || l.Relation != merge.HalfOrphanG1 {
			continue
		}
		blue, purple := l.Src, l.Trg
		if blue.Color != merge.Blue {
			blue, purple = purple, blue
		}
		if _, misassigned := perfect[blue.Small]; !misassigned {
			continue
		}
		o.link(onode{id: blue, testOnly: true}, onode{id: o.truth.Small(purple.Small)})
	}
	loop.Done()
	return o, nil
}

// match returns the oracle node the G1 node name is compared against: the
// truth identity of its test partner, its test-only node when the test left
// it blue against the truth, or its own identity when both leave it blue.
func (o *oracle) match(name string, align, perfect network.Alignment) onode {
	if t, ok := align[name]; ok {
		return onode{id: o.truth.Large(t)}
	}
	if _, ok := perfect[name]; ok {
		return onode{id: merge.Unaligned(name), testOnly: true}
	}
	return onode{id: o.truth.Small(name)}
}

// similarity compares the neighbor sets of a and b. When a and b are
// adjacent the mutual adjacency is dropped from both sets and counted once
// in the numerator and the denominator. Two empty sets score 1.
func (o *oracle) similarity(a, b onode) float64 {
	na, nb := o.neighbors(a), o.neighbors(b)
	adjust := 0
	_, adjacent := na[b]
	if adjacent {
		adjust = 1
	}
	inter, union := 0, 0
	for n := range na {
		if adjacent && n == b {
			continue
		}
		union++
		if _, ok := nb[n]; ok && !(adjacent && n == a) {
			inter++
		}
	}
	for n := range nb {
		if adjacent && n == a {
			continue
		}
		if _, ok := na[n]; ok && !(adjacent && n == b) {
			continue
		}
		union++
	}
	num, den := inter+adjust, union+adjust
	if den == 0 {
		return 1.0
	}
	return float64(num) / float64(den)
}
