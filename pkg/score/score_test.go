package score

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/monitor"
	"github.com/matzehuels/netalign/pkg/network"
)

const eps = 1e-6

func netLinks(pairs ...string) []network.Link {
	out := make([]network.Link, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, network.Link{Src: pairs[i], Trg: pairs[i+1]})
	}
	return out
}

// input merges g1 and g2 under align and, when perfect is set, under perfect.
func input(t *testing.T, g1, g2 *network.Network, align, perfect network.Alignment) Input {
	t.Helper()
	ctx := context.Background()
	test, err := merge.Merge(ctx, merge.Input{G1: g1, G2: g2, Alignment: align, Perfect: perfect})
	if err != nil {
		t.Fatalf("Merge(test) error = %v", err)
	}
	in := Input{G1: g1, Alignment: align, Perfect: perfect, Test: test}
	if perfect != nil {
		truth, err := merge.Merge(ctx, merge.Input{G1: g1, G2: g2, Alignment: perfect, Perfect: perfect})
		if err != nil {
			t.Fatalf("Merge(truth) error = %v", err)
		}
		in.Truth = truth
	}
	return in
}

func checkMeasures(t *testing.T, r *Report, want map[string]float64) {
	t.Helper()
	for _, name := range Names {
		got, ok := r.Get(name)
		w, expected := want[name]
		switch {
		case ok && !expected:
			t.Errorf("%s = %v, want omitted", name, got)
		case !ok && expected:
			t.Errorf("%s omitted, want %v", name, w)
		case ok && math.Abs(got-w) > eps:
			t.Errorf("%s = %v, want %v", name, got, w)
		}
	}
}

func TestScore_SelfAlignment(t *testing.T) {
	g := &network.Network{Links: netLinks("a", "b", "b", "c")}
	id := network.Alignment{"a": "a", "b": "b", "c": "c"}
	r, err := Score(context.Background(), input(t, g, g, id, id))
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	checkMeasures(t, r, map[string]float64{EC: 1, S3: 1, ICS: 1, NC: 1, NGS: 1, LGS: 1, JS: 1})

	for i, m := range r.Measures {
		if m.Name != Names[i] {
			t.Errorf("Measures[%d] = %s, want %s", i, m.Name, Names[i])
		}
	}
}

func TestScore_Swap(t *testing.T) {
	g := &network.Network{Links: netLinks("a", "b", "b", "c")}
	align := network.Alignment{"a": "b", "b": "a", "c": "c"}
	id := network.Alignment{"a": "a", "b": "b", "c": "c"}
	r, err := Score(context.Background(), input(t, g, g, align, id))
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	// a::b -- b::a is covered, b::a -- c::c is induced in G1 only and
	// a::b -- c::c in G2 only. No test node shares a group with the truth.
	checkMeasures(t, r, map[string]float64{
		EC:  0.5,
		S3:  1.0 / 3,
		ICS: 0.5,
		NC:  1.0 / 3,
		NGS: 0,
		LGS: 1 - 2*math.Acos(1/math.Sqrt(3))/math.Pi,
		JS:  2.0 / 3,
	})
	if got := r.Jaccard[merge.Aligned("a", "b")]; math.Abs(got-0.5) > eps {
		t.Errorf("Jaccard[a::b] = %v, want 0.5", got)
	}
	if got := r.Jaccard[merge.Aligned("c", "c")]; got != 1 {
		t.Errorf("Jaccard[c::c] = %v, want 1", got)
	}
}

func TestScore_SwappedLoners(t *testing.T) {
	g := &network.Network{Loners: []string{"a", "b"}}
	align := network.Alignment{"a": "b", "b": "a"}
	id := network.Alignment{"a": "a", "b": "b"}
	r, err := Score(context.Background(), input(t, g, g, align, id))
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	// No links: EC, S3, ICS and LGS have nothing to measure. Two isolated
	// nodes matched with each other share their (empty) neighborhoods.
	checkMeasures(t, r, map[string]float64{NC: 0, NGS: 1, JS: 1})
}

func TestScore_TestEqualsTruth(t *testing.T) {
	g1 := &network.Network{Links: netLinks("a", "b", "b", "c", "c", "d")}
	g2 := &network.Network{Links: netLinks("x", "y", "y", "z", "z", "w", "w", "v")}
	align := network.Alignment{"a": "x", "b": "y", "c": "z"}
	r, err := Score(context.Background(), input(t, g1, g2, align, align))
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	checkMeasures(t, r, map[string]float64{EC: 1, S3: 1, ICS: 1, NC: 1, NGS: 1, LGS: 1, JS: 1})
	if len(r.Jaccard) != 4 {
		t.Errorf("len(Jaccard) = %d, want 4", len(r.Jaccard))
	}
	for n, js := range r.Jaccard {
		if js != 1 {
			t.Errorf("Jaccard[%v] = %v, want 1", n, js)
		}
	}
}

func TestScore_TopologyOnly(t *testing.T) {
	g1 := &network.Network{Links: netLinks("a", "b", "b", "c")}
	g2 := &network.Network{Links: netLinks("x", "y", "x", "z")}
	align := network.Alignment{"a": "x", "b": "y", "c": "z"}
	r, err := Score(context.Background(), input(t, g1, g2, align, nil))
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	// a::x -- b::y covered, b::y -- c::z G1 only, a::x -- c::z G2 only.
	checkMeasures(t, r, map[string]float64{EC: 0.5, S3: 1.0 / 3, ICS: 0.5})
	if r.Jaccard != nil {
		t.Errorf("Jaccard = %v, want nil", r.Jaccard)
	}
}

func TestJaccard_MisassignedWithLinks(t *testing.T) {
	g1 := &network.Network{Links: netLinks("a", "b")}
	g2 := &network.Network{Links: netLinks("x", "y")}
	align := network.Alignment{"a": "x"}
	perfect := network.Alignment{"a": "x", "b": "y"}
	in := input(t, g1, g2, align, perfect)

	mean, perNode, err := Jaccard(context.Background(), in)
	if err != nil {
		t.Fatalf("Jaccard() error = %v", err)
	}
	// b:: keeps its link to a::x under the test alignment.
	if mean != 1 {
		t.Errorf("mean = %v, want 1", mean)
	}
	if got := perNode[merge.Unaligned("b")]; got != 1 {
		t.Errorf("Jaccard[b::] = %v, want 1", got)
	}

	r, err := Score(context.Background(), in)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	checkMeasures(t, r, map[string]float64{NC: 0.5, NGS: 0, LGS: 0, JS: 1})
}

func TestJaccard_MisassignedIsolated(t *testing.T) {
	g1 := &network.Network{Links: netLinks("a", "b", "c", "d")}
	g2 := &network.Network{Links: netLinks("x", "y", "z", "w")}
	align := network.Alignment{"a": "x", "b": "y"}
	perfect := network.Alignment{"a": "x", "b": "y", "c": "z", "d": "w"}

	mean, perNode, err := Jaccard(context.Background(), input(t, g1, g2, align, perfect))
	if err != nil {
		t.Fatalf("Jaccard() error = %v", err)
	}
	want := map[merge.NodeID]float64{
		merge.Aligned("a", "x"): 1,
		merge.Aligned("b", "y"): 1,
		merge.Unaligned("c"):    0,
		merge.Unaligned("d"):    0,
	}
	for n, w := range want {
		if got := perNode[n]; got != w {
			t.Errorf("Jaccard[%v] = %v, want %v", n, got, w)
		}
	}
	if mean != 0.5 {
		t.Errorf("mean = %v, want 0.5", mean)
	}
}

func TestScore_Errors(t *testing.T) {
	g := &network.Network{Links: netLinks("a", "b")}
	id := network.Alignment{"a": "a", "b": "b"}
	in := input(t, g, g, id, nil)

	if _, err := Score(context.Background(), Input{}); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("Score(empty) error = %v, want %v", err, apperr.ErrCodeInvalidInput)
	}

	in.Perfect = id
	if _, err := Score(context.Background(), in); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("Score(no truth) error = %v, want %v", err, apperr.ErrCodeInvalidInput)
	}

	in.Perfect = nil
	if _, _, err := Jaccard(context.Background(), in); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("Jaccard() error = %v, want %v", err, apperr.ErrCodeInvalidInput)
	}
}

func TestMeasure_Label(t *testing.T) {
	if got := (Measure{Name: EC}).Label(); got != "Edge Coverage" {
		t.Errorf("Label() = %q, want %q", got, "Edge Coverage")
	}
	if got := (Measure{Name: "XX"}).Label(); got != "XX" {
		t.Errorf("Label() = %q, want %q", got, "XX")
	}
}

func TestSimilarity_AdjacentPair(t *testing.T) {
	a := onode{id: merge.Aligned("a", "a")}
	b := onode{id: merge.Aligned("b", "b")}
	o := &oracle{adj: map[onode]map[onode]struct{}{}}
	o.link(a, b)
	if got := o.similarity(a, b); got != 1 {
		t.Errorf("similarity() = %v, want 1", got)
	}
	if got := o.similarity(a, onode{id: merge.Unmatched("z")}); got != 0 {
		t.Errorf("similarity() = %v, want 0", got)
	}
}

// longPath returns a path of n nodes named p000, p001, ... aligned to itself.
func longPath(n int) (*network.Network, network.Alignment) {
	g := &network.Network{}
	id := network.Alignment{}
	for i := range n {
		name := fmt.Sprintf("p%03d", i)
		id[name] = name
		if i > 0 {
			g.Links = append(g.Links, network.Link{Src: fmt.Sprintf("p%03d", i-1), Trg: name})
		}
	}
	return g, id
}

func TestJaccard_Canceled(t *testing.T) {
	g, id := longPath(200)
	in := input(t, g, g, id, id)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := Jaccard(ctx, in); !errors.Is(err, monitor.ErrCanceled) {
		t.Errorf("Jaccard() error = %v, want %v", err, monitor.ErrCanceled)
	}
	if _, err := Score(ctx, in); !errors.Is(err, monitor.ErrCanceled) {
		t.Errorf("Score() error = %v, want %v", err, monitor.ErrCanceled)
	}
}
