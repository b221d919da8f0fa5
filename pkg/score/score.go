package score

import (
	"context"

	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/groups"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/monitor"
	"github.com/matzehuels/netalign/pkg/network"
)

// Measure names in report order.
const (
	EC  = "EC"
	S3  = "S3"
	ICS = "ICS"
	NC  = "NC"
	NGS = "NGS"
	LGS = "LGS"
	JS  = "JS"
)

// Names lists the measures in report order.
var Names = []string{EC, S3, ICS, NC, NGS, LGS, JS}

var labels = map[string]string{
	EC:  "Edge Coverage",
	S3:  "Symmetric Substructure Score",
	ICS: "Induced Conserved Structure",
	NC:  "Node Correctness",
	NGS: "Node Group Similarity",
	LGS: "Link Group Similarity",
	JS:  "Jaccard Similarity",
}

// Measure is one named score.
type Measure struct {
	Name  string  `json:"name" yaml:"name" toml:"name"`
	Value float64 `json:"value" yaml:"value" toml:"value"`
}

// Label returns the long name of the measure.
func (m Measure) Label() string {
	if l, ok := labels[m.Name]; ok {
		return l
	}
	return m.Name
}

// Input is what [Score] needs. Truth and Perfect are optional but go
// together: without them only EC, S3 and ICS are reported.
type Input struct {
	G1        *network.Network
	Alignment network.Alignment
	Perfect   network.Alignment

	// Test is the merge under Alignment, Truth the merge under Perfect.
	Test  *merge.Result
	Truth *merge.Result

	// Table orders the node groups for NGS. Nil uses the default table.
	Table *groups.Table
}

// Report is the outcome of scoring.
type Report struct {
	Measures []Measure `json:"measures"`
	// Jaccard holds the per-node similarity keyed by test identity. Empty
	// without a perfect alignment.
	Jaccard map[merge.NodeID]float64 `json:"jaccard,omitempty"`
}

// Get returns the value of the named measure.
func (r *Report) Get(name string) (float64, bool) {
	for _, m := range r.Measures {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}

// Score computes every measure whose preconditions hold. Measures with a
// zero denominator or a zero-magnitude ratio vector are omitted.
func Score(ctx context.Context, in Input) (*Report, error) {
	if in.Test == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "no merged network to score")
	}
	hasTruth := in.Perfect != nil
	if hasTruth && in.Truth == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "perfect alignment given without its merged network")
	}

	r := &Report{}
	add := func(name string, v float64, ok bool) {
		if ok {
			r.Measures = append(r.Measures, Measure{Name: name, Value: v})
		}
	}

	c := in.Test.Counts[merge.Covered]
	i1 := in.Test.Counts[merge.InducedG1]
	i2 := in.Test.Counts[merge.InducedG2]
	add(EC, ratio(c, c+i1))
	add(S3, ratio(c, c+i1+i2))
	add(ICS, ratio(c, c+i2))

	if !hasTruth {
		return r, nil
	}

	correct := 0
	for _, ok := range in.Test.Correct {
		if ok {
			correct++
		}
	}
	add(NC, ratio(correct, len(in.Test.Correct)))

	ngs, lgs, err := groupSimilarity(ctx, in)
	if err != nil {
		return nil, err
	}
	add(NGS, ngs.v, ngs.ok)
	add(LGS, lgs.v, lgs.ok)

	mean, perNode, err := Jaccard(ctx, in)
	if err != nil {
		return nil, err
	}
	r.Jaccard = perNode
	add(JS, mean, len(perNode) > 0)
	return r, nil
}

func ratio(num, den int) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

type optional struct {
	v  float64
	ok bool
}

func groupSimilarity(ctx context.Context, in Input) (ngs, lgs optional, err error) {
	opts := groups.Options{Mode: groups.ModeNone, Table: in.Table}
	test, err := groups.New(ctx, in.Test, opts)
	if err != nil {
		return ngs, lgs, err
	}
	truth, err := groups.New(ctx, in.Truth, opts)
	if err != nil {
		return ngs, lgs, err
	}
	ngs.v, ngs.ok = groups.AngularSimilarity(test.NodeRatios(), truth.NodeRatios())
	tl, pl := test.LinkRatios(), truth.LinkRatios()
	lgs.v, lgs.ok = groups.AngularSimilarity(tl[:], pl[:])
	return ngs, lgs, nil
}

// Jaccard returns the mean Jaccard similarity over all G1 nodes and the
// per-node scores keyed by each node's identity in the test network.
func Jaccard(ctx context.Context, in Input) (float64, map[merge.NodeID]float64, error) {
	if in.Perfect == nil || in.Truth == nil {
		return 0, nil, apperr.New(apperr.ErrCodeInvalidInput, "jaccard similarity needs a perfect alignment")
	}
	o, err := buildOracle(ctx, in.Test, in.Truth, in.Perfect)
	if err != nil {
		return 0, nil, err
	}
	names := in.G1.Nodes()
	test := merge.NewTranslator(in.Alignment)
	perNode := make(map[merge.NodeID]float64, len(names))

	var total float64
	loop := monitor.FromContext(ctx).Loop("jaccard similarity", len(names))
	for _, name := range names {
		if err := loop.Tick(); err != nil {
			return 0, nil, err
		}
		self := onode{id: o.truth.Small(name)}
		js := o.similarity(self, o.match(name, in.Alignment, in.Perfect))
		perNode[test.Small(name)] = js
		total += js
	}
	loop.Done()

	if len(names) == 0 {
		return 0, perNode, nil
	}
	return total / float64(len(names)), perNode, nil
}
