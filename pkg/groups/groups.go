package groups

import (
	"context"
	"fmt"
	"math"
	"strings"

	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/monitor"
)

// Mode selects the correctness component of group keys.
type Mode int

const (
	// ModeNone groups by color and relations only.
	ModeNone Mode = iota
	// ModeNodeCorrectness adds the merge correctness label.
	ModeNodeCorrectness
	// ModeJaccard adds whether the node's Jaccard similarity reaches the threshold.
	ModeJaccard
)

// DefaultThreshold is the Jaccard similarity a node needs to count as correct.
const DefaultThreshold = 0.50

var modeNames = map[Mode]string{
	ModeNone:            "none",
	ModeNodeCorrectness: "node_correctness",
	ModeJaccard:         "jaccard_similarity",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name as printed by [Mode.String]. Matching is
// case-insensitive and accepts "-" for "_".
func ParseMode(s string) (Mode, error) {
	norm := strings.ReplaceAll(strings.ToLower(s), "-", "_")
	for m, name := range modeNames {
		if name == norm {
			return m, nil
		}
	}
	return 0, apperr.New(apperr.ErrCodeInvalidInput, "unknown group mode %q", s)
}

// Options configures [New].
type Options struct {
	Mode Mode
	// Table overrides the default table for the mode.
	Table *Table
	// Jaccard holds per-node similarity scores, required in ModeJaccard.
	Jaccard map[merge.NodeID]float64
	// Threshold is the Jaccard cutoff. Nil means DefaultThreshold.
	Threshold *float64
}

// Map assigns every merged node to a group of its table.
type Map struct {
	res       *merge.Result
	table     *Table
	keys      map[merge.NodeID]Key
	index     map[merge.NodeID]int
	neighbors map[merge.NodeID]map[merge.NodeID]struct{}

	nodeRatios []float64
	linkRatios [merge.NumRelations]float64
}

// New computes group keys for every node of res and looks them up in the
// table. A node whose key the table lacks is an [apperr.ErrCodeInvalidTable]
// error.
func New(ctx context.Context, res *merge.Result, opts Options) (*Map, error) {
	correctness := opts.Mode != ModeNone
	table := opts.Table
	if table == nil {
		table = DefaultTable(correctness)
	}
	if table.Correctness != correctness {
		return nil, apperr.New(apperr.ErrCodeInvalidTable,
			"group table %q does not fit mode %s", table.Name, opts.Mode)
	}
	if opts.Mode == ModeNodeCorrectness && res.Correct == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "mode %s needs a perfect alignment", opts.Mode)
	}
	if opts.Mode == ModeJaccard && opts.Jaccard == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "mode %s needs Jaccard scores", opts.Mode)
	}
	threshold := DefaultThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	if err := apperr.ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	m := &Map{
		res:       res,
		table:     table,
		keys:      make(map[merge.NodeID]Key, len(res.Colors)),
		index:     make(map[merge.NodeID]int, len(res.Colors)),
		neighbors: res.Neighbors(),
	}
	rels := res.IncidentRelations()
	counts := make([]int, table.Len())

	loop := monitor.FromContext(ctx).Loop("group nodes", len(res.Colors))
	for n, color := range res.Colors {
		if err := loop.Tick(); err != nil {
			return nil, err
		}
		k := Key{Color: color, Tags: TagSet(rels[n])}
		if correctness {
			k.Bit = m.bit(n, opts, threshold)
		}
		i, ok := table.Index(k)
		if !ok {
			return nil, apperr.New(apperr.ErrCodeInvalidTable,
				"group %s of node %s not in table %q", k, n, table.Name)
		}
		m.keys[n] = k
		m.index[n] = i
		counts[i]++
	}
	loop.Done()

	m.nodeRatios = make([]float64, table.Len())
	if total := len(res.Colors); total > 0 {
		for i, c := range counts {
			m.nodeRatios[i] = float64(c) / float64(total)
		}
	}
	if total := res.LinkCount(); total > 0 {
		for rel, c := range res.Counts {
			m.linkRatios[rel] = float64(c) / float64(total)
		}
	}
	return m, nil
}

func (m *Map) bit(n merge.NodeID, opts Options, threshold float64) Bit {
	if n.Color == merge.Red {
		return Incorrect
	}
	var ok bool
	switch opts.Mode {
	case ModeNodeCorrectness:
		ok = m.res.Correct[n]
	case ModeJaccard:
		ok = opts.Jaccard[n] >= threshold
	}
	if ok {
		return Correct
	}
	return Incorrect
}

// Table returns the table the map was built with.
func (m *Map) Table() *Table { return m.table }

// Key returns the group key of n.
func (m *Map) Key(n merge.NodeID) (Key, bool) {
	k, ok := m.keys[n]
	return k, ok
}

// Index returns the table position of n's group.
func (m *Map) Index(n merge.NodeID) (int, error) {
	i, ok := m.index[n]
	if !ok {
		return 0, apperr.New(apperr.ErrCodeNotFound, "node %s not in merged network", n)
	}
	return i, nil
}

// Color returns the annotation color of the group at index i.
func (m *Map) Color(i int) string { return m.table.Groups[i].Color }

// NodeRatios returns each group's share of all nodes, in table order.
// Groups without members are zero.
func (m *Map) NodeRatios() []float64 { return m.nodeRatios }

// LinkRatios returns each relation's share of the non-shadow links.
func (m *Map) LinkRatios() [merge.NumRelations]float64 { return m.linkRatios }

// NodeRatioMap returns the node ratios keyed by group text.
func (m *Map) NodeRatioMap() map[string]float64 {
	out := make(map[string]float64, len(m.nodeRatios))
	for i, g := range m.table.Groups {
		out[g.Key.String()] = m.nodeRatios[i]
	}
	return out
}

// LinkRatioMap returns the link ratios keyed by relation tag.
func (m *Map) LinkRatioMap() map[string]float64 {
	out := make(map[string]float64, merge.NumRelations)
	for _, rel := range merge.Relations {
		out[rel.Tag()] = m.linkRatios[rel]
	}
	return out
}

// Degree returns the number of distinct neighbors of n.
func (m *Map) Degree(n merge.NodeID) int { return len(m.neighbors[n]) }

// DecreasingDegree orders nodes by neighbor count, highest first, then by
// name.
func (m *Map) DecreasingDegree(a, b merge.NodeID) int {
	if d := m.Degree(b) - m.Degree(a); d != 0 {
		return d
	}
	return merge.Compare(a, b)
}

// AngularSimilarity returns 1 - 2·acos(cos)/π for the cosine of a and b,
// clamped to [0, 1]. ok is false when either vector has zero magnitude.
func AngularSimilarity(a, b []float64) (sim float64, ok bool) {
	if len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	cos = min(max(cos, 0), 1)
	return 1 - 2*math.Acos(cos)/math.Pi, true
}
