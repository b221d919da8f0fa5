// Package layout holds node orderings of a merged network and the
// breadth-first default ordering shared by the views.
//
// A [Layout] lists every node of a merged network exactly once. Annotations
// label contiguous row ranges: node groups in the group view, incorrect
// cycles and paths in the cycle view.
package layout

import (
	"context"
	"fmt"
	"slices"
	"strings"

	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/monitor"
)

// View selects how the merged network is ordered.
type View string

const (
	ViewGroup  View = "group"
	ViewOrphan View = "orphan"
	ViewCycle  View = "cycle"
)

// Views lists the supported views.
var Views = []View{ViewGroup, ViewOrphan, ViewCycle}

// ParseView parses a view name, case-insensitively.
func ParseView(s string) (View, error) {
	v := View(strings.ToLower(s))
	if slices.Contains(Views, v) {
		return v, nil
	}
	return "", apperr.New(apperr.ErrCodeInvalidView, "unknown view %q (want group, orphan or cycle)", s)
}

// Annotation labels the rows Start through End, inclusive.
type Annotation struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Start int    `json:"start" yaml:"start" toml:"start"`
	End   int    `json:"end" yaml:"end" toml:"end"`
	Color string `json:"color" yaml:"color" toml:"color"`
}

// Bounds delimits one chain in a cycle layout.
type Bounds struct {
	Start   int  `json:"start"`
	End     int  `json:"end"`
	Correct bool `json:"correct"`
	IsCycle bool `json:"cycle"`
}

// Len returns the number of nodes in the chain.
func (b Bounds) Len() int { return b.End - b.Start + 1 }

// Layout is an ordering of merged nodes.
type Layout struct {
	View        View           `json:"view"`
	Nodes       []merge.NodeID `json:"nodes"`
	Annotations []Annotation   `json:"annotations,omitempty"`
	Bounds      []Bounds       `json:"bounds,omitempty"`
}

// Rows returns the row of every node.
func (l *Layout) Rows() map[merge.NodeID]int {
	out := make(map[merge.NodeID]int, len(l.Nodes))
	for i, n := range l.Nodes {
		out[n] = i
	}
	return out
}

// Check verifies that the layout lists exactly the nodes of res, once each.
func (l *Layout) Check(res *merge.Result) error {
	if len(l.Nodes) != res.NodeCount() {
		return apperr.New(apperr.ErrCodeInternal,
			"%s layout has %d nodes, network has %d", l.View, len(l.Nodes), res.NodeCount())
	}
	seen := make(map[merge.NodeID]struct{}, len(l.Nodes))
	for _, n := range l.Nodes {
		if _, ok := res.Colors[n]; !ok {
			return apperr.New(apperr.ErrCodeInternal, "%s layout lists unknown node %s", l.View, n)
		}
		if _, dup := seen[n]; dup {
			return apperr.New(apperr.ErrCodeInternal, "%s layout lists node %s twice", l.View, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// LinkCounts returns the number of non-shadow links incident to each node.
// Loners have an entry of zero.
func LinkCounts(res *merge.Result) map[merge.NodeID]int {
	out := make(map[merge.NodeID]int, len(res.Colors))
	for n := range res.Colors {
		out[n] = 0
	}
	for _, l := range res.Links {
		if l.Shadow {
			continue
		}
		out[l.Src]++
		out[l.Trg]++
	}
	return out
}

// ByCount returns a comparator ordering nodes by count, highest first, then
// by name.
func ByCount(counts map[merge.NodeID]int) func(a, b merge.NodeID) int {
	return func(a, b merge.NodeID) int {
		if d := counts[b] - counts[a]; d != 0 {
			return d
		}
		return merge.Compare(a, b)
	}
}

// SortedKids returns the neighbors of n ordered by [ByCount].
func SortedKids(neighbors map[merge.NodeID]map[merge.NodeID]struct{}, cmp func(a, b merge.NodeID) int, n merge.NodeID) []merge.NodeID {
	kids := make([]merge.NodeID, 0, len(neighbors[n]))
	for k := range neighbors[n] {
		if k != n {
			kids = append(kids, k)
		}
	}
	slices.SortFunc(kids, cmp)
	return kids
}

// Default orders nodes breadth first. Each search starts at the highest
// ranked node not yet placed, and neighbors are visited highest link count
// first. Loners come last, sorted by name.
func Default(ctx context.Context, res *merge.Result, view View) (*Layout, error) {
	counts := LinkCounts(res)
	cmp := ByCount(counts)
	neighbors := res.Neighbors()

	ranked := make([]merge.NodeID, 0, len(counts))
	for n, c := range counts {
		if c > 0 {
			ranked = append(ranked, n)
		}
	}
	slices.SortFunc(ranked, cmp)

	out := &Layout{View: view, Nodes: make([]merge.NodeID, 0, len(res.Colors))}
	placed := make(map[merge.NodeID]bool, len(res.Colors))

	loop := monitor.FromContext(ctx).Loop(fmt.Sprintf("%s layout", view), len(ranked))
	for _, start := range ranked {
		if err := loop.Tick(); err != nil {
			return nil, err
		}
		if placed[start] {
			continue
		}
		placed[start] = true
		queue := []merge.NodeID{start}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			out.Nodes = append(out.Nodes, n)
			for _, k := range SortedKids(neighbors, cmp, n) {
				if !placed[k] {
					placed[k] = true
					queue = append(queue, k)
				}
			}
		}
	}
	loop.Done()

	for _, n := range res.Nodes() {
		if !placed[n] {
			placed[n] = true
			out.Nodes = append(out.Nodes, n)
		}
	}
	return out, nil
}
