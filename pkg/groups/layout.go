package groups

import (
	"context"
	"slices"

	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/layout"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/monitor"
)

// Layout orders the nodes group by group in table order. Within a group the
// search is breadth first from the highest-degree node left; neighbors from
// other groups are queued for their own group. Each non-empty group gets an
// annotation spanning its rows.
func (m *Map) Layout(ctx context.Context) (*layout.Layout, error) {
	n := m.table.Len()
	counts := layout.LinkCounts(m.res)
	byCount := layout.ByCount(counts)

	// Per group: nodes not yet started from, by decreasing degree.
	left := make([][]merge.NodeID, n)
	for node, i := range m.index {
		left[i] = append(left[i], node)
	}
	for i := range left {
		slices.SortFunc(left[i], m.DecreasingDegree)
	}

	toGo := make(map[merge.NodeID]bool, len(counts))
	for node, c := range counts {
		if c > 0 {
			toGo[node] = true
		}
	}

	taken := make(map[merge.NodeID]bool, len(m.index))
	visited := make(map[merge.NodeID]bool, len(m.index))
	queued := make([]map[merge.NodeID]bool, n)
	queues := make([][]merge.NodeID, n)
	placed := make([][]merge.NodeID, n)
	for i := range queued {
		queued[i] = make(map[merge.NodeID]bool)
	}

	loop := monitor.FromContext(ctx).Loop("group layout", len(m.index))
	for g := 0; g < n; g++ {
		for {
			if len(queues[g]) == 0 {
				head, ok := nextHead(&left[g], taken, visited)
				if !ok {
					break
				}
				taken[head] = true
				queues[g] = append(queues[g], head)
				queued[g][head] = true
			}
			for len(queues[g]) > 0 {
				node := queues[g][0]
				queues[g] = queues[g][1:]
				delete(queued[g], node)
				if visited[node] {
					continue
				}
				if err := loop.Tick(); err != nil {
					return nil, err
				}
				visited[node] = true
				placed[g] = append(placed[g], node)

				for _, kid := range layout.SortedKids(m.neighbors, byCount, node) {
					if !toGo[kid] {
						continue
					}
					kg := m.index[kid]
					if kg == g {
						if !taken[kid] {
							taken[kid] = true
							delete(toGo, kid)
							queues[g] = append(queues[g], kid)
							queued[g][kid] = true
						}
						continue
					}
					if !visited[kid] && !queued[kg][kid] {
						queues[kg] = append(queues[kg], kid)
						queued[kg][kid] = true
					}
				}
			}
		}
	}
	loop.Done()

	out := &layout.Layout{View: layout.ViewGroup, Nodes: make([]merge.NodeID, 0, len(m.index))}
	for g, nodes := range placed {
		if len(nodes) == 0 {
			continue
		}
		start := len(out.Nodes)
		out.Nodes = append(out.Nodes, nodes...)
		out.Annotations = append(out.Annotations, layout.Annotation{
			Name:  m.table.Groups[g].Key.String(),
			Start: start,
			End:   len(out.Nodes) - 1,
			Color: m.table.Groups[g].Color,
		})
	}
	if len(out.Nodes) != len(m.index) {
		return nil, apperr.New(apperr.ErrCodeInternal,
			"group layout placed %d of %d nodes", len(out.Nodes), len(m.index))
	}
	return out, nil
}

// nextHead pops the first node of left that has not been started from or
// placed yet.
func nextHead(left *[]merge.NodeID, taken, visited map[merge.NodeID]bool) (merge.NodeID, bool) {
	for len(*left) > 0 {
		n := (*left)[0]
		*left = (*left)[1:]
		if !taken[n] && !visited[n] {
			return n, true
		}
	}
	return merge.NodeID{}, false
}
