package network

import (
	"slices"
)

// Link is an undirected edge between two named nodes as read from a network
// file. Relation is the free-form interaction type and is carried through
// for display only.
type Link struct {
	Src      string `json:"src"`
	Trg      string `json:"trg"`
	Relation string `json:"rel,omitempty"`
}

// IsSelfLoop reports whether both endpoints are the same node.
func (l Link) IsSelfLoop() bool { return l.Src == l.Trg }

// Canonical returns the endpoints with the lexically smaller name first.
func (l Link) Canonical() (string, string) {
	if l.Trg < l.Src {
		return l.Trg, l.Src
	}
	return l.Src, l.Trg
}

// Network is one input graph.
type Network struct {
	Name   string   `json:"name,omitempty"`
	Links  []Link   `json:"links"`
	Loners []string `json:"loners,omitempty"`
}

// Nodes returns every node name mentioned by a link or listed as a loner,
// sorted and deduplicated.
func (n *Network) Nodes() []string {
	set := n.NodeSet()
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// NodeSet returns the node names as a set.
func (n *Network) NodeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(n.Links)+len(n.Loners))
	for _, l := range n.Links {
		set[l.Src] = struct{}{}
		set[l.Trg] = struct{}{}
	}
	for _, name := range n.Loners {
		set[name] = struct{}{}
	}
	return set
}

// NodeCount returns the number of distinct nodes.
func (n *Network) NodeCount() int { return len(n.NodeSet()) }

// LinkCount returns the number of distinct undirected links.
func (n *Network) LinkCount() int {
	seen := make(map[[2]string]struct{}, len(n.Links))
	for _, l := range n.Links {
		a, b := l.Canonical()
		seen[[2]string{a, b}] = struct{}{}
	}
	return len(seen)
}

// HasNode reports whether name appears in the network.
func (n *Network) HasNode(name string) bool {
	for _, l := range n.Links {
		if l.Src == name || l.Trg == name {
			return true
		}
	}
	return slices.Contains(n.Loners, name)
}
