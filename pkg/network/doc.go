// Package network holds the raw inputs of an alignment run: the two networks
// being compared and the node alignment between them.
//
// A [Network] is an undirected link list plus the set of lone nodes that have
// no links. G1 is the smaller network and G2 the larger one. An [Alignment]
// is a partial injective map from G1 node names to G2 node names; the
// optional perfect alignment has the same shape.
//
// Nothing in this package knows about merged nodes or relation tags. Those
// are derived by the merge package.
package network
