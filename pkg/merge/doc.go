// Package merge combines two aligned networks into one annotated network.
//
// # Node identities
//
// Every merged node is a [NodeID], a small comparable value with one of three
// colors:
//
//   - Purple: an aligned pair, carrying both the G1 and the G2 name
//   - Blue: a G1 node the alignment leaves unaligned
//   - Red: a G2 node nothing is aligned to
//
// NodeID renders as "a::x", "a::" or "::x", with colons inside names
// escaped as `\:`. Nodes are ordered and compared on their stored names,
// never on the rendered text.
//
// # Relations
//
// Each merged link carries exactly one [Relation]:
//
//	COVERED            P    edge present in both networks
//	INDUCED_G1         pBp  G1-only edge between two purple nodes
//	HALF_ORPHAN_G1     pBb  G1-only edge between a purple and a blue node
//	FULL_ORPHAN_G1     bBb  G1-only edge between two blue nodes
//	INDUCED_G2         pRp  G2-only edge between two purple nodes
//	HALF_UNALIGNED_G2  pRr  G2-only edge between a purple and a red node
//	FULL_UNALIGNED_G2  rRr  G2-only edge between two red nodes
//
// G2 edges are classified against the sorted G1 edge list by binary search,
// so merging costs O(E log E). Every non-self-loop link also gets a shadow
// copy; shadows never change counts or scores.
//
// # Correctness
//
// When a perfect alignment is supplied, [Merge] also labels purple and blue
// nodes as correct or incorrect. Red nodes are never labeled.
package merge
