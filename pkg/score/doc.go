// Package score measures the quality of a network alignment.
//
// Topological measures need only the merged network:
//
//	EC  = covered / (covered + induced G1)
//	S3  = covered / (covered + induced G1 + induced G2)
//	ICS = covered / (covered + induced G2)
//
// With a perfect alignment, [Score] also reports node correctness (NC), the
// angular similarity of the node-group and link-group ratio vectors of the
// test and truth merges (NGS, LGS), and the mean Jaccard similarity of
// neighbor sets (JS).
//
// Jaccard similarity compares, for every G1 node, the neighbors of its truth
// identity with the neighbors of the node the test alignment put in its
// place. Both live in an oracle network: the truth merge without its
// unaligned G2 links, plus a stand-in node for every G1 node the test left
// unaligned although the truth aligns it. The stand-in carries that node's
// half-orphan links from the test merge, so the two neighbor sets are
// comparable in one namespace.
package score
