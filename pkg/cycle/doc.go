// Package cycle orders a merged network by alignment cycles and paths.
//
// Following an alignment from a G1 node to its G2 partner, and from that G2
// node back to the G1 node of the same identity, links merged nodes into
// chains. A chain that returns to its start is a cycle; one that runs out is
// a path. With the perfect alignment as the back map, a purple node mapped to
// its true partner is a correct one-node cycle and every longer cycle or path
// marks alignment mistakes:
//
//	blue alone                      correct path
//	red alone                       correct path
//	purple alone, back to itself    correct cycle
//	purple alone, no way back       incorrect path
//	red then blue                   incorrect path
//	red then purple run             incorrect path
//	purple run then blue            incorrect path
//	red, purple run, blue           incorrect path
//	purple run back to its start    incorrect cycle
//
// The back map is the identity when every aligned G1 name also names a G2
// node; otherwise it is the inverse of the perfect alignment. When neither
// works [Extract] fails with errors.ErrCodeCriterionNotMet and the caller
// can fall back to another view.
//
// [Extract] emits whole chains breadth first from the best connected nodes,
// rotating cycles to start at the node that reached them, and annotates the
// incorrect ones as "cycle N" or "path N".
package cycle
