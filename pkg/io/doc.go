// Package io reads network alignment inputs and reads and writes merged
// networks.
//
// # Network files
//
// Networks use the simple interaction format (SIF). Every line is either a
// link or a lone node:
//
//	A pp B
//	A pp C D
//	E
//
// A line of three or more tokens links the first token to every token after
// the relation. A single token names a node without links. Lines holding a
// tab are split on tabs only, so relation names may contain spaces; other
// lines split on runs of whitespace. Blank lines are skipped.
//
// # Alignment files
//
// Alignments list one "g1 g2" pair per line. Repeating a G1 or a G2 name is
// an error: alignments are injective.
//
// # Merged networks
//
// [WriteResult] and [ReadResult] serialize a [merge.Result] as JSON so that
// merges can be cached and re-scored without the original files:
//
//	{
//	  "links": [{"src": "a::x", "trg": "b::y", "rel": "P"}, ...],
//	  "loners": ["c::"],
//	  "colors": {"a::x": "P", "b::y": "P", "c::": "B"},
//	  "counts": [1, 0, 0, 0, 0, 0, 0]
//	}
//
// # Loading
//
// [LoadAll] reads the two networks and one or two alignments concurrently.
//
//	in, err := io.LoadAll(ctx, io.Paths{G1: "yeast.sif", G2: "human.sif", Alignment: "run.align"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Errors carry codes from pkg/errors: missing files are
// ErrCodeFileNotFound, malformed lines ErrCodeInvalidNetwork or
// ErrCodeInvalidAlignment with the offending line number.
//
// [merge.Result]: github.com/matzehuels/netalign/pkg/merge.Result
package io
