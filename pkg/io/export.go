package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/network"
)

// WriteResult encodes a merged network as JSON. The output can be read back
// with [ReadResult].
func WriteResult(res *merge.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportResult writes a merged network to a JSON file at path.
func ExportResult(res *merge.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteResult(res, f)
}

// WriteSIF writes the merged network in simple interaction format. Each
// non-shadow link becomes "src tag trg"; loners follow on their own lines.
func WriteSIF(res *merge.Result, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, l := range res.Reduced() {
		fmt.Fprintf(bw, "%s\t%s\t%s\n", l.Src, l.Relation.Tag(), l.Trg)
	}
	for _, n := range res.Loners {
		fmt.Fprintf(bw, "%s\n", n)
	}
	return bw.Flush()
}

// WriteAlignment writes one "g1 g2" pair per line, sorted by G1 name.
func WriteAlignment(a network.Alignment, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, p := range a.Pairs() {
		fmt.Fprintf(bw, "%s %s\n", p.Small, p.Large)
	}
	return bw.Flush()
}
