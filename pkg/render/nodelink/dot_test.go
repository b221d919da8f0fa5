package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/netalign/pkg/layout"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/network"
)

func mergeSmall(t *testing.T) *merge.Result {
	t.Helper()
	res, err := merge.Merge(context.Background(), merge.Input{
		G1:        &network.Network{Links: []network.Link{{Src: "a", Trg: "b"}, {Src: "a", Trg: "c"}}},
		G2:        &network.Network{Links: []network.Link{{Src: "x", Trg: "y"}}, Loners: []string{"z"}},
		Alignment: network.Alignment{"a": "x", "b": "y"},
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	return res
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(mergeSmall(t), nil, Options{})

	if !strings.HasPrefix(dot, "graph G {") {
		t.Error("ToDOT() output missing graph declaration")
	}
	for _, want := range []string{
		`"a::x" [fillcolor="#9b59b6"`,
		`"c::" [fillcolor="#3498db"`,
		`"::z" [fillcolor="#e74c3c"`,
		`"a::x" -- "b::y" [color="#2c3e50", tooltip="P"]`,
		`tooltip="pBb"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %s", want)
		}
	}
	if strings.Count(dot, " -- ") != 2 {
		t.Errorf("ToDOT() drew %d links, want 2 (no shadows)", strings.Count(dot, " -- "))
	}
}

func TestToDOT_Clusters(t *testing.T) {
	res := mergeSmall(t)
	lay := &layout.Layout{
		Nodes:       []merge.NodeID{merge.Aligned("a", "x"), merge.Aligned("b", "y"), merge.Unaligned("c"), merge.Unmatched("z")},
		Annotations: []layout.Annotation{{Name: "cycle 1", Start: 0, End: 1, Color: "Orange"}},
	}

	dot := ToDOT(res, lay, Options{Clusters: true})
	if !strings.Contains(dot, `subgraph "cluster_0"`) || !strings.Contains(dot, `color="orange"`) {
		t.Errorf("ToDOT() output missing cluster:\n%s", dot)
	}
	if strings.Count(dot, `"a::x" [`) != 1 {
		t.Error("ToDOT() declared a clustered node twice")
	}

	if dot := ToDOT(res, lay, Options{}); strings.Contains(dot, "subgraph") {
		t.Error("ToDOT() without Clusters wrote a subgraph")
	}
}

func TestToDOT_Labels(t *testing.T) {
	res := mergeSmall(t)
	if dot := ToDOT(res, nil, Options{}); !strings.Contains(dot, `label=""`) {
		t.Error("ToDOT() without Labels should blank labels")
	}
	if dot := ToDOT(res, nil, Options{Labels: true}); strings.Contains(dot, `label=""`) {
		t.Error("ToDOT() with Labels blanked labels")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() changed svg without viewBox: %s", got)
	}
}
