package network

import (
	"errors"
	"slices"
	"testing"

	apperr "github.com/matzehuels/netalign/pkg/errors"
)

func path3() *Network {
	return &Network{
		Links: []Link{
			{Src: "a", Trg: "b", Relation: "pp"},
			{Src: "c", Trg: "b", Relation: "pp"},
			{Src: "b", Trg: "a", Relation: "pp"},
		},
		Loners: []string{"z"},
	}
}

func TestNetwork_Nodes(t *testing.T) {
	got := path3().Nodes()
	want := []string{"a", "b", "c", "z"}
	if !slices.Equal(got, want) {
		t.Errorf("Nodes() = %v, want %v", got, want)
	}
}

func TestNetwork_LinkCountCollapsesReversed(t *testing.T) {
	if got := path3().LinkCount(); got != 2 {
		t.Errorf("LinkCount() = %d, want 2", got)
	}
}

func TestNetwork_HasNode(t *testing.T) {
	n := path3()
	for _, name := range []string{"a", "c", "z"} {
		if !n.HasNode(name) {
			t.Errorf("HasNode(%q) = false, want true", name)
		}
	}
	if n.HasNode("q") {
		t.Error("HasNode(q) = true, want false")
	}
}

func TestLink_Canonical(t *testing.T) {
	a, b := Link{Src: "y", Trg: "x"}.Canonical()
	if a != "x" || b != "y" {
		t.Errorf("Canonical() = (%s, %s), want (x, y)", a, b)
	}
}

func TestNewAlignment_Duplicates(t *testing.T) {
	tests := []struct {
		name  string
		pairs []Pair
		want  error
	}{
		{"duplicate source", []Pair{{"a", "x"}, {"a", "y"}}, ErrDuplicateSource},
		{"duplicate target", []Pair{{"a", "x"}, {"b", "x"}}, ErrDuplicateTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAlignment(tt.pairs)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewAlignment() error = %v, want %v", err, tt.want)
			}
			if !apperr.Is(err, apperr.ErrCodeInvalidAlignment) {
				t.Errorf("code = %v, want %v", apperr.GetCode(err), apperr.ErrCodeInvalidAlignment)
			}
		})
	}
}

func TestAlignment_InverseAndPairs(t *testing.T) {
	a, err := NewAlignment([]Pair{{"b", "y"}, {"a", "x"}})
	if err != nil {
		t.Fatalf("NewAlignment() error = %v", err)
	}
	inv := a.Inverse()
	if inv["x"] != "a" || inv["y"] != "b" {
		t.Errorf("Inverse() = %v", inv)
	}
	pairs := a.Pairs()
	if len(pairs) != 2 || pairs[0].Small != "a" {
		t.Errorf("Pairs() = %v, want sorted by G1 name", pairs)
	}
}

func TestAlignment_Validate(t *testing.T) {
	g1 := &Network{Links: []Link{{Src: "a", Trg: "b"}}}
	g2 := &Network{Links: []Link{{Src: "x", Trg: "y"}}, Loners: []string{"w"}}

	tests := []struct {
		name  string
		align Alignment
		want  error
	}{
		{"valid", Alignment{"a": "x", "b": "w"}, nil},
		{"unknown source", Alignment{"q": "x"}, ErrUnknownSource},
		{"unknown target", Alignment{"a": "q"}, ErrUnknownTarget},
		{"not injective", Alignment{"a": "x", "b": "x"}, ErrDuplicateTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.align.Validate(g1, g2)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheckOrder(t *testing.T) {
	small := &Network{Loners: []string{"a"}}
	large := &Network{Loners: []string{"x", "y"}}
	if err := CheckOrder(small, large); err != nil {
		t.Errorf("CheckOrder(small, large) = %v, want nil", err)
	}
	if err := CheckOrder(large, small); !errors.Is(err, ErrNetworkOrder) {
		t.Errorf("CheckOrder(large, small) = %v, want %v", err, ErrNetworkOrder)
	}
}
