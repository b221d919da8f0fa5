package merge

import "github.com/matzehuels/netalign/pkg/network"

// purpleEnds counts the purple endpoints of a link.
func purpleEnds(src, trg NodeID) int {
	n := 0
	if src.Color == Purple {
		n++
	}
	if trg.Color == Purple {
		n++
	}
	return n
}

// ClassifyG1 returns the relation of a G1 link that has no G2 counterpart.
func ClassifyG1(src, trg NodeID) Relation {
	switch purpleEnds(src, trg) {
	case 2:
		return InducedG1
	case 1:
		return HalfOrphanG1
	}
	return FullOrphanG1
}

// ClassifyG2 returns the relation of a G2 link that has no G1 counterpart.
func ClassifyG2(src, trg NodeID) Relation {
	switch purpleEnds(src, trg) {
	case 2:
		return InducedG2
	case 1:
		return HalfUnalignedG2
	}
	return FullUnalignedG2
}

// Correctness labels a node against the perfect alignment. Purple nodes are
// correct when the perfect alignment maps the same G1 node to the same G2
// node; blue nodes are correct when the perfect alignment leaves them
// unaligned too. Red nodes are not labeled.
func Correctness(n NodeID, perfect network.Alignment) (correct, labeled bool) {
	switch n.Color {
	case Purple:
		t, ok := perfect[n.Small]
		return ok && t == n.Large, true
	case Blue:
		_, ok := perfect[n.Small]
		return !ok, true
	}
	return false, false
}

// Translator maps input node names into merged identities under one
// alignment.
type Translator struct {
	align   network.Alignment
	inverse network.Alignment
}

// NewTranslator builds a translator for a. The alignment must be injective.
func NewTranslator(a network.Alignment) Translator {
	return Translator{align: a, inverse: a.Inverse()}
}

// Small returns the merged node for a G1 name.
func (t Translator) Small(name string) NodeID {
	if large, ok := t.align[name]; ok {
		return Aligned(name, large)
	}
	return Unaligned(name)
}

// Large returns the merged node for a G2 name.
func (t Translator) Large(name string) NodeID {
	if small, ok := t.inverse[name]; ok {
		return Aligned(small, name)
	}
	return Unmatched(name)
}
