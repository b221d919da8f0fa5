package merge

import "fmt"

// Relation classifies a merged link.
type Relation uint8

// Relations in their fixed enum order. Group keys and ratio vectors always
// use this order.
const (
	Covered Relation = iota
	InducedG1
	HalfOrphanG1
	FullOrphanG1
	InducedG2
	HalfUnalignedG2
	FullUnalignedG2
)

// NumRelations is the size of the relation taxonomy.
const NumRelations = 7

// Relations lists every relation in enum order.
var Relations = []Relation{
	Covered, InducedG1, HalfOrphanG1, FullOrphanG1,
	InducedG2, HalfUnalignedG2, FullUnalignedG2,
}

var relationTags = [NumRelations]string{"P", "pBp", "pBb", "bBb", "pRp", "pRr", "rRr"}

var relationNames = [NumRelations]string{
	"COVERED", "INDUCED_G1", "HALF_ORPHAN_G1", "FULL_ORPHAN_G1",
	"INDUCED_G2", "HALF_UNALIGNED_G2", "FULL_UNALIGNED_G2",
}

// Tag returns the short tag, e.g. "pBp".
func (r Relation) Tag() string {
	if r < NumRelations {
		return relationTags[r]
	}
	return "?"
}

// String returns the long name, e.g. "INDUCED_G1".
func (r Relation) String() string {
	if r < NumRelations {
		return relationNames[r]
	}
	return fmt.Sprintf("Relation(%d)", r)
}

// InG1 reports whether links of this relation exist in G1.
func (r Relation) InG1() bool { return r <= FullOrphanG1 }

// InG2 reports whether links of this relation exist in G2.
func (r Relation) InG2() bool { return r == Covered || r >= InducedG2 }

// ParseRelationTag parses a short relation tag.
func ParseRelationTag(tag string) (Relation, error) {
	for i, t := range relationTags {
		if t == tag {
			return Relation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown relation tag %q", tag)
}

// MarshalText encodes the relation as its tag.
func (r Relation) MarshalText() ([]byte, error) { return []byte(r.Tag()), nil }

// UnmarshalText decodes a relation tag.
func (r *Relation) UnmarshalText(text []byte) error {
	rel, err := ParseRelationTag(string(text))
	if err != nil {
		return err
	}
	*r = rel
	return nil
}

// Link is a merged link.
type Link struct {
	Src      NodeID   `json:"src"`
	Trg      NodeID   `json:"trg"`
	Relation Relation `json:"rel"`
	Shadow   bool     `json:"shadow,omitempty"`
}

// IsSelfLoop reports whether both endpoints are the same merged node.
func (l Link) IsSelfLoop() bool { return l.Src == l.Trg }

// Other returns the endpoint opposite n.
func (l Link) Other(n NodeID) NodeID {
	if l.Src == n {
		return l.Trg
	}
	return l.Src
}
