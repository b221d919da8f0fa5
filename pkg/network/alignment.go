package network

import (
	"errors"
	"fmt"
	"slices"

	apperr "github.com/matzehuels/netalign/pkg/errors"
)

var (
	// ErrDuplicateSource is returned when a G1 node is aligned more than once.
	ErrDuplicateSource = errors.New("duplicate alignment source")

	// ErrDuplicateTarget is returned when two G1 nodes are aligned to the same
	// G2 node. Alignments must be injective.
	ErrDuplicateTarget = errors.New("duplicate alignment target")

	// ErrUnknownSource is returned when an alignment source is not a G1 node.
	ErrUnknownSource = errors.New("alignment source not in G1")

	// ErrUnknownTarget is returned when an alignment target is not a G2 node.
	ErrUnknownTarget = errors.New("alignment target not in G2")

	// ErrNetworkOrder is returned when G1 has more nodes than G2.
	ErrNetworkOrder = errors.New("G1 must not have more nodes than G2")
)

// Pair is one alignment entry.
type Pair struct {
	Small string `json:"g1"`
	Large string `json:"g2"`
}

// Alignment maps G1 node names to G2 node names.
type Alignment map[string]string

// NewAlignment builds an alignment from pairs, rejecting repeated sources or
// targets. The returned error carries [apperr.ErrCodeInvalidAlignment].
func NewAlignment(pairs []Pair) (Alignment, error) {
	a := make(Alignment, len(pairs))
	targets := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if _, ok := a[p.Small]; ok {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidAlignment,
				fmt.Errorf("%w: %q", ErrDuplicateSource, p.Small), "invalid alignment")
		}
		if prev, ok := targets[p.Large]; ok {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidAlignment,
				fmt.Errorf("%w: %q (from %q and %q)", ErrDuplicateTarget, p.Large, prev, p.Small), "invalid alignment")
		}
		a[p.Small] = p.Large
		targets[p.Large] = p.Small
	}
	return a, nil
}

// Pairs returns the entries sorted by G1 name.
func (a Alignment) Pairs() []Pair {
	out := make([]Pair, 0, len(a))
	for k, v := range a {
		out = append(out, Pair{Small: k, Large: v})
	}
	slices.SortFunc(out, func(x, y Pair) int {
		switch {
		case x.Small < y.Small:
			return -1
		case x.Small > y.Small:
			return 1
		}
		return 0
	})
	return out
}

// Inverse returns the G2 → G1 map. The alignment must be injective; call
// [Alignment.Validate] first.
func (a Alignment) Inverse() Alignment {
	inv := make(Alignment, len(a))
	for k, v := range a {
		inv[v] = k
	}
	return inv
}

// Validate checks injectivity and that every entry names nodes of the
// respective networks.
func (a Alignment) Validate(g1, g2 *Network) error {
	small := g1.NodeSet()
	large := g2.NodeSet()
	targets := make(map[string]string, len(a))
	for _, p := range a.Pairs() {
		if prev, ok := targets[p.Large]; ok {
			return apperr.Wrap(apperr.ErrCodeInvalidAlignment,
				fmt.Errorf("%w: %q (from %q and %q)", ErrDuplicateTarget, p.Large, prev, p.Small), "invalid alignment")
		}
		targets[p.Large] = p.Small
		if _, ok := small[p.Small]; !ok {
			return apperr.Wrap(apperr.ErrCodeInvalidAlignment,
				fmt.Errorf("%w: %q", ErrUnknownSource, p.Small), "invalid alignment")
		}
		if _, ok := large[p.Large]; !ok {
			return apperr.Wrap(apperr.ErrCodeInvalidAlignment,
				fmt.Errorf("%w: %q", ErrUnknownTarget, p.Large), "invalid alignment")
		}
	}
	return nil
}

// CheckOrder verifies that g1 is not larger than g2.
func CheckOrder(g1, g2 *Network) error {
	if g1.NodeCount() > g2.NodeCount() {
		return apperr.Wrap(apperr.ErrCodeInvalidNetwork,
			fmt.Errorf("%w (%d > %d)", ErrNetworkOrder, g1.NodeCount(), g2.NodeCount()), "invalid networks")
	}
	return nil
}
