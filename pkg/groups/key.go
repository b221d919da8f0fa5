package groups

import (
	"fmt"
	"strings"

	"github.com/matzehuels/netalign/pkg/merge"
)

// Bit is the optional correctness component of a [Key].
type Bit uint8

const (
	// NoBit is used when the grouping ignores correctness.
	NoBit Bit = iota
	// Incorrect renders as "/0". Red nodes always carry it in correctness modes.
	Incorrect
	// Correct renders as "/1".
	Correct
)

// TagSet is a bitmask of relations indexed by [merge.Relation].
type TagSet uint8

// With returns the set with rel added.
func (s TagSet) With(rel merge.Relation) TagSet { return s | 1<<rel }

// Has reports whether rel is in the set.
func (s TagSet) Has(rel merge.Relation) bool { return s&(1<<rel) != 0 }

// String renders the tags in enum order joined by "/", or "0" when empty.
func (s TagSet) String() string {
	if s == 0 {
		return "0"
	}
	var parts []string
	for _, rel := range merge.Relations {
		if s.Has(rel) {
			parts = append(parts, rel.Tag())
		}
	}
	return strings.Join(parts, "/")
}

// Key identifies a node group. Keys are comparable and usable as map keys.
type Key struct {
	Color merge.Color
	Tags  TagSet
	Bit   Bit
}

// String renders the key as "(P:P/pBp)" or "(P:P/pBp/1)".
func (k Key) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(k.Color.Tag())
	b.WriteByte(':')
	b.WriteString(k.Tags.String())
	switch k.Bit {
	case Incorrect:
		b.WriteString("/0")
	case Correct:
		b.WriteString("/1")
	}
	b.WriteByte(')')
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKey parses the text form of a key. A trailing "/0" or "/1" is read
// as the correctness bit; tags must appear in enum order.
func ParseKey(s string) (Key, error) {
	body, ok := strings.CutPrefix(s, "(")
	if ok {
		body, ok = strings.CutSuffix(body, ")")
	}
	if !ok {
		return Key{}, fmt.Errorf("group key %q: missing parentheses", s)
	}
	colorTag, rest, ok := strings.Cut(body, ":")
	if !ok {
		return Key{}, fmt.Errorf("group key %q: missing color", s)
	}
	color, err := merge.ParseColorTag(colorTag)
	if err != nil {
		return Key{}, fmt.Errorf("group key %q: %w", s, err)
	}
	k := Key{Color: color}

	parts := strings.Split(rest, "/")
	if n := len(parts); n > 1 {
		switch parts[n-1] {
		case "0":
			k.Bit = Incorrect
			parts = parts[:n-1]
		case "1":
			k.Bit = Correct
			parts = parts[:n-1]
		}
	}
	if len(parts) == 1 && parts[0] == "0" {
		return k, nil
	}
	last := -1
	for _, p := range parts {
		rel, err := merge.ParseRelationTag(p)
		if err != nil {
			return Key{}, fmt.Errorf("group key %q: %w", s, err)
		}
		if int(rel) <= last {
			return Key{}, fmt.Errorf("group key %q: tags out of order", s)
		}
		last = int(rel)
		k.Tags = k.Tags.With(rel)
	}
	return k, nil
}
