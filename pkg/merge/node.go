package merge

import (
	"fmt"
	"strings"
)

// Color is the node color of a merged node.
type Color uint8

const (
	// Purple marks an aligned node.
	Purple Color = iota
	// Blue marks a G1 node left unaligned.
	Blue
	// Red marks a G2 node no G1 node is aligned to.
	Red
)

// Colors lists the node colors in display order.
var Colors = []Color{Purple, Blue, Red}

var colorTags = [...]string{Purple: "P", Blue: "B", Red: "R"}
var colorNames = [...]string{Purple: "purple", Blue: "blue", Red: "red"}

// Tag returns the one-letter tag used in group keys.
func (c Color) Tag() string {
	if int(c) < len(colorTags) {
		return colorTags[c]
	}
	return "?"
}

// String returns the lower-case color name.
func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("Color(%d)", c)
}

// ParseColorTag parses a one-letter color tag.
func ParseColorTag(tag string) (Color, error) {
	for i, t := range colorTags {
		if t == tag {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color tag %q", tag)
}

// separator joins the G1 and G2 names in the text form of a NodeID. Colons
// and backslashes inside names are escaped with a backslash, so the text
// form is unambiguous.
const separator = "::"

var (
	nameEscaper   = strings.NewReplacer(`\`, `\\`, `:`, `\:`)
	nameUnescaper = strings.NewReplacer(`\\`, `\`, `\:`, `:`)
)

// NodeID identifies a merged node. The zero value is not a valid node.
type NodeID struct {
	Color Color
	Small string // G1 name, empty for red nodes
	Large string // G2 name, empty for blue nodes
}

// Aligned returns the purple node for the pair (small, large).
func Aligned(small, large string) NodeID {
	return NodeID{Color: Purple, Small: small, Large: large}
}

// Unaligned returns the blue node for a G1 name.
func Unaligned(small string) NodeID {
	return NodeID{Color: Blue, Small: small}
}

// Unmatched returns the red node for a G2 name.
func Unmatched(large string) NodeID {
	return NodeID{Color: Red, Large: large}
}

// HasSmall reports whether the node has a G1 side.
func (n NodeID) HasSmall() bool { return n.Color != Red }

// HasLarge reports whether the node has a G2 side.
func (n NodeID) HasLarge() bool { return n.Color != Blue }

// String renders the node as "small::large" with colons in names escaped,
// e.g. Aligned("a:", "b") is `a\:::b`.
func (n NodeID) String() string {
	return nameEscaper.Replace(n.Small) + separator + nameEscaper.Replace(n.Large)
}

// Compare orders nodes by G1 name, then G2 name, then color.
func Compare(a, b NodeID) int {
	if c := strings.Compare(a.Small, b.Small); c != 0 {
		return c
	}
	if c := strings.Compare(a.Large, b.Large); c != 0 {
		return c
	}
	return int(a.Color) - int(b.Color)
}

// MarshalText implements encoding.TextMarshaler so NodeIDs can be JSON map keys.
func (n NodeID) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *NodeID) UnmarshalText(text []byte) error {
	id, err := ParseNodeID(string(text))
	if err != nil {
		return err
	}
	*n = id
	return nil
}

// ParseNodeID parses the text form written by [NodeID.String].
func ParseNodeID(s string) (NodeID, error) {
	small, large, ok := splitNodeID(s)
	if !ok {
		return NodeID{}, fmt.Errorf("invalid node id %q", s)
	}
	switch {
	case small != "" && large != "":
		return Aligned(small, large), nil
	case small != "":
		return Unaligned(small), nil
	case large != "":
		return Unmatched(large), nil
	}
	return NodeID{}, fmt.Errorf("invalid node id %q", s)
}

// MarshalText encodes the color as its tag.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.Tag()), nil }

// UnmarshalText decodes a color tag.
func (c *Color) UnmarshalText(text []byte) error {
	col, err := ParseColorTag(string(text))
	if err != nil {
		return err
	}
	*c = col
	return nil
}

// splitNodeID splits s at its only unescaped separator and unescapes both
// halves.
func splitNodeID(s string) (small, large string, ok bool) {
	at := -1
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\':
			if i+1 == len(s) {
				return "", "", false
			}
			i++
		case s[i] == ':':
			if at >= 0 || i+1 == len(s) || s[i+1] != ':' {
				return "", "", false
			}
			at = i
			i++
		}
	}
	if at < 0 {
		return "", "", false
	}
	return nameUnescaper.Replace(s[:at]), nameUnescaper.Replace(s[at+len(separator):]), true
}
