package groups

import (
	"bytes"
	"embed"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	apperr "github.com/matzehuels/netalign/pkg/errors"
)

//go:embed tables/*.toml
var tableFS embed.FS

// Group is one ordered node group with its annotation color.
type Group struct {
	Key   Key
	Color string
}

// Table is an ordered list of node groups. The order defines the group
// index used by layouts and the component order of ratio vectors.
type Table struct {
	Name        string
	Correctness bool
	Groups      []Group

	index map[Key]int
}

type tableFile struct {
	Name        string `toml:"name"`
	Correctness bool   `toml:"correctness"`
	Group       []struct {
		Key   string `toml:"key"`
		Color string `toml:"color"`
	} `toml:"group"`
}

// ReadTable decodes a TOML group table. Every key must parse, appear once,
// and carry a correctness bit exactly when the table declares correctness.
func ReadTable(r io.Reader) (*Table, error) {
	var f tableFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidTable, err, "decode group table")
	}
	t := &Table{
		Name:        f.Name,
		Correctness: f.Correctness,
		Groups:      make([]Group, 0, len(f.Group)),
		index:       make(map[Key]int, len(f.Group)),
	}
	for i, g := range f.Group {
		k, err := ParseKey(g.Key)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidTable, err, "group %d", i)
		}
		if (k.Bit != NoBit) != t.Correctness {
			return nil, apperr.New(apperr.ErrCodeInvalidTable,
				"group %s: correctness bit does not match table %q", g.Key, t.Name)
		}
		if _, dup := t.index[k]; dup {
			return nil, apperr.New(apperr.ErrCodeInvalidTable, "duplicate group %s", g.Key)
		}
		t.index[k] = len(t.Groups)
		t.Groups = append(t.Groups, Group{Key: k, Color: g.Color})
	}
	if len(t.Groups) == 0 {
		return nil, apperr.New(apperr.ErrCodeInvalidTable, "group table %q is empty", t.Name)
	}
	return t, nil
}

// ParseTable decodes a TOML group table from memory.
func ParseTable(data []byte) (*Table, error) {
	return ReadTable(bytes.NewReader(data))
}

// DefaultTable returns the built-in table: 40 groups without correctness,
// 76 with.
func DefaultTable(correctness bool) *Table {
	name := "tables/default.toml"
	if correctness {
		name = "tables/correctness.toml"
	}
	data, err := tableFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("groups: embedded table %s: %v", name, err))
	}
	t, err := ParseTable(data)
	if err != nil {
		panic(fmt.Sprintf("groups: embedded table %s: %v", name, err))
	}
	return t
}

// Len returns the number of groups.
func (t *Table) Len() int { return len(t.Groups) }

// Index returns the position of k in the table.
func (t *Table) Index(k Key) (int, bool) {
	i, ok := t.index[k]
	return i, ok
}

// Keys returns the group keys in table order.
func (t *Table) Keys() []Key {
	out := make([]Key, len(t.Groups))
	for i, g := range t.Groups {
		out[i] = g.Key
	}
	return out
}
