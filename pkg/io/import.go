package io

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/merge"
	"github.com/matzehuels/netalign/pkg/network"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// fields splits a line on tabs when it holds one, else on whitespace.
func fields(line string) []string {
	if strings.Contains(line, "\t") {
		var out []string
		for _, f := range strings.Split(line, "\t") {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
		return out
	}
	return strings.Fields(line)
}

func isCoded(err error) bool {
	var e *apperr.Error
	return errors.As(err, &e)
}

func scanLines(r io.Reader, fn func(n int, tokens []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		tokens := fields(sc.Text())
		if len(tokens) == 0 {
			continue
		}
		if err := fn(n, tokens); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ReadSIF decodes a network in simple interaction format from r. The
// network takes name for error messages and reports.
func ReadSIF(r io.Reader, name string) (*network.Network, error) {
	g := &network.Network{Name: name}
	err := scanLines(r, func(n int, tokens []string) error {
		names := tokens[:1]
		if len(tokens) > 2 {
			names = append(names[:1:1], tokens[2:]...)
		}
		for _, t := range names {
			if err := apperr.ValidateNodeName(t); err != nil {
				return apperr.Wrap(apperr.ErrCodeInvalidNetwork, err, "%s line %d", name, n)
			}
		}
		switch len(tokens) {
		case 1:
			g.Loners = append(g.Loners, tokens[0])
		case 2:
			return apperr.New(apperr.ErrCodeInvalidNetwork,
				"%s line %d: link %q has no target", name, n, strings.Join(tokens, " "))
		default:
			for _, trg := range tokens[2:] {
				g.Links = append(g.Links, network.Link{Src: tokens[0], Trg: trg, Relation: tokens[1]})
			}
		}
		return nil
	})
	if err != nil {
		if isCoded(err) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.ErrCodeInvalidNetwork, err, "read %s", name)
	}
	return g, nil
}

// ReadAlignment decodes "g1 g2" pairs from r.
func ReadAlignment(r io.Reader, name string) (network.Alignment, error) {
	var pairs []network.Pair
	err := scanLines(r, func(n int, tokens []string) error {
		if len(tokens) != 2 {
			return apperr.New(apperr.ErrCodeInvalidAlignment,
				"%s line %d: want 2 names, got %d", name, n, len(tokens))
		}
		for _, t := range tokens {
			if err := apperr.ValidateNodeName(t); err != nil {
				return apperr.Wrap(apperr.ErrCodeInvalidAlignment, err, "%s line %d", name, n)
			}
		}
		pairs = append(pairs, network.Pair{Small: tokens[0], Large: tokens[1]})
		return nil
	})
	if err != nil {
		if isCoded(err) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.ErrCodeInvalidAlignment, err, "read %s", name)
	}
	a, err := network.NewAlignment(pairs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return a, nil
}

// ReadResult decodes a merged network written by [WriteResult].
func ReadResult(r io.Reader) (*merge.Result, error) {
	var res merge.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "decode merged network")
	}
	if res.Colors == nil {
		res.Colors = make(map[merge.NodeID]merge.Color)
	}
	return &res, nil
}

func open(path string) (*os.File, error) {
	if err := apperr.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// ImportSIF reads a SIF network file.
func ImportSIF(path string) (*network.Network, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSIF(f, path)
}

// ImportAlignment reads an alignment file.
func ImportAlignment(path string) (network.Alignment, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAlignment(f, path)
}

// ImportResult reads a merged network from a JSON file.
func ImportResult(path string) (*merge.Result, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadResult(f)
}
