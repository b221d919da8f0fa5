package io

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/netalign/pkg/network"
)

// Paths names the input files of one alignment run. Perfect is optional.
type Paths struct {
	G1        string `json:"g1" validate:"required"`
	G2        string `json:"g2" validate:"required"`
	Alignment string `json:"alignment" validate:"required"`
	Perfect   string `json:"perfect,omitempty"`
}

// Inputs holds the decoded files.
type Inputs struct {
	G1        *network.Network
	G2        *network.Network
	Alignment network.Alignment
	Perfect   network.Alignment
}

// LoadAll reads every file of p concurrently and returns the first failure.
func LoadAll(ctx context.Context, p Paths) (*Inputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load inputs: %w", err)
	}
	var in Inputs
	var g errgroup.Group

	g.Go(func() (err error) {
		in.G1, err = ImportSIF(p.G1)
		return err
	})
	g.Go(func() (err error) {
		in.G2, err = ImportSIF(p.G2)
		return err
	})
	g.Go(func() (err error) {
		in.Alignment, err = ImportAlignment(p.Alignment)
		return err
	})
	if p.Perfect != "" {
		g.Go(func() (err error) {
			in.Perfect, err = ImportAlignment(p.Perfect)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}
