package modules

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"churnguard/pkg/probe"
)

type ProbeServer struct {
	Name          string
	Version       string
	ListenAddress string

	// ReadyChecks gate /ready; any check returning false flips it to 503.
	ReadyChecks []func() bool
}

func (p ProbeServer) Run(ctx context.Context, g *errgroup.Group) {
	probeServer := probe.NewServer(
		p.ListenAddress,
		probe.Options{
			Name:    p.Name,
			Version: p.Version,
		},
		p.ReadyChecks...,
	)

	g.Go(func() error {
		if err := probeServer.Run(ctx); err != nil {
			return fmt.Errorf("probeServer.Run: %w", err)
		}

		return nil
	})
}
