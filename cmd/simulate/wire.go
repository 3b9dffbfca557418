//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/blightfall/internal/config"
	"github.com/cory-johannsen/blightfall/internal/simulation"
)

func initializeRunner(ctx context.Context, cfg config.Config) (*simulation.Runner, func(), error) {
	wire.Build(providerSet)
	return nil, nil, nil
}
