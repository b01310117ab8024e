//go:build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/localscan/intel-gateway/app/domain"
	"github.com/localscan/intel-gateway/app/infrastructure"
)

func CreateScanner() (*Scanner, error) {
	wire.Build(
		infrastructure.InfrastructureProvider,
		domain.ServiceProvider,
		wire.Struct(new(Scanner), "ScanService", "Resolvers"),
	)
	return nil, nil
}
