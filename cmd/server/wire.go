//go:build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/localscan/intel-gateway/app/domain"
	"github.com/localscan/intel-gateway/app/infrastructure"
	"github.com/localscan/intel-gateway/app/interfaces/http"
	"github.com/localscan/intel-gateway/app/interfaces/http/routes"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		infrastructure.InfrastructureProvider,
		domain.ServiceProvider,
		routes.RouteProvider,
		http.NewHttpServer,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
