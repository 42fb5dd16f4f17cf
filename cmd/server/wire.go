//go:build wireinject

package main

import (
	"github.com/google/wire"

	"jan-server/services/jina-tools/internal/domain"
	"jan-server/services/jina-tools/internal/infrastructure"
	"jan-server/services/jina-tools/internal/interfaces"
	"jan-server/services/jina-tools/internal/interfaces/httpserver/routes"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		domain.DomainProvider,
		infrastructure.InfrastructureProvider,
		routes.RoutesProvider,
		interfaces.InterfacesProvider,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
