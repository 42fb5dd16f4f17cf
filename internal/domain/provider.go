package domain

import (
	"github.com/google/wire"

	"jan-server/services/jina-tools/internal/domain/jina"
)

// DomainProvider provides all domain services
var DomainProvider = wire.NewSet(
	jina.NewJinaService,
)
