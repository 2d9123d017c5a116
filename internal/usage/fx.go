package usage

import (
	"github.com/paperforge/paperforge/internal/usage/repository"
	"github.com/paperforge/paperforge/internal/usage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usage.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
