package feature

import (
	"github.com/paperforge/paperforge/internal/feature/repository"
	"github.com/paperforge/paperforge/internal/feature/service"
	"go.uber.org/fx"
)

var Module = fx.Module("feature.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
