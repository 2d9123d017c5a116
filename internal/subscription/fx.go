package subscription

import (
	"github.com/paperforge/paperforge/internal/subscription/repository"
	"github.com/paperforge/paperforge/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
