package expiration

import (
	"github.com/paperforge/paperforge/internal/expiration/repository"
	"github.com/paperforge/paperforge/internal/expiration/service"
	"go.uber.org/fx"
)

var Module = fx.Module("expiration.scanner",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
