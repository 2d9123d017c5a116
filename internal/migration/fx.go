package migration

import (
	"github.com/paperforge/paperforge/internal/config"
	expirationdomain "github.com/paperforge/paperforge/internal/expiration/domain"
	featuredomain "github.com/paperforge/paperforge/internal/feature/domain"
	plandomain "github.com/paperforge/paperforge/internal/plan/domain"
	"github.com/paperforge/paperforge/internal/seed"
	subscriptiondomain "github.com/paperforge/paperforge/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Versioned SQL migrations target postgres; other dialects
			// (local sqlite, mysql) pick up the schema from the models.
			if err := conn.AutoMigrate(
				&plandomain.Plan{},
				&subscriptiondomain.Subscription{},
				&subscriptiondomain.Payment{},
				&featuredomain.Feature{},
				&expirationdomain.Notice{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultPlans(conn)
	}),
)
