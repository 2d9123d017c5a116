package notification

import (
	"github.com/paperforge/paperforge/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("providers.notification",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, db *gorm.DB, log *zap.Logger) (Sender, error) {
	if cfg.SMTP.Host == "" {
		log.Warn("smtp not configured, notifications are dropped")
		return NoopSender{}, nil
	}
	return NewSMTP(cfg.SMTP, NewDirectory(db))
}
