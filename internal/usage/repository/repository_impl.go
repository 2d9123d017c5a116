package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/paperforge/paperforge/internal/subscription/domain"
	"github.com/paperforge/paperforge/internal/usage/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpdateUsage(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID, counts subscriptiondomain.UsageCounts, version int64, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE subscriptions
		 SET usage_counts = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		datatypes.NewJSONType(counts),
		now,
		subscriptionID,
		version,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
