package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/paperforge/paperforge/internal/subscription/domain"
	"gorm.io/gorm"
)

type Repository interface {
	// UpdateUsage writes the counter map conditionally on the record's
	// version being unchanged since it was read. It reports false when
	// another writer got there first.
	UpdateUsage(ctx context.Context, db *gorm.DB, subscriptionID snowflake.ID, counts subscriptiondomain.UsageCounts, version int64, now time.Time) (bool, error)
}
