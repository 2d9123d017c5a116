package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// ListEligible returns the user's subscriptions that are unexpired at
	// "now" and whose payment completed, newest first.
	ListEligible(ctx context.Context, db *gorm.DB, userID snowflake.ID, now time.Time) ([]Subscription, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Subscription, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	FindPayment(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
}
