package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paperforge/paperforge/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const subscriptionColumns = `s.id, s.user_id, s.plan_id, s.start_at, s.end_at, s.active,
	 s.usage_counts, s.version, s.payment_id, s.created_at, s.updated_at`

func (r *repo) ListEligible(ctx context.Context, db *gorm.DB, userID snowflake.ID, now time.Time) ([]domain.Subscription, error) {
	var items []domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions s
		 JOIN payments p ON p.id = s.payment_id
		 WHERE s.user_id = ? AND s.end_at >= ? AND p.status = ?
		 ORDER BY s.created_at DESC`,
		userID,
		now,
		domain.PaymentStatusCompleted,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Subscription, error) {
	var items []domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions s
		 WHERE s.user_id = ?
		 ORDER BY s.active DESC, s.created_at DESC`,
		userID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Subscription, error) {
	var s domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions s WHERE s.id = ?`,
		id,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) FindPayment(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var p domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, status, provider, reference, created_at, updated_at
		 FROM payments WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}
