package repository

import (
	"context"
	"time"

	"github.com/paperforge/paperforge/internal/expiration/domain"
	subscriptiondomain "github.com/paperforge/paperforge/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListCandidates(ctx context.Context, db *gorm.DB, from, to time.Time, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		limit = 200
	}
	var rows []domain.Candidate
	err := db.WithContext(ctx).Raw(
		`SELECT s.id AS subscription_id, s.user_id, s.plan_id, s.end_at
		 FROM subscriptions s
		 JOIN payments p ON p.id = s.payment_id
		 WHERE s.active = ?
		   AND s.end_at >= ? AND s.end_at <= ?
		   AND p.status = ?
		   AND NOT EXISTS (
		     SELECT 1 FROM expiration_notices n
		     WHERE n.subscription_id = s.id AND n.expires_on = s.end_at
		   )
		 ORDER BY s.end_at ASC
		 LIMIT ?`,
		true,
		from,
		to,
		subscriptiondomain.PaymentStatusCompleted,
		limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) MarkWarned(ctx context.Context, db *gorm.DB, notice *domain.Notice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO expiration_notices (id, subscription_id, expires_on, notified_at)
		 VALUES (?, ?, ?, ?)`,
		notice.ID,
		notice.SubscriptionID,
		notice.ExpiresOn,
		notice.NotifiedAt,
	).Error
}
