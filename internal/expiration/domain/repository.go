package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// ListCandidates returns active, paid subscriptions ending inside
	// [from, to] with no notice recorded for their current cycle.
	ListCandidates(ctx context.Context, db *gorm.DB, from, to time.Time, limit int) ([]Candidate, error)

	// MarkWarned durably records the notice for one subscription/cycle.
	MarkWarned(ctx context.Context, db *gorm.DB, notice *Notice) error
}
