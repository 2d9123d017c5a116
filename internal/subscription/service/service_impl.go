package service

import (
	"context"

	"github.com/paperforge/paperforge/internal/authcontext"
	"github.com/paperforge/paperforge/internal/clock"
	plandomain "github.com/paperforge/paperforge/internal/plan/domain"
	"github.com/paperforge/paperforge/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	PlanRepo plandomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	planRepo plandomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("subscription.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		planRepo: p.PlanRepo,
	}
}

// ResolveActive selects the one subscription governing the caller's
// entitlement. Among eligible records (unexpired, payment completed) a
// single active=true flag wins; zero or multiple flags fall back to the
// most recently created, which keeps the result total and deterministic.
func (s *Service) ResolveActive(ctx context.Context) (*domain.Entitlement, error) {
	userID, ok := authcontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	eligible, err := s.repo.ListEligible(ctx, s.db, userID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	selected := eligible[0] // newest first
	var flagged []domain.Subscription
	for _, sub := range eligible {
		if sub.Active {
			flagged = append(flagged, sub)
		}
	}
	if len(flagged) == 1 {
		selected = flagged[0]
	} else if len(flagged) > 1 {
		s.log.Warn("multiple subscriptions flagged active, falling back to newest eligible",
			zap.String("user_id", userID.String()),
			zap.Int("flagged", len(flagged)),
		)
	}

	pl, err := s.planRepo.FindByID(ctx, s.db, selected.PlanID)
	if err != nil {
		return nil, err
	}
	if pl == nil {
		s.log.Warn("active subscription references missing plan",
			zap.String("subscription_id", selected.ID.String()),
			zap.String("plan_id", selected.PlanID.String()),
		)
		return nil, plandomain.ErrNotFound
	}

	return &domain.Entitlement{Subscription: selected, Plan: *pl}, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.View, error) {
	userID, ok := authcontext.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	subs, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.View, 0, len(subs))
	for _, sub := range subs {
		view := domain.View{Subscription: sub}

		pl, err := s.planRepo.FindByID(ctx, s.db, sub.PlanID)
		if err != nil {
			return nil, err
		}
		view.Plan = pl

		payment, err := s.repo.FindPayment(ctx, s.db, sub.PaymentID)
		if err != nil {
			return nil, err
		}
		view.Payment = payment

		views = append(views, view)
	}
	return views, nil
}
