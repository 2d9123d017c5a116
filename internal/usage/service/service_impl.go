package service

import (
	"context"
	"strings"
	"time"

	"github.com/paperforge/paperforge/internal/clock"
	obsmetrics "github.com/paperforge/paperforge/internal/observability/metrics"
	"github.com/paperforge/paperforge/internal/quota"
	subscriptiondomain "github.com/paperforge/paperforge/internal/subscription/domain"
	"github.com/paperforge/paperforge/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config bounds the optimistic retry loop.
type Config struct {
	MaxAttempts  int
	RetryBackoff time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  8,
		RetryBackoff: 2 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaults.MaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaults.RetryBackoff
	}
	return c
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    domain.Repository
	SubRepo subscriptiondomain.Repository
	SubSvc  subscriptiondomain.Service
	Metrics *obsmetrics.Metrics `optional:"true"`
	Config  Config              `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	cfg     Config
	repo    domain.Repository
	subRepo subscriptiondomain.Repository
	subSvc  subscriptiondomain.Service
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("usage.service"),
		clock:   p.Clock,
		cfg:     p.Config.withDefaults(),
		repo:    p.Repo,
		subRepo: p.SubRepo,
		subSvc:  p.SubSvc,
		metrics: p.Metrics,
	}
}

func (s *Service) Increment(ctx context.Context, resource string, delta int64) error {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return domain.ErrInvalidResource
	}
	if delta <= 0 {
		return domain.ErrInvalidResource
	}

	ent, err := s.subSvc.ResolveActive(ctx)
	if err != nil {
		return err
	}
	if ent == nil {
		// Usage is only tracked for paid tiers.
		return nil
	}

	if _, declared := ent.Plan.LimitFor(resource); !declared {
		// The plan does not meter this resource; never invent counter keys.
		s.log.Debug("skipping usage increment for undeclared resource",
			zap.String("resource", resource),
			zap.String("plan_id", ent.Plan.ID.String()),
		)
		return nil
	}

	return s.incrementCAS(ctx, ent.Subscription, resource, delta)
}

// incrementCAS applies delta with an optimistic compare-and-swap loop:
// re-read the record, apply the delta to the counter map, and write
// conditionally on the version being unchanged.
func (s *Service) incrementCAS(ctx context.Context, sub subscriptiondomain.Subscription, resource string, delta int64) error {
	current := &sub
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			reloaded, err := s.subRepo.FindByID(ctx, s.db, sub.ID)
			if err != nil {
				return err
			}
			if reloaded == nil {
				// Subscription vanished mid-flight; nothing left to track.
				return nil
			}
			current = reloaded

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.cfg.RetryBackoff):
			}
		}

		counts := current.Usage.Data()
		if counts == nil {
			counts = subscriptiondomain.UsageCounts{}
		} else {
			copied := make(subscriptiondomain.UsageCounts, len(counts))
			for k, v := range counts {
				copied[k] = v
			}
			counts = copied
		}
		counts[resource] += delta

		ok, err := s.repo.UpdateUsage(ctx, s.db, current.ID, counts, current.Version, s.clock.Now())
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		if s.metrics != nil {
			s.metrics.UsageConflicts.Inc()
		}
	}

	s.log.Warn("usage increment retries exhausted",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("resource", resource),
		zap.Int("attempts", s.cfg.MaxAttempts),
	)
	return domain.ErrContentionExceeded
}

func (s *Service) Get(ctx context.Context, resource string) (int64, error) {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return 0, domain.ErrInvalidResource
	}

	ent, err := s.subSvc.ResolveActive(ctx)
	if err != nil {
		return 0, err
	}
	if ent == nil {
		return 0, nil
	}
	return ent.Subscription.UsageFor(resource), nil
}

func (s *Service) Evaluate(ctx context.Context, resource string) (quota.Evaluation, error) {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return quota.Evaluation{}, domain.ErrInvalidResource
	}

	ent, err := s.subSvc.ResolveActive(ctx)
	if err != nil {
		return quota.Evaluation{}, err
	}
	if ent == nil {
		return quota.Evaluation{}, nil
	}

	limit, _ := ent.Plan.LimitFor(resource)
	return quota.Evaluate(ent.Subscription.UsageFor(resource), limit), nil
}

func (s *Service) Consume(ctx context.Context, resource string) (quota.Evaluation, error) {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return quota.Evaluation{}, domain.ErrInvalidResource
	}

	ent, err := s.subSvc.ResolveActive(ctx)
	if err != nil {
		return quota.Evaluation{}, err
	}
	if ent == nil {
		// Unentitled callers are not metered here; tier policy for them
		// belongs to the caller.
		return quota.Evaluation{}, nil
	}

	limit, declared := ent.Plan.LimitFor(resource)
	ev := quota.Evaluate(ent.Subscription.UsageFor(resource), limit)
	if ev.Exhausted() {
		return ev, domain.ErrLimitReached
	}

	if declared {
		// Best-effort accounting: a tracking failure never reverts the
		// action the usage represents.
		if err := s.incrementCAS(ctx, ent.Subscription, resource, 1); err != nil {
			s.log.Error("usage tracking failed, action proceeds",
				zap.String("resource", resource),
				zap.String("subscription_id", ent.Subscription.ID.String()),
				zap.Error(err),
			)
		} else {
			ev = quota.Evaluate(ent.Subscription.UsageFor(resource)+1, limit)
		}
	}

	return ev, nil
}
