package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paperforge/paperforge/internal/clock"
	"github.com/paperforge/paperforge/internal/config"
	"github.com/paperforge/paperforge/internal/expiration/domain"
	obsmetrics "github.com/paperforge/paperforge/internal/observability/metrics"
	plandomain "github.com/paperforge/paperforge/internal/plan/domain"
	"github.com/paperforge/paperforge/internal/providers/notification"
	"github.com/paperforge/paperforge/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const lockKey = "expiration:scan:lock"

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	Repo     domain.Repository
	PlanRepo plandomain.Repository
	Sender   notification.Sender
	Cfg      *config.ScannerConfigHolder
	Locker   *ratelimit.Locker   `optional:"true"`
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     domain.Repository
	planRepo plandomain.Repository
	sender   notification.Sender
	cfg      *config.ScannerConfigHolder
	locker   *ratelimit.Locker
	metrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("expiration.scanner"),
		clock:    p.Clock,
		genID:    p.GenID,
		repo:     p.Repo,
		planRepo: p.PlanRepo,
		sender:   p.Sender,
		cfg:      p.Cfg,
		locker:   p.Locker,
		metrics:  p.Metrics,
	}
}

// Run warns every subscription entering the expiry window exactly once per
// cycle. Each candidate's notify-then-mark pair is its own unit of work, so
// a failure or timeout mid-scan loses only the unprocessed tail and the
// next run picks it up.
func (s *Service) Run(ctx context.Context) (domain.Report, error) {
	cfg := s.cfg.Get()
	now := s.clock.Now()
	report := domain.Report{
		WindowDays: cfg.WarningWindowDays,
		RanAt:      now,
	}

	if s.locker != nil {
		token, acquired, err := s.locker.TryLock(ctx, lockKey, time.Duration(cfg.LockTTLSeconds)*time.Second)
		if err != nil {
			return report, err
		}
		if !acquired {
			s.log.Info("scan already running elsewhere, skipping")
			report.SkippedLocked = true
			return report, nil
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
				s.log.Warn("scan lock release failed", zap.Error(err))
			}
		}()
	}

	if s.metrics != nil {
		s.metrics.ScanRuns.Inc()
	}

	to := now.Add(time.Duration(cfg.WarningWindowDays) * 24 * time.Hour)
	candidates, err := s.repo.ListCandidates(ctx, s.db, now, to, cfg.BatchSize)
	if err != nil {
		return report, err
	}
	report.Scanned = len(candidates)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			// The pairs already committed stay committed.
			return report, err
		}
		if err := s.warn(ctx, candidate, now); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, domain.Failure{
				SubscriptionID: candidate.SubscriptionID.String(),
				UserID:         candidate.UserID.String(),
				Reason:         err.Error(),
			})
			if s.metrics != nil {
				s.metrics.ScanFailures.Inc()
			}
			s.log.Warn("expiration warning failed",
				zap.String("subscription_id", candidate.SubscriptionID.String()),
				zap.Error(err),
			)
			continue
		}
		report.Notified++
		if s.metrics != nil {
			s.metrics.ScanNotifications.Inc()
		}
	}

	s.log.Info("expiration scan finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("notified", report.Notified),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *Service) warn(ctx context.Context, candidate domain.Candidate, now time.Time) error {
	planName := ""
	if pl, err := s.planRepo.FindByID(ctx, s.db, candidate.PlanID); err == nil && pl != nil {
		planName = pl.Name
	}

	daysLeft := int(candidate.EndAt.Sub(now).Hours() / 24)
	if daysLeft < 0 {
		daysLeft = 0
	}

	err := s.sender.Send(ctx, candidate.UserID, notification.KindExpirationWarning, map[string]any{
		"plan_name": planName,
		"end_date":  candidate.EndAt.Format("2006-01-02"),
		"days_left": daysLeft,
	})
	if err != nil {
		return err
	}

	// Mark only after a successful send; a crash between the two re-sends
	// at most once on the next run, never silently skips a user.
	return s.repo.MarkWarned(ctx, s.db, &domain.Notice{
		ID:             s.genID.Generate(),
		SubscriptionID: candidate.SubscriptionID,
		ExpiresOn:      candidate.EndAt,
		NotifiedAt:     now,
	})
}
