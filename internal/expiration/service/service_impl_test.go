package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/paperforge/paperforge/internal/clock"
	"github.com/paperforge/paperforge/internal/config"
	"github.com/paperforge/paperforge/internal/expiration/domain"
	"github.com/paperforge/paperforge/internal/expiration/repository"
	plandomain "github.com/paperforge/paperforge/internal/plan/domain"
	planrepository "github.com/paperforge/paperforge/internal/plan/repository"
	"github.com/paperforge/paperforge/internal/providers/notification"
	subscriptiondomain "github.com/paperforge/paperforge/internal/subscription/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordingSender captures sends and can be told to fail for chosen users.
type recordingSender struct {
	mu      sync.Mutex
	sent    []snowflake.ID
	failFor map[snowflake.ID]error
}

func (s *recordingSender) Send(ctx context.Context, userID snowflake.ID, kind notification.Kind, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[userID]; ok {
		return err
	}
	s.sent = append(s.sent, userID)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	clock  *clock.FakeClock
	sender *recordingSender
	svc    domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&plandomain.Plan{},
		&subscriptiondomain.Subscription{},
		&subscriptiondomain.Payment{},
		&domain.Notice{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))
	sender := &recordingSender{failFor: map[snowflake.ID]error{}}

	holder := config.NewStaticScannerConfigHolder(config.ScannerConfig{
		WarningWindowDays: 3,
		BatchSize:         200,
		LockTTLSeconds:    120,
	})

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    fc,
		GenID:    node,
		Repo:     repository.Provide(),
		PlanRepo: planrepository.Provide(),
		Sender:   sender,
		Cfg:      holder,
	})

	return &fixture{db: db, node: node, clock: fc, sender: sender, svc: svc}
}

func (f *fixture) seedExpiring(t *testing.T, endIn time.Duration) (snowflake.ID, snowflake.ID) {
	t.Helper()

	userID := f.node.Generate()
	now := f.clock.Now()

	planID := f.node.Generate()
	plan := plandomain.Plan{
		ID:     planID,
		Code:   fmt.Sprintf("plan-%s", planID),
		Name:   "Basic",
		Active: true,
	}
	require.NoError(t, f.db.Create(&plan).Error)

	payment := subscriptiondomain.Payment{
		ID:     f.node.Generate(),
		UserID: userID,
		Status: subscriptiondomain.PaymentStatusCompleted,
	}
	require.NoError(t, f.db.Create(&payment).Error)

	sub := subscriptiondomain.Subscription{
		ID:        f.node.Generate(),
		UserID:    userID,
		PlanID:    plan.ID,
		StartAt:   now.Add(-30 * 24 * time.Hour),
		EndAt:     now.Add(endIn),
		Active:    true,
		PaymentID: payment.ID,
		CreatedAt: now.Add(-30 * 24 * time.Hour),
		UpdatedAt: now.Add(-30 * 24 * time.Hour),
	}
	require.NoError(t, f.db.Create(&sub).Error)
	return sub.ID, userID
}

func TestRunWarnsInsideWindow(t *testing.T) {
	f := newFixture(t)

	f.seedExpiring(t, 48*time.Hour)    // inside the 3 day window
	f.seedExpiring(t, 10*24*time.Hour) // outside
	f.seedExpiring(t, -24*time.Hour)   // already expired

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Notified)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 1, f.sender.count())
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture(t)

	f.seedExpiring(t, 48*time.Hour)
	f.seedExpiring(t, 24*time.Hour)

	first, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Notified)

	second, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Scanned)
	assert.Equal(t, 0, second.Notified)
	assert.Equal(t, 2, f.sender.count())
}

func TestRunNewCycleWarnsAgain(t *testing.T) {
	f := newFixture(t)

	subID, _ := f.seedExpiring(t, 48*time.Hour)

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Notified)

	// Renewal moves end_at; the next window entry is a new cycle.
	newEnd := f.clock.Now().Add(32 * 24 * time.Hour)
	require.NoError(t, f.db.Exec(
		`UPDATE subscriptions SET end_at = ? WHERE id = ?`, newEnd, subID,
	).Error)

	f.clock.Advance(30 * 24 * time.Hour)

	report, err = f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Notified)
	assert.Equal(t, 2, f.sender.count())
}

func TestRunFailureDoesNotMark(t *testing.T) {
	f := newFixture(t)

	_, failingUser := f.seedExpiring(t, 24*time.Hour)
	f.seedExpiring(t, 48*time.Hour)
	f.sender.failFor[failingUser] = errors.New("smtp unreachable")

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Notified)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, failingUser.String(), report.Failures[0].UserID)

	// The failed candidate stays unmarked and is retried next run.
	delete(f.sender.failFor, failingUser)

	report, err = f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Notified)
	assert.Equal(t, 0, report.Failed)
}

func TestRunSkipsInactiveAndUnpaid(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()

	planID := f.node.Generate()
	plan := plandomain.Plan{ID: planID, Code: fmt.Sprintf("plan-%s", planID), Name: "Basic", Active: true}
	require.NoError(t, f.db.Create(&plan).Error)

	pending := subscriptiondomain.Payment{ID: f.node.Generate(), UserID: f.node.Generate(), Status: subscriptiondomain.PaymentStatusPending}
	require.NoError(t, f.db.Create(&pending).Error)
	require.NoError(t, f.db.Create(&subscriptiondomain.Subscription{
		ID:        f.node.Generate(),
		UserID:    pending.UserID,
		PlanID:    plan.ID,
		StartAt:   now.Add(-30 * 24 * time.Hour),
		EndAt:     now.Add(24 * time.Hour),
		Active:    true,
		PaymentID: pending.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)

	completed := subscriptiondomain.Payment{ID: f.node.Generate(), UserID: f.node.Generate(), Status: subscriptiondomain.PaymentStatusCompleted}
	require.NoError(t, f.db.Create(&completed).Error)
	require.NoError(t, f.db.Create(&subscriptiondomain.Subscription{
		ID:        f.node.Generate(),
		UserID:    completed.UserID,
		PlanID:    plan.ID,
		StartAt:   now.Add(-30 * 24 * time.Hour),
		EndAt:     now.Add(24 * time.Hour),
		Active:    false,
		PaymentID: completed.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Scanned)
	assert.Equal(t, 0, f.sender.count())
}
