package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/paperforge/paperforge/internal/authcontext"
	"github.com/paperforge/paperforge/internal/clock"
	plandomain "github.com/paperforge/paperforge/internal/plan/domain"
	planrepository "github.com/paperforge/paperforge/internal/plan/repository"
	"github.com/paperforge/paperforge/internal/subscription/domain"
	"github.com/paperforge/paperforge/internal/subscription/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&plandomain.Plan{},
		&domain.Subscription{},
		&domain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    fc,
		Repo:     repository.Provide(),
		PlanRepo: planrepository.Provide(),
	})

	return &fixture{db: db, node: node, clock: fc, svc: svc}
}

func (f *fixture) createPlan(t *testing.T, code string) plandomain.Plan {
	t.Helper()
	plan := plandomain.Plan{
		ID:       f.node.Generate(),
		Code:     code,
		Name:     code,
		Features: datatypes.NewJSONType(plandomain.FeatureFlags{"question_bank": true}),
		Limits:   datatypes.NewJSONType(plandomain.ResourceLimits{"question_sets": 10}),
		Active:   true,
	}
	require.NoError(t, f.db.Create(&plan).Error)
	return plan
}

func (f *fixture) createSubscription(t *testing.T, userID snowflake.ID, plan plandomain.Plan, active bool, endAt, createdAt time.Time, paymentStatus domain.PaymentStatus) domain.Subscription {
	t.Helper()

	payment := domain.Payment{
		ID:     f.node.Generate(),
		UserID: userID,
		Status: paymentStatus,
	}
	require.NoError(t, f.db.Create(&payment).Error)

	sub := domain.Subscription{
		ID:        f.node.Generate(),
		UserID:    userID,
		PlanID:    plan.ID,
		StartAt:   createdAt,
		EndAt:     endAt,
		Active:    active,
		PaymentID: payment.ID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, f.db.Create(&sub).Error)
	return sub
}

func TestResolveActiveRequiresAuth(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ResolveActive(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestResolveActiveNoneEligible(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate()
	ctx := authcontext.WithUserID(context.Background(), userID)

	ent, err := f.svc.ResolveActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, ent)
}

func TestResolveActiveExpiredExcluded(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate()
	plan := f.createPlan(t, "basic")
	now := f.clock.Now()

	f.createSubscription(t, userID, plan, true, now.Add(-24*time.Hour), now.Add(-30*24*time.Hour), domain.PaymentStatusCompleted)

	ctx := authcontext.WithUserID(context.Background(), userID)
	ent, err := f.svc.ResolveActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, ent)
}

func TestResolveActiveIncompletePaymentExcluded(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate()
	plan := f.createPlan(t, "basic")
	now := f.clock.Now()

	f.createSubscription(t, userID, plan, true, now.Add(30*24*time.Hour), now.Add(-24*time.Hour), domain.PaymentStatusPending)
	f.createSubscription(t, userID, plan, true, now.Add(30*24*time.Hour), now.Add(-24*time.Hour), domain.PaymentStatusFailed)

	ctx := authcontext.WithUserID(context.Background(), userID)
	ent, err := f.svc.ResolveActive(ctx)
	require.NoError(t, err)
	assert.Nil(t, ent)
}

func TestResolveActiveFlaggedWins(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate()
	basic := f.createPlan(t, "basic")
	pro := f.createPlan(t, "pro")
	now := f.clock.Now()

	// The newer record is not flagged; the older flagged one must win.
	flagged := f.createSubscription(t, userID, basic, true, now.Add(30*24*time.Hour), now.Add(-48*time.Hour), domain.PaymentStatusCompleted)
	f.createSubscription(t, userID, pro, false, now.Add(60*24*time.Hour), now.Add(-1*time.Hour), domain.PaymentStatusCompleted)

	ctx := authcontext.WithUserID(context.Background(), userID)
	ent, err := f.svc.ResolveActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, ent)
	assert.Equal(t, flagged.ID, ent.Subscription.ID)
	assert.Equal(t, basic.ID, ent.Plan.ID)
}

func TestResolveActiveZeroFlaggedFallsBackToNewest(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate()
	plan := f.createPlan(t, "basic")
	now := f.clock.Now()

	f.createSubscription(t, userID, plan, false, now.Add(30*24*time.Hour), now.Add(-72*time.Hour), domain.PaymentStatusCompleted)
	newest := f.createSubscription(t, userID, plan, false, now.Add(30*24*time.Hour), now.Add(-1*time.Hour), domain.PaymentStatusCompleted)

	ctx := authcontext.WithUserID(context.Background(), userID)
	ent, err := f.svc.ResolveActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, ent)
	assert.Equal(t, newest.ID, ent.Subscription.ID)
}

func TestResolveActiveMultipleFlaggedFallsBackToNewest(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate()
	plan := f.createPlan(t, "basic")
	now := f.clock.Now()

	f.createSubscription(t, userID, plan, true, now.Add(30*24*time.Hour), now.Add(-72*time.Hour), domain.PaymentStatusCompleted)
	newest := f.createSubscription(t, userID, plan, true, now.Add(30*24*time.Hour), now.Add(-1*time.Hour), domain.PaymentStatusCompleted)

	ctx := authcontext.WithUserID(context.Background(), userID)
	ent, err := f.svc.ResolveActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, ent)
	assert.Equal(t, newest.ID, ent.Subscription.ID)
}

func TestResolveActiveDeterministic(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate()
	plan := f.createPlan(t, "basic")
	now := f.clock.Now()

	f.createSubscription(t, userID, plan, false, now.Add(30*24*time.Hour), now.Add(-48*time.Hour), domain.PaymentStatusCompleted)
	f.createSubscription(t, userID, plan, true, now.Add(30*24*time.Hour), now.Add(-24*time.Hour), domain.PaymentStatusCompleted)

	ctx := authcontext.WithUserID(context.Background(), userID)

	first, err := f.svc.ResolveActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)

	for i := 0; i < 5; i++ {
		again, err := f.svc.ResolveActive(ctx)
		require.NoError(t, err)
		require.NotNil(t, again)
		assert.Equal(t, first.Subscription.ID, again.Subscription.ID)
	}
}

func TestListAllIncludesHistory(t *testing.T) {
	f := newFixture(t)
	userID := f.node.Generate()
	plan := f.createPlan(t, "basic")
	now := f.clock.Now()

	f.createSubscription(t, userID, plan, false, now.Add(-24*time.Hour), now.Add(-60*24*time.Hour), domain.PaymentStatusCompleted)
	current := f.createSubscription(t, userID, plan, true, now.Add(30*24*time.Hour), now.Add(-24*time.Hour), domain.PaymentStatusCompleted)

	ctx := authcontext.WithUserID(context.Background(), userID)
	views, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Active record sorts first.
	assert.Equal(t, current.ID, views[0].Subscription.ID)
	require.NotNil(t, views[0].Plan)
	assert.Equal(t, plan.Code, views[0].Plan.Code)
	require.NotNil(t, views[0].Payment)
	assert.Equal(t, domain.PaymentStatusCompleted, views[0].Payment.Status)
}
