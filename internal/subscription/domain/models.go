// Package domain contains persistence models for subscriptions and payments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/paperforge/paperforge/internal/plan/domain"
	"gorm.io/datatypes"
)

// PaymentStatus represents the state of a subscription's payment. Only the
// status is consulted here; processing belongs to the billing side.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// UsageCounts maps metered resource names to consumed units.
type UsageCounts map[string]int64

// Subscription records one purchase of a plan by a user. A user accumulates
// subscription records over renewals and upgrades; at most one of them
// governs the user's entitlement at any instant.
type Subscription struct {
	ID        snowflake.ID                    `gorm:"primaryKey"`
	UserID    snowflake.ID                    `gorm:"not null;index"`
	PlanID    snowflake.ID                    `gorm:"not null;index"`
	StartAt   time.Time                       `gorm:"not null"`
	EndAt     time.Time                       `gorm:"not null;index"`
	Active    bool                            `gorm:"not null;default:false"`
	Usage     datatypes.JSONType[UsageCounts] `gorm:"column:usage_counts"`
	Version   int64                           `gorm:"not null;default:0"`
	PaymentID snowflake.ID                    `gorm:"not null;index"`
	CreatedAt time.Time                       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time                       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// UsageFor returns the consumed units for a resource, zero when untracked.
func (s *Subscription) UsageFor(resource string) int64 {
	counts := s.Usage.Data()
	if counts == nil {
		return 0
	}
	return counts[resource]
}

// Payment holds the payment reference attached to a subscription.
type Payment struct {
	ID        snowflake.ID  `gorm:"primaryKey"`
	UserID    snowflake.ID  `gorm:"not null;index"`
	Status    PaymentStatus `gorm:"type:text;not null"`
	Provider  string        `gorm:"type:text"`
	Reference string        `gorm:"type:text"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// Entitlement is the single resolved (subscription, plan) pair governing a
// user's access.
type Entitlement struct {
	Subscription Subscription
	Plan         plandomain.Plan
}

// View is one row of the subscription history listing.
type View struct {
	Subscription Subscription
	Plan         *plandomain.Plan
	Payment      *Payment
}
