// Package domain contains the expiration warning ledger and scan contracts.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Notice durably records that one subscription was warned for one
// expiration cycle. Its presence is what makes the scan idempotent; it must
// survive process restarts.
type Notice struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	SubscriptionID snowflake.ID `gorm:"not null;uniqueIndex:ux_notices_sub_cycle,priority:1"`
	ExpiresOn      time.Time    `gorm:"not null;uniqueIndex:ux_notices_sub_cycle,priority:2"`
	NotifiedAt     time.Time    `gorm:"not null"`
}

// TableName sets the database table name.
func (Notice) TableName() string { return "expiration_notices" }

// Candidate is a subscription inside the warning window that has not been
// warned for its current cycle.
type Candidate struct {
	SubscriptionID snowflake.ID `gorm:"column:subscription_id"`
	UserID         snowflake.ID `gorm:"column:user_id"`
	PlanID         snowflake.ID `gorm:"column:plan_id"`
	EndAt          time.Time    `gorm:"column:end_at"`
}

// Failure describes one candidate the scan could not notify.
type Failure struct {
	SubscriptionID string `json:"subscription_id"`
	UserID         string `json:"user_id"`
	Reason         string `json:"reason"`
}

// Report summarizes one scan invocation. Notification failures never abort
// the scan; they are collected here instead.
type Report struct {
	WindowDays    int       `json:"window_days"`
	RanAt         time.Time `json:"ran_at"`
	Scanned       int       `json:"scanned"`
	Notified      int       `json:"notified"`
	Failed        int       `json:"failed"`
	SkippedLocked bool      `json:"skipped_locked,omitempty"`
	Failures      []Failure `json:"failures,omitempty"`
}

//go:generate mockgen -source=models.go -destination=./mocks/mock_service.go -package=mocks
type Service interface {
	// Run executes one expiration scan cycle. Re-running it over the same
	// data sends zero additional notifications.
	Run(ctx context.Context) (Report, error)
}
