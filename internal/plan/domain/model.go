// Package domain contains the plan catalog model. Plans are administered by
// the billing side of the platform; the entitlement engine only reads them.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// FeatureFlags maps feature catalog keys to an enabled bit.
type FeatureFlags map[string]bool

// ResourceLimits maps metered resource names to their caps. A cap of zero
// means the resource is unlimited on this plan.
type ResourceLimits map[string]int64

// Plan is a purchasable package: a feature-flag set plus metered caps.
type Plan struct {
	ID          snowflake.ID                         `gorm:"primaryKey"`
	Code        string                               `gorm:"type:text;not null;uniqueIndex"`
	Name        string                               `gorm:"type:text;not null"`
	Description *string                              `gorm:"type:text"`
	Features    datatypes.JSONType[FeatureFlags]     `gorm:"column:features"`
	Limits      datatypes.JSONType[ResourceLimits]   `gorm:"column:limits"`
	Active      bool                                 `gorm:"not null;default:true"`
	SortOrder   int                                  `gorm:"not null;default:0"`
	CreatedAt   time.Time                            `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time                            `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Plan) TableName() string { return "plans" }

// LimitFor returns the cap for a resource and whether the plan declares it.
func (p *Plan) LimitFor(resource string) (int64, bool) {
	limits := p.Limits.Data()
	if limits == nil {
		return 0, false
	}
	cap, ok := limits[resource]
	return cap, ok
}

// FlagSet returns the plan's feature flags, never nil.
func (p *Plan) FlagSet() FeatureFlags {
	flags := p.Features.Data()
	if flags == nil {
		return FeatureFlags{}
	}
	return flags
}

var (
	ErrNotFound  = errors.New("plan_not_found")
	ErrInvalidID = errors.New("invalid_plan_id")
)
