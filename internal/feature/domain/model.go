package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Feature is a global catalog entry usable by any plan. Keys are lowercase
// and unique across the catalog; they never change after creation.
type Feature struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Key       string       `gorm:"type:text;not null;uniqueIndex:ux_features_key"`
	Name      string       `gorm:"type:text;not null"`
	Category  *string      `gorm:"type:text"`
	Active    bool         `gorm:"not null;default:true"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Feature) TableName() string { return "features" }
