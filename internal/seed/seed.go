// Package seed bootstraps the plan and feature catalogs so a fresh install
// is usable without manual setup.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	featuredomain "github.com/paperforge/paperforge/internal/feature/domain"
	plandomain "github.com/paperforge/paperforge/internal/plan/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ResourceQuestionSets = "question_sets"
	ResourceExports      = "exports"
)

type planSeed struct {
	Code      string
	Name      string
	Features  plandomain.FeatureFlags
	Limits    plandomain.ResourceLimits
	SortOrder int
}

var defaultPlans = []planSeed{
	{
		Code: "free",
		Name: "Free",
		Features: plandomain.FeatureFlags{
			"question_bank": true,
		},
		Limits: plandomain.ResourceLimits{
			ResourceQuestionSets: 3,
			ResourceExports:      5,
		},
		SortOrder: 0,
	},
	{
		Code: "basic",
		Name: "Basic",
		Features: plandomain.FeatureFlags{
			"question_bank": true,
			"pdf_export":    true,
		},
		Limits: plandomain.ResourceLimits{
			ResourceQuestionSets: 25,
			ResourceExports:      50,
		},
		SortOrder: 1,
	},
	{
		Code: "pro",
		Name: "Pro",
		Features: plandomain.FeatureFlags{
			"question_bank":   true,
			"pdf_export":      true,
			"custom_branding": true,
			"answer_keys":     true,
		},
		Limits: plandomain.ResourceLimits{
			ResourceQuestionSets: 0,
			ResourceExports:      0,
		},
		SortOrder: 2,
	},
}

type featureSeed struct {
	Key      string
	Name     string
	Category string
}

var defaultFeatures = []featureSeed{
	{Key: "question_bank", Name: "Question Bank", Category: "authoring"},
	{Key: "pdf_export", Name: "PDF Export", Category: "export"},
	{Key: "custom_branding", Name: "Custom Branding", Category: "export"},
	{Key: "answer_keys", Name: "Answer Keys", Category: "authoring"},
}

// EnsureDefaultPlans seeds the default plan tiers and the feature catalog
// entries they reference. Existing rows are left untouched.
func EnsureDefaultPlans(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePlansTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureFeaturesTx(ctx, tx, node)
	})
}

func ensurePlansTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, p := range defaultPlans {
		var existing plandomain.Plan
		err := tx.WithContext(ctx).Where("code = ?", p.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		plan := plandomain.Plan{
			ID:        node.Generate(),
			Code:      p.Code,
			Name:      p.Name,
			Features:  datatypes.NewJSONType(p.Features),
			Limits:    datatypes.NewJSONType(p.Limits),
			Active:    true,
			SortOrder: p.SortOrder,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&plan).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureFeaturesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, f := range defaultFeatures {
		var existing featuredomain.Feature
		err := tx.WithContext(ctx).Where("key = ?", f.Key).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		category := f.Category
		feature := featuredomain.Feature{
			ID:        node.Generate(),
			Key:       f.Key,
			Name:      f.Name,
			Category:  &category,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&feature).Error; err != nil {
			return err
		}
	}
	return nil
}
