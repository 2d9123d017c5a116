// Package authorization gates administrative operations behind casbin
// role checks. The feature catalog is the only admin surface the
// entitlement engine owns.
package authorization

import (
	"context"
	_ "embed"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/paperforge/paperforge/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	RoleAdmin = "admin"

	ObjectFeature = "feature"

	ActionFeatureCreate = "feature.create"
	ActionFeatureDelete = "feature.delete"
	ActionFeatureUpdate = "feature.update"
)

var ErrForbidden = errors.New("forbidden")

type Service interface {
	Authorize(ctx context.Context, userID snowflake.ID, object, action string) error
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
	Cfg config.Config
}

type service struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB, cfg config.Config) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer, cfg.AdminUserIDs); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer, adminUserIDs []string) error {
	policies := [][]string{
		{RoleAdmin, ObjectFeature, ActionFeatureCreate},
		{RoleAdmin, ObjectFeature, ActionFeatureDelete},
		{RoleAdmin, ObjectFeature, ActionFeatureUpdate},
	}
	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}
	for _, userID := range adminUserIDs {
		if _, err := enforcer.AddGroupingPolicy(userID, RoleAdmin); err != nil {
			return err
		}
	}
	return nil
}

func New(p Params) (Service, error) {
	enforcer, err := NewEnforcer(p.DB, p.Cfg)
	if err != nil {
		return nil, err
	}
	return &service{
		log:      p.Log.Named("authorization"),
		enforcer: enforcer,
	}, nil
}

func (s *service) Authorize(ctx context.Context, userID snowflake.ID, object, action string) error {
	_ = ctx
	allowed, err := s.enforcer.Enforce(userID.String(), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("user_id", userID.String()),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// Module wires the casbin-backed authorizer.
var Module = fx.Module("authorization",
	fx.Provide(New),
)
