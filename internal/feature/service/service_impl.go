package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/paperforge/paperforge/internal/feature/domain"
	"github.com/paperforge/paperforge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("feature.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	key := strings.ToLower(strings.TrimSpace(req.Key))
	if key == "" {
		return nil, domain.ErrInvalidKey
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateKey
	}

	var categoryPtr *string
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category != "" {
			categoryPtr = &category
		}
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	record := &domain.Feature{
		ID:        s.genID.Generate(),
		Key:       key,
		Name:      name,
		Category:  categoryPtr,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, s.db, record); err != nil {
		// Unique index backstops the pre-insert check under races.
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, err
	}

	resp := s.toResponse(record)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListRequest{
		Category: strings.TrimSpace(req.Category),
		Active:   req.Active,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	featureID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	affected, err := s.repo.Delete(ctx, s.db, featureID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	s.log.Info("feature deleted", zap.String("feature_id", featureID.String()))
	return nil
}

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	featureID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, featureID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Active = false
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) EntitledNames(ctx context.Context, flags map[string]bool) (map[string]string, error) {
	catalog, err := s.repo.List(ctx, s.db, domain.ListRequest{})
	if err != nil {
		return nil, err
	}
	return domain.MapPlanFeatures(flags, catalog), nil
}

func (s *Service) toResponse(f *domain.Feature) domain.Response {
	return domain.Response{
		ID:        f.ID.String(),
		Key:       f.Key,
		Name:      f.Name,
		Category:  f.Category,
		Active:    f.Active,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
