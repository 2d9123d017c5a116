package domain

import (
	"context"
	"errors"
	"time"
)

type CreateRequest struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Category *string `json:"category"`
	Active   *bool   `json:"active"`
}

type ListRequest struct {
	Category string
	Active   *bool
}

type Response struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Category  *string   `json:"category,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

//go:generate mockgen -source=service.go -destination=./mocks/mock_service.go -package=mocks
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Delete(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) (*Response, error)
	EntitledNames(ctx context.Context, flags map[string]bool) (map[string]string, error)
}

var (
	ErrInvalidKey   = errors.New("invalid_feature_key")
	ErrInvalidName  = errors.New("invalid_feature_name")
	ErrInvalidID    = errors.New("invalid_feature_id")
	ErrDuplicateKey = errors.New("duplicate_feature_key")
	ErrNotFound     = errors.New("feature_not_found")
)
