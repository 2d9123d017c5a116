package domain

import (
	"context"
	"errors"
)

//go:generate mockgen -source=service.go -destination=./mocks/mock_service.go -package=mocks
type Service interface {
	// ResolveActive returns the single subscription governing the caller's
	// entitlement, or nil when the caller has no eligible subscription.
	// An empty result is a valid free-tier outcome, not an error.
	ResolveActive(ctx context.Context) (*Entitlement, error)

	// ListAll returns the caller's full subscription history ordered by
	// (active desc, created_at desc). Reporting only; it carries no
	// entitlement authority beyond ResolveActive.
	ListAll(ctx context.Context) ([]View, error)
}

var (
	ErrNotAuthenticated = errors.New("not_authenticated")
)
