// Package domain defines the usage tracking contract for metered resources.
package domain

import (
	"context"
	"errors"

	"github.com/paperforge/paperforge/internal/quota"
)

//go:generate mockgen -source=service.go -destination=./mocks/mock_service.go -package=mocks
type Service interface {
	// Increment adds delta to the caller's usage counter for resource.
	// It is a silent no-op when the caller has no active subscription or
	// the subscription's plan does not declare the resource; the tracker
	// never invents counter keys.
	Increment(ctx context.Context, resource string, delta int64) error

	// Get returns the current counter, zero when untracked.
	Get(ctx context.Context, resource string) (int64, error)

	// Evaluate returns the caller's quota state for resource.
	Evaluate(ctx context.Context, resource string) (quota.Evaluation, error)

	// Consume enforces the quota and then increments. It rejects with
	// ErrLimitReached when a limited plan has nothing remaining; tracking
	// failures after the check are logged, not surfaced, so the metered
	// action is never rolled back over accounting.
	Consume(ctx context.Context, resource string) (quota.Evaluation, error)
}

var (
	ErrInvalidResource    = errors.New("invalid_resource")
	ErrLimitReached       = errors.New("limit_reached")
	ErrContentionExceeded = errors.New("usage_contention_exceeded")
)
