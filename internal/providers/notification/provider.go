// Package notification delivers outbound user notifications. Only the
// delivery contract is owned here; what to send and when is the caller's
// business.
package notification

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Kind selects the notification template.
type Kind string

const (
	KindExpirationWarning Kind = "expiration_warning"
)

// Sender delivers one notification to one user.
type Sender interface {
	Send(ctx context.Context, userID snowflake.ID, kind Kind, data map[string]any) error
}

// Directory resolves a user ID to a deliverable address. User records are
// owned outside the entitlement engine.
type Directory interface {
	LookupEmail(ctx context.Context, userID snowflake.ID) (string, error)
}

// NoopSender drops notifications; used when SMTP is unconfigured.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, userID snowflake.ID, kind Kind, data map[string]any) error {
	return nil
}
