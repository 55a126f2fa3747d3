package driven

import (
	"context"

	"github.com/pantry-labs/gourmet-cli/internal/core/domain"
)

// SessionStore persists conversation sessions keyed by the transport's
// opaque conversation identifier. Only process-lifetime durability is
// required; adapters may provide more without changing this contract.
type SessionStore interface {
	// Get retrieves a session by ID.
	// Returns domain.ErrNotFound if no session exists.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Save stores or updates a session.
	Save(ctx context.Context, session *domain.Session) error

	// Delete removes a session. Deleting a missing session is a no-op.
	Delete(ctx context.Context, id string) error
}
