package ports

import (
	"context"

	"github.com/aretw0/canvas/pkg/domain"
)

// DraftStore persists auto-save drafts keyed by domain.DraftKey.
type DraftStore interface {
	Save(ctx context.Context, key string, draft *domain.Draft) error

	// Load returns domain.ErrDraftNotFound if no draft exists.
	Load(ctx context.Context, key string) (*domain.Draft, error)

	Delete(ctx context.Context, key string) error

	// List returns the keys of all stored drafts.
	List(ctx context.Context) ([]string, error)
}
