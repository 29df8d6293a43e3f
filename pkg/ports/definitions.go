package ports

import (
	"context"

	"github.com/aretw0/canvas/pkg/domain"
)

// ComponentDefinitionProvider loads component definitions by id.
type ComponentDefinitionProvider interface {
	// Get returns the definition with the given id.
	// Returns domain.ErrComponentNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.ComponentDefinition, error)

	// GetVersion returns a specific (possibly past) version, or the active one
	// when version is empty. Returns domain.ErrVersionNotFound for unknown versions.
	GetVersion(ctx context.Context, id, version string) (*domain.ComponentVersion, error)

	// List returns every known component id, sorted.
	List(ctx context.Context) ([]string, error)
}
