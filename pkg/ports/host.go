package ports

import (
	"context"

	"github.com/aretw0/canvas/pkg/domain"
)

// HostEntity is a content entity or config object that owns a component tree.
type HostEntity interface {
	HostType() string
	HostID() string

	// ComponentTree returns the current tree. Callers must not mutate it.
	ComponentTree() domain.ComponentTree
	SetComponentTree(tree domain.ComponentTree)

	// FieldValue traverses a property path (field name, delta, property...)
	// and returns the value found. It fails when any segment does not exist.
	FieldValue(path []string) (any, error)

	// CanonicalURL returns the site-relative canonical path, e.g. "/node/1".
	CanonicalURL() string
}

// HostProvider loads and persists host entities.
type HostProvider interface {
	// Load returns domain.ErrHostNotFound if the host does not exist.
	Load(ctx context.Context, hostType, id string) (HostEntity, error)
	Save(ctx context.Context, host HostEntity) error
}
