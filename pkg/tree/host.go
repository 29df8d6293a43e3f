package tree

import (
	"fmt"

	"github.com/aretw0/canvas/pkg/domain"
)

// HasComponentTree is anything that exposes a component tree: a host entity,
// a content template, a page region config object.
type HasComponentTree interface {
	ComponentTree() domain.ComponentTree
}

// Of returns the tree exposed by v. It accepts a HasComponentTree, a
// domain.ComponentTree or a pointer to one; anything else is a caller error.
func Of(v any) (domain.ComponentTree, error) {
	switch t := v.(type) {
	case HasComponentTree:
		return t.ComponentTree(), nil
	case domain.ComponentTree:
		return t, nil
	case *domain.ComponentTree:
		if t == nil {
			return nil, fmt.Errorf("nil component tree")
		}
		return *t, nil
	case []domain.ComponentTreeItem:
		return domain.ComponentTree(t), nil
	default:
		return nil, fmt.Errorf("value of type %T does not have a component tree", v)
	}
}
